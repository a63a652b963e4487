package main

import (
	"errors"

	"github.com/marmotcli/marmot/src/conversation"
	"github.com/marmotcli/marmot/src/llmclient"
)

// Exit codes following standard conventions
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitAuth    = 4
	ExitNetwork = 6
)

// exitCode maps an error to a process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var apiErr *llmclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsAuthError() {
			return ExitAuth
		}
		return ExitNetwork
	}

	switch {
	case errors.Is(err, llmclient.ErrNoAPIKey):
		return ExitAuth
	case errors.Is(err, conversation.ErrContextOverflow):
		return ExitError
	case errors.Is(err, llmclient.ErrNoModel):
		return ExitConfig
	default:
		return ExitError
	}
}
