package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/executor"
)

// ChatCmd starts an interactive chat session on stdin
type ChatCmd struct {
	SystemPrompt string `short:"s" help:"System prompt override"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx := context.Background()

	app, err := initApp(ctx, cli, c.SystemPrompt)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := &executor.Options{
		MaxIterations: app.Config.Agent.MaxIterations,
		ReserveTokens: app.Config.Agent.ReserveTokens,
		Logger:        app.Logger,
	}
	orch := executor.NewStreamingOrchestrator(app.Client, app.Conv, app.Tools, opts)

	fmt.Println("marmot chat. Type 'exit' or press Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		app.recordMessage(ctx, aisdk.RoleUser, line)

		fragments, err := orch.ExecuteStreamingLoop(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		var response strings.Builder
		for fragment := range fragments {
			fmt.Fprint(os.Stdout, fragment)
			response.WriteString(fragment)
		}
		fmt.Println()

		app.recordMessage(ctx, aisdk.RoleAssistant, response.String())
	}

	return scanner.Err()
}
