package tool_runcommand

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
)

// Tool name constant
const Name = "run_command"

const runCommandPrompt = `Executes a shell command and returns its output.

Usage:
- The command runs through the system shell in the working directory
- Returns stdout, stderr, and the exit code
- Commands that exceed the timeout are killed and reported as timed out`

const defaultTimeout = 30 * time.Second

// RunCommandTool executes shell commands with a configurable timeout.
type RunCommandTool struct {
	workingDir string
	timeout    time.Duration
}

func New(workingDir string, timeout time.Duration) *RunCommandTool {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RunCommandTool{workingDir: workingDir, timeout: timeout}
}

// Timeout implements agent.TimeoutCarrier.
func (t *RunCommandTool) Timeout() time.Duration {
	return t.timeout
}

// SetTimeout implements agent.TimeoutCarrier.
func (t *RunCommandTool) SetTimeout(d time.Duration) {
	t.timeout = d
}

func (t *RunCommandTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: runCommandPrompt,
		Parameters: []agent.ToolParameter{
			{Name: "command", Type: agent.TypeString, Description: "The shell command to execute", Required: true},
		},
	}
}

func (t *RunCommandTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	command, ok := toolsutil.StringArg(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return agent.Fail("missing required parameter: command"), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	if t.workingDir != "" {
		cmd.Dir = t.workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	toolsutil.GetLogger().Info("running command", "command", command, "timeout", t.timeout)

	err := cmd.Run()
	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	metadata := map[string]any{
		"command":   command,
		"exit_code": exitCode,
		"stdout":    toolsutil.TruncateOutput(stdout.String()),
		"stderr":    toolsutil.TruncateOutput(stderr.String()),
		"timed_out": timedOut,
	}

	if timedOut {
		result := agent.Fail(fmt.Sprintf("command timed out after %s", t.timeout))
		result.Metadata = metadata
		return result, nil
	}
	if err != nil && exitCode == -1 {
		result := agent.Fail(fmt.Sprintf("failed to run command: %v", err))
		result.Metadata = metadata
		return result, nil
	}

	var out strings.Builder
	out.WriteString(stdout.String())
	if stderr.Len() > 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(stderr.String())
	}

	if exitCode != 0 {
		result := agent.Fail(fmt.Sprintf("command exited with code %d:\n%s", exitCode, toolsutil.TruncateOutput(out.String())))
		result.Metadata = metadata
		return result, nil
	}

	result := agent.Ok(toolsutil.TruncateOutput(out.String()))
	result.Metadata = metadata
	return result, nil
}
