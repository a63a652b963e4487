package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/executor"
)

// PromptCmd executes a single prompt through the tool loop
type PromptCmd struct {
	Text          []string `arg:"" help:"The prompt text to send"`
	SystemPrompt  string   `short:"s" help:"System prompt override"`
	Stream        bool     `help:"Stream the response as it is generated"`
	MaxIterations int      `help:"Maximum tool loop iterations (0 uses config)"`
}

func (p *PromptCmd) Run(cli *CLI) error {
	ctx := context.Background()

	app, err := initApp(ctx, cli, p.SystemPrompt)
	if err != nil {
		return err
	}
	defer app.Close()

	text := strings.Join(p.Text, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("prompt text is required")
	}

	maxIterations := app.Config.Agent.MaxIterations
	if p.MaxIterations > 0 {
		maxIterations = p.MaxIterations
	}
	opts := &executor.Options{
		MaxIterations: maxIterations,
		ReserveTokens: app.Config.Agent.ReserveTokens,
		Logger:        app.Logger,
	}

	app.recordMessage(ctx, aisdk.RoleUser, text)

	if p.Stream {
		return p.runStreaming(ctx, app, text, opts)
	}
	return p.runBatch(ctx, app, text, opts)
}

func (p *PromptCmd) runBatch(ctx context.Context, app *App, text string, opts *executor.Options) error {
	orch := executor.NewOrchestrator(app.Client, app.Conv, app.Tools, opts)

	response, err := orch.ExecuteLoop(ctx, text)
	if err != nil {
		return err
	}

	app.recordMessage(ctx, aisdk.RoleAssistant, response)
	fmt.Println(response)
	return nil
}

func (p *PromptCmd) runStreaming(ctx context.Context, app *App, text string, opts *executor.Options) error {
	orch := executor.NewStreamingOrchestrator(app.Client, app.Conv, app.Tools, opts)

	fragments, err := orch.ExecuteStreamingLoop(ctx, text)
	if err != nil {
		return err
	}

	var response strings.Builder
	for fragment := range fragments {
		fmt.Fprint(os.Stdout, fragment)
		response.WriteString(fragment)
	}
	fmt.Println()

	app.recordMessage(ctx, aisdk.RoleAssistant, response.String())
	return nil
}
