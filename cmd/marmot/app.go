package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/config"
	"github.com/marmotcli/marmot/src/conversation"
	"github.com/marmotcli/marmot/src/llmclient"
	"github.com/marmotcli/marmot/src/marmotagent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/marmotcli/marmot/src/storage"
	"github.com/spf13/afero"
)

// App bundles the wired collaborators every command needs.
type App struct {
	Config   *config.Config
	Client   *llmclient.Client
	Conv     *conversation.Manager
	Tools    *agent.Executor
	Registry *agent.Registry
	Store    *storage.DB
	ConvID   string
	Logger   *slog.Logger
}

// initApp loads configuration, applies CLI overrides, and wires the client,
// conversation, tool registry, and transcript store.
func initApp(ctx context.Context, cli *CLI, systemPromptOverride string) (*App, error) {
	logger := createCLILogger(cli.LogLevel)
	toolsutil.SetLogger(logger)

	cfg, err := config.NewLoader().Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.APIKey != "" {
		cfg.API.APIKey = cli.APIKey
	}
	if cli.BaseURL != "" {
		cfg.API.BaseURL = cli.BaseURL
	}
	if cli.Model != "" {
		cfg.API.Model = cli.Model
	}

	client, err := llmclient.NewClient(llmclient.Config{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.APIKey,
		Model:      cfg.API.Model,
		RetryCount: cfg.API.RetryCount,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	workingDir := cfg.Tools.WorkingDir
	if workingDir == "" {
		workingDir, _ = os.Getwd()
	}

	systemPrompt := cfg.Agent.SystemPrompt
	if systemPromptOverride != "" {
		systemPrompt = systemPromptOverride
	}
	if systemPrompt == "" {
		systemPrompt = marmotagent.DefaultSystemPrompt(workingDir)
	}

	conv := conversation.NewManager(systemPrompt, cfg.Agent.MaxContextTokens, cfg.API.Model,
		conversation.WithLogger(logger))

	registry := marmotagent.BuildRegistry(marmotagent.Options{
		Fs:             afero.NewOsFs(),
		WorkingDir:     workingDir,
		CommandTimeout: cfg.Tools.CommandTimeout,
	})

	app := &App{
		Config:   cfg,
		Client:   client,
		Conv:     conv,
		Registry: registry,
		Logger:   logger,
	}

	if err := app.openStore(ctx, cfg); err != nil {
		// Transcript recording is best effort; the loop works without it.
		logger.Warn("transcript store unavailable", "error", err)
	}

	execOpts := []agent.ExecutorOption{
		agent.WithExecutorLogger(logger),
	}
	if cfg.Tools.CommandTimeout > 0 {
		execOpts = append(execOpts, agent.WithTimeout(cfg.Tools.CommandTimeout))
	}
	if app.Store != nil {
		execOpts = append(execOpts, agent.WithResultHook(app.recordToolExecution))
	}
	app.Tools = agent.NewExecutor(registry, execOpts...)

	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) error {
	if cfg.Data.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Data.Directory, 0755); err != nil {
		return err
	}

	store, err := storage.Open(config.DatabasePath(cfg.Data.Directory))
	if err != nil {
		return err
	}

	conv := &storage.Conversation{Model: cfg.API.Model}
	if err := storage.CreateConversation(ctx, store.DB(), conv); err != nil {
		store.Close()
		return err
	}

	a.Store = store
	a.ConvID = conv.ID
	return nil
}

// recordToolExecution is the executor hook that persists tool outcomes.
func (a *App) recordToolExecution(name string, args map[string]any, result *agent.ToolResult, elapsed time.Duration) {
	input, _ := json.Marshal(args)

	exec := &storage.ToolExecution{
		ConversationID: a.ConvID,
		ToolName:       name,
		Input:          string(input),
		DurationMs:     elapsed.Milliseconds(),
	}
	if result != nil {
		if result.Success {
			if s, ok := result.Data.(string); ok {
				exec.Output = s
			}
		} else {
			exec.Error = result.Error
		}
	}

	if err := storage.RecordToolExecution(context.Background(), a.Store.DB(), exec); err != nil {
		a.Logger.Warn("failed to record tool execution", "tool", name, "error", err)
	}
}

// recordMessage persists a transcript message when the store is open.
func (a *App) recordMessage(ctx context.Context, role, content string) {
	if a.Store == nil || content == "" {
		return
	}
	msg := &storage.Message{ConversationID: a.ConvID, Role: role, Content: content}
	if err := storage.AppendMessage(ctx, a.Store.DB(), msg); err != nil {
		a.Logger.Warn("failed to record message", "role", role, "error", err)
	}
}

// Close releases the transcript store.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}
