package executor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/conversation"
)

// MaxIterationsMessage is the sentinel returned by the batch loop when the
// iteration cap is hit before the model produces a final answer.
const MaxIterationsMessage = "Maximum iteration limit reached"

// Defaults shared by both loop variants.
const (
	defaultMaxIterations = 10
	defaultReserveTokens = 1000
)

// Options configures an orchestrator.
type Options struct {
	// MaxIterations caps loop turns. Defaults to 10.
	MaxIterations int
	// ReserveTokens is the response headroom held back from the context
	// budget before every model call. Defaults to 1000.
	ReserveTokens int
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	if opts.ReserveTokens <= 0 {
		opts.ReserveTokens = defaultReserveTokens
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// Orchestrator runs the non-streaming agentic loop: request a completion,
// execute any declared tool calls, feed results back, repeat.
type Orchestrator struct {
	client         ModelClient
	conv           *conversation.Manager
	tools          *agent.Executor
	maxIterations  int
	reserveTokens  int
	iterationCount int
	logger         *slog.Logger
}

// NewOrchestrator wires a batch loop over injected, long-lived collaborators.
// The orchestrator references but does not own them.
func NewOrchestrator(client ModelClient, conv *conversation.Manager, tools *agent.Executor, opts *Options) *Orchestrator {
	o := opts.withDefaults()
	return &Orchestrator{
		client:        client,
		conv:          conv,
		tools:         tools,
		maxIterations: o.MaxIterations,
		reserveTokens: o.ReserveTokens,
		logger:        o.Logger.With("component", "orchestrator"),
	}
}

// IterationCount reports how many loop turns the last ExecuteLoop used.
func (o *Orchestrator) IterationCount() int { return o.iterationCount }

// ResetIterationCount zeroes the turn counter.
func (o *Orchestrator) ResetIterationCount() { o.iterationCount = 0 }

// State is a snapshot of loop progress for observability.
type State struct {
	IterationCount      int                  `json:"iteration_count"`
	MaxIterations       int                  `json:"max_iterations"`
	ConversationSummary conversation.Summary `json:"conversation_summary"`
}

// State returns the current loop snapshot.
func (o *Orchestrator) State() State {
	return State{
		IterationCount:      o.iterationCount,
		MaxIterations:       o.maxIterations,
		ConversationSummary: o.conv.Summary(),
	}
}

// ExecuteLoop appends the user input and drives the loop until the model
// answers without tool calls, an error surfaces, or the iteration cap is hit
// (returning MaxIterationsMessage).
func (o *Orchestrator) ExecuteLoop(ctx context.Context, userInput string) (string, error) {
	o.iterationCount = 0
	if err := o.conv.AddMessage(aisdk.RoleUser, userInput); err != nil {
		return "", err
	}

	o.logger.Info("starting tool orchestration loop")

	for o.iterationCount < o.maxIterations {
		o.iterationCount++
		o.logger.Debug("loop iteration", "iteration", o.iterationCount, "max", o.maxIterations)

		messages, err := o.conv.PrepareMessagesForAPI(ctx, o.reserveTokens, o.client)
		if err != nil {
			return "", err
		}

		response, err := o.client.Chat(ctx, messages, o.tools.Registry().Export())
		if err != nil {
			return "", err
		}

		calls := agent.ParseToolCalls(response)
		if len(calls) == 0 {
			o.logger.Info("no tool calls found, ending loop")
			content := extractAssistantContent(response)
			o.appendAssistant(content)
			return content, nil
		}

		o.executeToolCalls(ctx, calls, response)
	}

	o.logger.Warn("maximum iterations reached", "max", o.maxIterations)
	return MaxIterationsMessage, nil
}

// executeToolCalls records the assistant's own content, then executes the
// declared calls strictly in order. Later calls may depend on earlier ones
// having been recorded, so there is no parallelism here.
func (o *Orchestrator) executeToolCalls(ctx context.Context, calls []agent.ParsedToolCall, response any) {
	o.logger.Info("executing tool calls", "count", len(calls))

	o.appendAssistant(extractAssistantContent(response))

	for _, call := range calls {
		result := o.tools.Execute(ctx, call.FunctionName, call.Arguments)
		o.appendToolMessage(FormatToolResponse(result))
	}
}

func (o *Orchestrator) appendAssistant(content string) {
	if content == "" {
		return
	}
	if err := o.conv.AddMessage(aisdk.RoleAssistant, content); err != nil {
		o.logger.Error("failed to record assistant message", "error", err)
	}
}

func (o *Orchestrator) appendToolMessage(content string) {
	err := o.conv.AddMessage(aisdk.RoleTool, content)
	if err == nil {
		return
	}
	// A void tool result serializes to empty content, which message
	// validation rejects; keep the turn visible to the model anyway.
	if errors.Is(err, conversation.ErrEmptyContent) {
		err = o.conv.AddMessage(aisdk.RoleTool, "(no output)")
	}
	if err != nil {
		o.logger.Error("failed to record tool message", "error", err)
	}
}
