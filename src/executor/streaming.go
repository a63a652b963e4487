package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/conversation"
)

// StreamingOrchestrator runs the streaming agentic loop: fragments stream
// through to the caller with low latency until an in-band tool-call
// declaration is detected, at which point the stream is interrupted, the
// tools execute, and the loop re-queries the model with the augmented
// context.
type StreamingOrchestrator struct {
	client         ModelClient
	conv           *conversation.Manager
	tools          *agent.Executor
	maxIterations  int
	reserveTokens  int
	iterationCount int
	logger         *slog.Logger
}

// NewStreamingOrchestrator wires a streaming loop over injected, long-lived
// collaborators.
func NewStreamingOrchestrator(client ModelClient, conv *conversation.Manager, tools *agent.Executor, opts *Options) *StreamingOrchestrator {
	o := opts.withDefaults()
	return &StreamingOrchestrator{
		client:        client,
		conv:          conv,
		tools:         tools,
		maxIterations: o.MaxIterations,
		reserveTokens: o.ReserveTokens,
		logger:        o.Logger.With("component", "streaming_orchestrator"),
	}
}

// IterationCount reports how many loop turns the last run used.
func (o *StreamingOrchestrator) IterationCount() int { return o.iterationCount }

// State returns the current loop snapshot.
func (o *StreamingOrchestrator) State() State {
	return State{
		IterationCount:      o.iterationCount,
		MaxIterations:       o.maxIterations,
		ConversationSummary: o.conv.Summary(),
	}
}

// ExecuteStreamingLoop appends the user input and returns a channel of text
// fragments. The channel is unbuffered, so the consumer paces the producer;
// cancelling ctx stops the producer. A stream error ends the channel after a
// single "Error: ..." fragment that is not recorded in the conversation.
// Exhausting the iteration cap closes the channel without a sentinel.
func (o *StreamingOrchestrator) ExecuteStreamingLoop(ctx context.Context, userInput string) (<-chan string, error) {
	o.iterationCount = 0
	if err := o.conv.AddMessage(aisdk.RoleUser, userInput); err != nil {
		return nil, err
	}

	o.logger.Info("starting streaming tool orchestration loop")

	out := make(chan string)
	go func() {
		defer close(out)
		o.run(ctx, out)
	}()
	return out, nil
}

func (o *StreamingOrchestrator) run(ctx context.Context, out chan<- string) {
	for o.iterationCount < o.maxIterations {
		o.iterationCount++
		o.logger.Debug("streaming loop iteration", "iteration", o.iterationCount, "max", o.maxIterations)

		messages, err := o.conv.PrepareMessagesForAPI(ctx, o.reserveTokens, o.client)
		if err != nil {
			o.emitError(ctx, out, err)
			return
		}

		stream, err := o.client.Stream(ctx, messages, o.tools.Registry().Export())
		if err != nil {
			o.emitError(ctx, out, err)
			return
		}

		buffer := &streamBuffer{}
		yielded, err := o.consumeStream(ctx, stream, buffer, out)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			o.emitError(ctx, out, err)
			return
		}

		if len(buffer.toolCalls) > 0 {
			o.logger.Info("tool calls detected in stream", "count", len(buffer.toolCalls))
			o.appendAssistant(yielded)
			o.executeToolCalls(ctx, buffer.toolCalls)
			continue
		}

		o.appendAssistant(yielded)
		o.logger.Info("no tool calls found, ending streaming loop")
		return
	}

	o.logger.Warn("maximum streaming iterations reached", "max", o.maxIterations)
}

// consumeStream pulls fragments, feeds them through the detector, and
// forwards pass-through content. It stops early once a complete tool-call
// declaration is captured.
func (o *StreamingOrchestrator) consumeStream(ctx context.Context, stream aisdk.Stream, buffer *streamBuffer, out chan<- string) (string, error) {
	defer stream.Close()

	var yielded strings.Builder
	for {
		fragment, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return yielded.String(), nil
			}
			return yielded.String(), err
		}

		forward, done := buffer.Feed(fragment)
		if forward != "" {
			yielded.WriteString(forward)
			if !o.emit(ctx, out, forward) {
				return yielded.String(), context.Canceled
			}
		}
		if done {
			o.logger.Debug("tool calls detected in stream, interrupting")
			return yielded.String(), nil
		}
	}
}

func (o *StreamingOrchestrator) executeToolCalls(ctx context.Context, calls []agent.ParsedToolCall) {
	o.logger.Info("executing tool calls in streaming context", "count", len(calls))
	for _, call := range calls {
		result := o.tools.Execute(ctx, call.FunctionName, call.Arguments)
		o.appendToolMessage(FormatToolResponse(result))
	}
}

func (o *StreamingOrchestrator) appendAssistant(content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if err := o.conv.AddMessage(aisdk.RoleAssistant, content); err != nil {
		o.logger.Error("failed to record assistant message", "error", err)
	}
}

func (o *StreamingOrchestrator) appendToolMessage(content string) {
	err := o.conv.AddMessage(aisdk.RoleTool, content)
	if errors.Is(err, conversation.ErrEmptyContent) {
		err = o.conv.AddMessage(aisdk.RoleTool, "(no output)")
	}
	if err != nil {
		o.logger.Error("failed to record tool message", "error", err)
	}
}

func (o *StreamingOrchestrator) emitError(ctx context.Context, out chan<- string, err error) {
	o.logger.Error("error in streaming loop", "iteration", o.iterationCount, "error", err)
	o.emit(ctx, out, "Error: "+err.Error())
}

// emit forwards one fragment, giving up if the consumer is gone.
func (o *StreamingOrchestrator) emit(ctx context.Context, out chan<- string, fragment string) bool {
	select {
	case out <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}
