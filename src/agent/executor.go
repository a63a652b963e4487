package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResultHook observes completed tool executions. Used by callers that record
// transcripts; failures to record must not affect the loop, so hooks have no
// error return.
type ResultHook func(name string, args map[string]any, result *ToolResult, elapsed time.Duration)

// Executor dispatches tool calls against a registry with logging, panic
// containment, and an optional per-call timeout override. Tool failures never
// propagate as errors to the orchestrator; every outcome is a ToolResult.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	hook     ResultHook
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the timeout the executor imposes on tools that expose one.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithResultHook registers a hook invoked after every execution.
func WithResultHook(hook ResultHook) ExecutorOption {
	return func(e *Executor) { e.hook = hook }
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "tool_executor")
	return e
}

// Registry returns the underlying registry.
func (e *Executor) Registry() *Registry { return e.registry }

// Execute looks up and runs the named tool. An unregistered name yields a
// failed result, not an error. While the call runs, a tool exposing a timeout
// has it overridden with the executor's; the original value is restored on
// every exit path, including panics.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) *ToolResult {
	logger := e.logger.With("tool", name)
	logger.Info("executing tool")

	start := time.Now()
	tool, ok := e.registry.Get(name)
	if !ok {
		result := Fail(fmt.Sprintf("tool %q not found in registry", name))
		logger.Error("tool not found")
		e.notify(name, args, result, time.Since(start))
		return result
	}

	result := e.run(ctx, tool, args, logger)
	if result.Success {
		logger.Info("tool executed successfully", "elapsed", time.Since(start))
	} else {
		logger.Warn("tool execution failed", "error", result.Error, "elapsed", time.Since(start))
	}
	e.notify(name, args, result, time.Since(start))
	return result
}

func (e *Executor) run(ctx context.Context, tool Tool, args map[string]any, logger *slog.Logger) (result *ToolResult) {
	if carrier, ok := tool.(TimeoutCarrier); ok && e.timeout > 0 {
		original := carrier.Timeout()
		carrier.SetTimeout(e.timeout)
		defer carrier.SetTimeout(original)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool panicked", "panic", r)
			result = Fail(fmt.Sprintf("unexpected error executing tool: %v", r))
		}
	}()

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return Fail(err.Error())
	}
	if result == nil {
		return Fail("tool returned no result")
	}
	return result
}

func (e *Executor) notify(name string, args map[string]any, result *ToolResult, elapsed time.Duration) {
	if e.hook != nil {
		e.hook(name, args, result, elapsed)
	}
}
