package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient replays canned responses or streams in order.
type mockClient struct {
	responses []any
	streams   []aisdk.Stream
	chatErr   error
	streamErr error
	chatCalls int
	summaries int
}

func (m *mockClient) Chat(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (any, error) {
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	if m.chatCalls >= len(m.responses) {
		return nil, errors.New("mock: no more responses")
	}
	resp := m.responses[m.chatCalls]
	m.chatCalls++
	return resp, nil
}

func (m *mockClient) Stream(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (aisdk.Stream, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	if m.chatCalls >= len(m.streams) {
		return nil, errors.New("mock: no more streams")
	}
	stream := m.streams[m.chatCalls]
	m.chatCalls++
	return stream, nil
}

func (m *mockClient) Summarize(ctx context.Context, messages []aisdk.Message) (string, error) {
	m.summaries++
	return "summary", nil
}

func textResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func toolCallResponse(content, id, name, arguments string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
					"tool_calls": []any{
						map[string]any{
							"id": id,
							"function": map[string]any{
								"name":      name,
								"arguments": arguments,
							},
						},
					},
				},
			},
		},
	}
}

func multiToolCallResponse(content string, calls ...map[string]any) map[string]any {
	entries := make([]any, len(calls))
	for i, call := range calls {
		entries[i] = call
	}
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content":    content,
					"tool_calls": entries,
				},
			},
		},
	}
}

func callEntry(id, name, arguments string) map[string]any {
	return map[string]any{
		"id": id,
		"function": map[string]any{
			"name":      name,
			"arguments": arguments,
		},
	}
}

// echoTool records the args it was called with and returns canned output.
type echoTool struct {
	name   string
	calls  []map[string]any
	result *agent.ToolResult
}

func (e *echoTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{Name: e.name, Description: "test tool"}
}

func (e *echoTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	e.calls = append(e.calls, args)
	if e.result != nil {
		return e.result, nil
	}
	return agent.Ok("tool output"), nil
}

func newLoopFixture(t *testing.T, client ModelClient, tools ...agent.Tool) (*Orchestrator, *conversation.Manager) {
	t.Helper()
	conv := conversation.NewManager("test system prompt", 100000, "gpt-4o-mini")
	registry := agent.NewRegistry()
	for _, tool := range tools {
		registry.Register(tool)
	}
	executor := agent.NewExecutor(registry)
	return NewOrchestrator(client, conv, executor, nil), conv
}

func TestExecuteLoopDirectAnswer(t *testing.T) {
	client := &mockClient{responses: []any{textResponse("the answer is 4")}}
	orch, conv := newLoopFixture(t, client)

	out, err := orch.ExecuteLoop(context.Background(), "what is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "the answer is 4", out)
	assert.Equal(t, 1, orch.IterationCount())

	msgs := conv.GetMessages(false)
	require.Len(t, msgs, 2)
	assert.Equal(t, aisdk.RoleUser, msgs[0].Role)
	assert.Equal(t, aisdk.RoleAssistant, msgs[1].Role)
}

func TestExecuteLoopRunsToolsThenAnswers(t *testing.T) {
	tool := &echoTool{name: "read_file"}
	client := &mockClient{responses: []any{
		toolCallResponse("let me look", "call_1", "read_file", `{"path":"main.go"}`),
		textResponse("main.go defines main"),
	}}
	orch, conv := newLoopFixture(t, client, tool)

	out, err := orch.ExecuteLoop(context.Background(), "what is in main.go?")
	require.NoError(t, err)
	assert.Equal(t, "main.go defines main", out)
	assert.Equal(t, 2, orch.IterationCount())

	require.Len(t, tool.calls, 1)
	assert.Equal(t, map[string]any{"path": "main.go"}, tool.calls[0])

	// user, assistant prose, tool result, final assistant.
	msgs := conv.GetMessages(false)
	require.Len(t, msgs, 4)
	assert.Equal(t, aisdk.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "let me look", msgs[1].Content)
	assert.Equal(t, aisdk.RoleTool, msgs[2].Role)
	assert.Equal(t, "tool output", msgs[2].Content)
}

// sequencedTool appends its name to a shared log so tests can assert the
// order tools were invoked in.
type sequencedTool struct {
	name   string
	output string
	log    *[]string
}

func (s *sequencedTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{Name: s.name, Description: "test tool"}
}

func (s *sequencedTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	*s.log = append(*s.log, s.name)
	return agent.Ok(s.output), nil
}

func TestExecuteLoopRunsMultipleCallsInDeclarationOrder(t *testing.T) {
	var invoked []string
	alpha := &sequencedTool{name: "alpha", output: "alpha output", log: &invoked}
	beta := &sequencedTool{name: "beta", output: "beta output", log: &invoked}

	client := &mockClient{responses: []any{
		multiToolCallResponse("",
			callEntry("call_1", "alpha", `{}`),
			callEntry("call_2", "beta", `{}`),
		),
		textResponse("both done"),
	}}
	orch, conv := newLoopFixture(t, client, alpha, beta)

	out, err := orch.ExecuteLoop(context.Background(), "run both")
	require.NoError(t, err)
	assert.Equal(t, "both done", out)

	// Execution is strictly sequential in declaration order.
	assert.Equal(t, []string{"alpha", "beta"}, invoked)

	// Tool messages land in the same order, before the final answer.
	msgs := conv.GetMessages(false)
	require.Len(t, msgs, 4)
	assert.Equal(t, aisdk.RoleTool, msgs[1].Role)
	assert.Equal(t, "alpha output", msgs[1].Content)
	assert.Equal(t, aisdk.RoleTool, msgs[2].Role)
	assert.Equal(t, "beta output", msgs[2].Content)
	assert.Equal(t, aisdk.RoleAssistant, msgs[3].Role)
}

func TestExecuteLoopToolFailureRecordedNotFatal(t *testing.T) {
	tool := &echoTool{name: "read_file", result: agent.Fail("no such file")}
	client := &mockClient{responses: []any{
		toolCallResponse("", "call_1", "read_file", `{"path":"ghost.go"}`),
		textResponse("the file does not exist"),
	}}
	orch, conv := newLoopFixture(t, client, tool)

	out, err := orch.ExecuteLoop(context.Background(), "read ghost.go")
	require.NoError(t, err)
	assert.Equal(t, "the file does not exist", out)

	msgs := conv.GetMessages(false)
	// Empty assistant prose is skipped; tool failure is recorded as content.
	require.Len(t, msgs, 3)
	assert.Equal(t, aisdk.RoleTool, msgs[1].Role)
	assert.Equal(t, "Error: no such file", msgs[1].Content)
}

func TestExecuteLoopUnknownToolContinues(t *testing.T) {
	client := &mockClient{responses: []any{
		toolCallResponse("", "call_1", "nonexistent", `{}`),
		textResponse("done"),
	}}
	orch, conv := newLoopFixture(t, client)

	out, err := orch.ExecuteLoop(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	msgs := conv.GetMessages(false)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[1].Content, "not found in registry")
}

func TestExecuteLoopMaxIterations(t *testing.T) {
	tool := &echoTool{name: "spin"}
	responses := make([]any, 0, 5)
	for i := 0; i < 5; i++ {
		responses = append(responses, toolCallResponse("", "c", "spin", `{}`))
	}
	client := &mockClient{responses: responses}

	conv := conversation.NewManager("", 100000, "gpt-4o-mini")
	registry := agent.NewRegistry()
	registry.Register(tool)
	orch := NewOrchestrator(client, conv, agent.NewExecutor(registry), &Options{MaxIterations: 3})

	out, err := orch.ExecuteLoop(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, MaxIterationsMessage, out)
	assert.Equal(t, 3, orch.IterationCount())
	assert.Len(t, tool.calls, 3)
}

func TestExecuteLoopClientErrorPropagates(t *testing.T) {
	wantErr := errors.New("connection refused")
	client := &mockClient{chatErr: wantErr}
	orch, _ := newLoopFixture(t, client)

	_, err := orch.ExecuteLoop(context.Background(), "hello")
	assert.ErrorIs(t, err, wantErr)
}

func TestExecuteLoopRejectsEmptyInput(t *testing.T) {
	client := &mockClient{responses: []any{textResponse("hi")}}
	orch, _ := newLoopFixture(t, client)

	_, err := orch.ExecuteLoop(context.Background(), "")
	assert.ErrorIs(t, err, conversation.ErrEmptyContent)
}

func TestStateSnapshot(t *testing.T) {
	client := &mockClient{responses: []any{textResponse("hi")}}
	orch, _ := newLoopFixture(t, client)

	_, err := orch.ExecuteLoop(context.Background(), "hello")
	require.NoError(t, err)

	state := orch.State()
	assert.Equal(t, 1, state.IterationCount)
	assert.Equal(t, defaultMaxIterations, state.MaxIterations)
	assert.Equal(t, 1, state.ConversationSummary.TurnCount)
}
