package agent

import (
	"encoding/json"
	"testing"

	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCallsFromChoicesMap(t *testing.T) {
	response := map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": "let me check",
					"tool_calls": []any{
						map[string]any{
							"id": "call_1",
							"function": map[string]any{
								"name":      "read_file",
								"arguments": `{"path":"main.go"}`,
							},
						},
					},
				},
			},
		},
	}

	calls := ParseToolCalls(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "read_file", calls[0].FunctionName)
	assert.Equal(t, map[string]any{"path": "main.go"}, calls[0].Arguments)
}

func TestParseToolCallsFromTopLevelMap(t *testing.T) {
	response := map[string]any{
		"tool_calls": []any{
			map[string]any{
				"id": "call_2",
				"function": map[string]any{
					"name":      "list_directory",
					"arguments": map[string]any{"path": "."},
				},
			},
		},
	}

	calls := ParseToolCalls(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "list_directory", calls[0].FunctionName)
	assert.Equal(t, map[string]any{"path": "."}, calls[0].Arguments)
}

func TestParseToolCallsFromTypedResponse(t *testing.T) {
	resp := &aisdk.ChatCompletionResponse{
		Choices: []aisdk.Choice{
			{
				Message: aisdk.Message{
					Role: aisdk.RoleAssistant,
					ToolCalls: []aisdk.ToolCall{
						{
							ID:   "call_3",
							Type: "function",
							Function: aisdk.FunctionCall{
								Name:      "run_command",
								Arguments: json.RawMessage(`{"command":"ls"}`),
							},
						},
					},
				},
			},
		},
	}

	calls := ParseToolCalls(resp)
	require.Len(t, calls, 1)
	assert.Equal(t, "run_command", calls[0].FunctionName)
	assert.Equal(t, map[string]any{"command": "ls"}, calls[0].Arguments)
}

func TestParseToolCallsMalformedArgumentsYieldEmptyMap(t *testing.T) {
	response := map[string]any{
		"tool_calls": []any{
			map[string]any{
				"id": "call_4",
				"function": map[string]any{
					"name":      "web_fetch",
					"arguments": `{"url": not valid json`,
				},
			},
		},
	}

	calls := ParseToolCalls(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "web_fetch", calls[0].FunctionName)
	assert.Empty(t, calls[0].Arguments)
	assert.NotNil(t, calls[0].Arguments)
}

func TestParseToolCallsSkipsMalformedEntries(t *testing.T) {
	response := map[string]any{
		"tool_calls": []any{
			"not a tool call at all",
			map[string]any{
				"id": "call_5",
				"function": map[string]any{
					"name":      "edit_file",
					"arguments": `{}`,
				},
			},
		},
	}

	calls := ParseToolCalls(response)
	require.Len(t, calls, 1)
	assert.Equal(t, "edit_file", calls[0].FunctionName)
}

func TestParseToolCallsNoCalls(t *testing.T) {
	assert.Nil(t, ParseToolCalls(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": "just words"}},
		},
	}))
	assert.Nil(t, ParseToolCalls(nil))
	assert.Nil(t, ParseToolCalls("plain string"))
	assert.Nil(t, ParseToolCalls(aisdk.Message{Role: aisdk.RoleAssistant, Content: "text"}))
}
