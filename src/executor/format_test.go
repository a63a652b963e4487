package executor

import (
	"testing"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/stretchr/testify/assert"
)

func TestFormatToolResponse(t *testing.T) {
	tests := []struct {
		name   string
		result *agent.ToolResult
		want   string
	}{
		{"string data", agent.Ok("file contents"), "file contents"},
		{"nil data", agent.Ok(nil), ""},
		{"int data", agent.Ok(42), "42"},
		{"bool data", agent.Ok(true), "true"},
		{"map data", agent.Ok(map[string]any{"count": 3}), `{"count":3}`},
		{"slice data", agent.Ok([]string{"a", "b"}), `["a","b"]`},
		{"failure", agent.Fail("file not found"), "Error: file not found"},
		{"failure without message", &agent.ToolResult{Success: false}, "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatToolResponse(tt.result))
		})
	}
}

func TestExtractAssistantContent(t *testing.T) {
	mapResp := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": "hello"}},
		},
	}
	assert.Equal(t, "hello", extractAssistantContent(mapResp))

	assert.Equal(t, "", extractAssistantContent(map[string]any{"choices": []any{}}))
	assert.Equal(t, "", extractAssistantContent(nil))
	assert.Equal(t, "", extractAssistantContent("junk"))
}
