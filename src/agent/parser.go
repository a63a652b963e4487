package agent

import (
	"encoding/json"

	"github.com/marmotcli/marmot/src/aisdk"
)

// ParsedToolCall is one structured tool-call request extracted from a model
// response. Produced transiently per model turn; never persisted.
type ParsedToolCall struct {
	ID           string
	FunctionName string
	Arguments    map[string]any
}

// ParseToolCalls extracts zero or more tool calls from a model response. The
// response is polymorphic: a decoded JSON map (with tool calls under
// choices[0].message.tool_calls or at the top level) or a typed response or
// message. Malformed individual entries are skipped; malformed argument JSON
// yields an empty argument map rather than failing the batch.
func ParseToolCalls(response any) []ParsedToolCall {
	raw := extractToolCalls(response)
	if len(raw) == 0 {
		return nil
	}

	parsed := make([]ParsedToolCall, 0, len(raw))
	for _, entry := range raw {
		if call, ok := parseSingleToolCall(entry); ok {
			parsed = append(parsed, call)
		}
	}
	return parsed
}

func extractToolCalls(response any) []any {
	switch resp := response.(type) {
	case map[string]any:
		if choices, ok := resp["choices"].([]any); ok && len(choices) > 0 {
			if first, ok := choices[0].(map[string]any); ok {
				if message, ok := first["message"].(map[string]any); ok {
					if calls, ok := message["tool_calls"].([]any); ok {
						return calls
					}
				}
			}
			return nil
		}
		if calls, ok := resp["tool_calls"].([]any); ok {
			return calls
		}
	case *aisdk.ChatCompletionResponse:
		if resp != nil && len(resp.Choices) > 0 {
			return typedCalls(resp.Choices[0].Message.ToolCalls)
		}
	case aisdk.ChatCompletionResponse:
		if len(resp.Choices) > 0 {
			return typedCalls(resp.Choices[0].Message.ToolCalls)
		}
	case *aisdk.Message:
		if resp != nil {
			return typedCalls(resp.ToolCalls)
		}
	case aisdk.Message:
		return typedCalls(resp.ToolCalls)
	}
	return nil
}

func typedCalls(calls []aisdk.ToolCall) []any {
	out := make([]any, 0, len(calls))
	for _, call := range calls {
		out = append(out, call)
	}
	return out
}

func parseSingleToolCall(entry any) (ParsedToolCall, bool) {
	switch call := entry.(type) {
	case aisdk.ToolCall:
		return ParsedToolCall{
			ID:           call.ID,
			FunctionName: call.Function.Name,
			Arguments:    decodeArguments(call.Function.Arguments),
		}, true
	case map[string]any:
		parsed := ParsedToolCall{Arguments: map[string]any{}}
		if id, ok := call["id"].(string); ok {
			parsed.ID = id
		}
		function, _ := call["function"].(map[string]any)
		if name, ok := function["name"].(string); ok {
			parsed.FunctionName = name
		}
		switch args := function["arguments"].(type) {
		case string:
			parsed.Arguments = decodeArguments([]byte(args))
		case map[string]any:
			parsed.Arguments = args
		}
		return parsed, true
	}
	return ParsedToolCall{}, false
}

// decodeArguments parses a JSON-encoded argument object. Malformed JSON
// yields an empty map.
func decodeArguments(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}
