// Package executor implements the agentic tool-use loops: the batch
// request/execute/respond state machine and the streaming variant with
// incremental tool-call detection.
package executor

import (
	"context"

	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/conversation"
)

// ModelClient is the consumed model-completion capability. Chat returns a
// polymorphic response: a decoded JSON map or a typed
// *aisdk.ChatCompletionResponse; the loop never inspects its shape directly,
// the tool-call parser and content extraction normalize it at the boundary.
// The embedded Summarizer is the same client reused for context compaction.
type ModelClient interface {
	conversation.Summarizer

	Chat(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (any, error)
	Stream(ctx context.Context, messages []aisdk.Message, tools []*aisdk.ChatTool) (aisdk.Stream, error)
}

// extractAssistantContent pulls the assistant text out of either response
// shape; absent content yields the empty string.
func extractAssistantContent(response any) string {
	switch resp := response.(type) {
	case map[string]any:
		choices, ok := resp["choices"].([]any)
		if !ok || len(choices) == 0 {
			return ""
		}
		first, ok := choices[0].(map[string]any)
		if !ok {
			return ""
		}
		message, ok := first["message"].(map[string]any)
		if !ok {
			return ""
		}
		content, _ := message["content"].(string)
		return content
	case *aisdk.ChatCompletionResponse:
		if resp != nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content
		}
	case aisdk.ChatCompletionResponse:
		if len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content
		}
	}
	return ""
}
