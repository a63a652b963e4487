package executor

import (
	"encoding/json"
	"strings"

	"github.com/marmotcli/marmot/src/agent"
)

// SentinelMarker is the literal token some models emit before an inline
// tool-call declaration.
const SentinelMarker = "<|tool_call|>"

// toolCallsField is the literal substring denoting a tool-calls field in
// streamed JSON.
const toolCallsField = `"tool_calls"`

// prefixMarkers is the fixed priority list used to find where assistant prose
// ends and the tool-call declaration begins. Checked in order; first match
// wins.
var prefixMarkers = []string{SentinelMarker, `"tool_calls":`, `[{"id":`}

// streamBuffer accumulates one loop iteration's fragments and performs
// incremental tool-call detection. Stream-through behavior: until a marker
// appears, every fragment is forwarded immediately. Once a marker is seen,
// the text before it keeps flowing but everything from the marker on is
// withheld while the detector waits for a structurally complete, parseable
// JSON array of tool calls. A naive substring match would trigger before the
// JSON is complete; requiring a balanced bracket span avoids acting on a
// truncated declaration.
//
// The bracket scan is intentionally not quote-aware: a '[' inside a JSON
// string value counts toward nesting depth. Parse failure on the sliced span
// just means "keep waiting", so a mid-span mismatch delays interception until
// the outer array really closes.
type streamBuffer struct {
	content   strings.Builder
	forwarded int
	toolCalls []agent.ParsedToolCall
	complete  bool
}

// Feed accumulates one fragment and returns the text to forward to the
// caller, plus whether a complete tool-call declaration was captured. After
// Feed reports done, the buffer stops consuming.
func (b *streamBuffer) Feed(fragment string) (out string, done bool) {
	b.content.WriteString(fragment)
	content := b.content.String()

	boundary, detected := detectMarker(content)
	if !detected {
		out = content[b.forwarded:]
		b.forwarded = len(content)
		return out, false
	}

	// Flush any prose before the marker that has not been forwarded yet.
	if boundary > b.forwarded {
		out = content[b.forwarded:boundary]
		b.forwarded = boundary
	}

	calls := extractToolCallArray(content)
	if len(calls) == 0 {
		// The array may still be arriving; keep withholding from the marker.
		return out, false
	}

	b.toolCalls = calls
	b.complete = true
	// The prose prefix is final now; surrounding whitespace goes with it.
	return strings.TrimSpace(out), true
}

// Content returns the full accumulated text.
func (b *streamBuffer) Content() string { return b.content.String() }

// detectMarker reports whether the accumulated text contains a tool-call
// marker and, if so, the byte offset where forwarding must stop.
func detectMarker(content string) (boundary int, detected bool) {
	sentinelAt := strings.Index(content, SentinelMarker)
	fieldAt := strings.Index(content, toolCallsField)
	bare := isBareToolCallArray(content)

	if sentinelAt < 0 && fieldAt < 0 && !bare {
		return 0, false
	}

	for _, marker := range prefixMarkers {
		if at := strings.Index(content, marker); at >= 0 {
			return at, true
		}
	}
	if bare {
		return strings.Index(content, "[{"), true
	}
	// Field seen without its colon yet; withhold from the field on.
	return fieldAt, true
}

// isBareToolCallArray accepts the degenerate form where the whole accumulated
// text is itself a JSON array of tool calls.
func isBareToolCallArray(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "[{") && strings.Contains(trimmed, `"function"`)
}

// extractToolCallArray slices a complete JSON array of tool-call objects out
// of partial streamed text, parsing it through the same tool-call parser the
// batch loop uses. Returns nil while the array is absent or incomplete.
func extractToolCallArray(content string) []agent.ParsedToolCall {
	raw := sliceToolCallArray(content)
	if raw == "" {
		return nil
	}
	var entries []any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return agent.ParseToolCalls(map[string]any{"tool_calls": entries})
}

func sliceToolCallArray(content string) string {
	if at := strings.Index(content, SentinelMarker); at >= 0 {
		return balancedArray(content[at+len(SentinelMarker):])
	}
	if at := strings.Index(content, `"tool_calls":`); at >= 0 {
		return balancedArray(content[at:])
	}
	if isBareToolCallArray(content) {
		return strings.TrimSpace(content)
	}
	return ""
}

// balancedArray returns the first bracket-balanced span starting at the first
// '[' in s, or "" while the span is still open. Depth counting is not
// quote-aware; see the streamBuffer comment.
func balancedArray(s string) string {
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			if start < 0 {
				start = i
			}
			depth++
		case ']':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
