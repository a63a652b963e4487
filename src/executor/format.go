package executor

import (
	"encoding/json"
	"fmt"

	"github.com/marmotcli/marmot/src/agent"
)

// FormatToolResponse renders a tool result as the content of a role=tool
// message: successful data is serialized, failures become "Error: ...", and a
// failure without a message becomes "Unknown error".
func FormatToolResponse(result *agent.ToolResult) string {
	if result.Success {
		return serializeToolData(result.Data)
	}
	if result.Error == "" {
		return "Unknown error"
	}
	return "Error: " + result.Error
}

// serializeToolData converts tool output to message content: strings pass
// through verbatim, structured data (maps, slices, structs) is JSON-encoded,
// nil becomes empty, and scalars use their default string representation.
func serializeToolData(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(v)
	default:
		if encoded, err := json.Marshal(v); err == nil {
			return string(encoded)
		}
		return fmt.Sprint(v)
	}
}
