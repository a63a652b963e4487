// Package agent defines the tool capability contract, the tool registry, the
// dispatching executor, and the tool-call parser used by the orchestration
// loops.
package agent

import (
	"context"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/marmotcli/marmot/src/aisdk"
)

// ParamType is the closed set of semantic parameter types a tool schema may
// declare. Schema export maps each to a JSON-schema primitive type tag, with
// unrecognized values exporting as string.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// jsonType returns the JSON-schema type tag for the parameter type.
func (t ParamType) jsonType() jsonschema.SimpleType {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return jsonschema.SimpleType(t)
	default:
		return jsonschema.String
	}
}

// ToolParameter declares one named, typed tool parameter. Never mutated after
// construction.
type ToolParameter struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
}

// ToolSchema is the declarative description of a tool.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

// Declaration builds the external function-calling declaration for the tool.
func (s ToolSchema) Declaration() *aisdk.ChatTool {
	props := make(map[string]jsonschema.SchemaOrBool, len(s.Parameters))
	var required []string

	for _, param := range s.Parameters {
		simple := param.Type.jsonType()
		desc := param.Description
		prop := &jsonschema.Schema{
			Type:        &jsonschema.Type{SimpleTypes: &simple},
			Description: &desc,
		}
		if param.Default != nil {
			def := param.Default
			prop.Default = &def
		}
		props[param.Name] = jsonschema.SchemaOrBool{TypeObject: prop}
		if param.Required {
			required = append(required, param.Name)
		}
	}

	objType := jsonschema.Object
	return &aisdk.ChatTool{
		Type: "function",
		Function: aisdk.ToolFunction{
			Name:        s.Name,
			Description: s.Description,
			Parameters: &jsonschema.Schema{
				Type:       &jsonschema.Type{SimpleTypes: &objType},
				Properties: props,
				Required:   required,
			},
		},
	}
}

// ToolResult is the standardized outcome of a tool execution. On failure,
// Error carries the message; on success, Data may be absent (void writes).
type ToolResult struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Ok builds a successful result.
func Ok(data any) *ToolResult {
	return &ToolResult{Success: true, Data: data}
}

// Fail builds a failed result.
func Fail(message string) *ToolResult {
	return &ToolResult{Success: false, Error: message}
}

// Tool is the capability contract every tool implements.
type Tool interface {
	Schema() ToolSchema
	Execute(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// TimeoutCarrier is implemented by tools whose execution deadline the
// executor may override per call.
type TimeoutCarrier interface {
	Timeout() time.Duration
	SetTimeout(d time.Duration)
}
