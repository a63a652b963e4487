package agent

import (
	"sort"

	"github.com/marmotcli/marmot/src/aisdk"
)

// Registry is a lookup table from tool name to Tool. Register overwrites on
// name collision: the last writer wins.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its schema name, replacing any existing tool
// with the same name.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Schema().Name] = tool
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Export produces one function declaration per registered tool, in name
// order, for the model's tools option.
func (r *Registry) Export() []*aisdk.ChatTool {
	out := make([]*aisdk.ChatTool, 0, len(r.tools))
	for _, name := range r.Names() {
		out = append(out, r.tools[name].Schema().Declaration())
	}
	return out
}
