package tool_listdir

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "list_directory"

const listDirPrompt = `Lists the entries of a directory.

Usage:
- The path parameter can be absolute or relative to the working directory
- Directories are suffixed with a trailing slash
- Entries are sorted by name`

// ListDirTool lists directory contents inside the sandboxed filesystem.
type ListDirTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *ListDirTool {
	return &ListDirTool{fs: fs, workingDir: workingDir}
}

func (t *ListDirTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: listDirPrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The directory path to list (absolute or relative to the working directory)", Required: true},
		},
	}
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	path, ok := toolsutil.StringArg(args, "path")
	if !ok {
		return agent.Fail("missing required parameter: path"), nil
	}

	resolved, err := toolsutil.ResolvePath(t.workingDir, path)
	if err != nil {
		toolsutil.GetLogger().Error("unsafe path rejected", "path", path)
		return agent.Fail(err.Error()), nil
	}

	infos, err := afero.ReadDir(t.fs, resolved)
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to list directory: %v", err)), nil
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	result := agent.Ok(toolsutil.TruncateOutput(strings.Join(names, "\n")))
	result.Metadata = map[string]any{"path": resolved, "count": len(names)}
	return result, nil
}
