package tool_createdir

import (
	"context"
	"fmt"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "create_directory"

const createDirPrompt = `Creates a directory, including any missing parents.

Usage:
- The path parameter can be absolute or relative to the working directory
- Creating a directory that already exists succeeds`

// CreateDirTool creates directories inside the sandboxed filesystem.
type CreateDirTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *CreateDirTool {
	return &CreateDirTool{fs: fs, workingDir: workingDir}
}

func (t *CreateDirTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: createDirPrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The directory path to create (absolute or relative to the working directory)", Required: true},
		},
	}
}

func (t *CreateDirTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	path, ok := toolsutil.StringArg(args, "path")
	if !ok {
		return agent.Fail("missing required parameter: path"), nil
	}

	resolved, err := toolsutil.ResolvePath(t.workingDir, path)
	if err != nil {
		toolsutil.GetLogger().Error("unsafe path rejected", "path", path)
		return agent.Fail(err.Error()), nil
	}

	if err := t.fs.MkdirAll(resolved, 0755); err != nil {
		return agent.Fail(fmt.Sprintf("failed to create directory: %v", err)), nil
	}

	toolsutil.GetLogger().Info("directory created", "path", resolved)

	result := agent.Ok(fmt.Sprintf("created %s", resolved))
	result.Metadata = map[string]any{"path": resolved}
	return result, nil
}
