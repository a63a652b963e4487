package tool_deletefile

import (
	"context"
	"fmt"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "delete_file"

const deleteFilePrompt = `Deletes a single file.

Usage:
- The path parameter can be absolute or relative to the working directory
- Directories are not deleted by this tool`

// DeleteFileTool removes files from the sandboxed filesystem.
type DeleteFileTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *DeleteFileTool {
	return &DeleteFileTool{fs: fs, workingDir: workingDir}
}

func (t *DeleteFileTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: deleteFilePrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The file path to delete (absolute or relative to the working directory)", Required: true},
		},
	}
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	path, ok := toolsutil.StringArg(args, "path")
	if !ok {
		return agent.Fail("missing required parameter: path"), nil
	}

	resolved, err := toolsutil.ResolvePath(t.workingDir, path)
	if err != nil {
		toolsutil.GetLogger().Error("unsafe path rejected", "path", path)
		return agent.Fail(err.Error()), nil
	}

	info, err := t.fs.Stat(resolved)
	if err != nil {
		return agent.Fail(fmt.Sprintf("file not found: %s", path)), nil
	}
	if info.IsDir() {
		return agent.Fail(fmt.Sprintf("path is a directory: %s", path)), nil
	}

	if err := t.fs.Remove(resolved); err != nil {
		return agent.Fail(fmt.Sprintf("failed to delete file: %v", err)), nil
	}

	toolsutil.GetLogger().Info("file deleted", "path", resolved)

	result := agent.Ok(fmt.Sprintf("deleted %s", resolved))
	result.Metadata = map[string]any{"path": resolved}
	return result, nil
}
