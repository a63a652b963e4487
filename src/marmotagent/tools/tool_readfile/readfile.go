package tool_readfile

import (
	"context"
	"fmt"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "read_file"

const readFilePrompt = `Reads a file from the local filesystem.

Usage:
- The path parameter can be absolute or relative to the working directory
- Returns the full file contents as text
- Files larger than 10MB are rejected`

// ReadFileTool reads files from the sandboxed filesystem.
type ReadFileTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *ReadFileTool {
	return &ReadFileTool{fs: fs, workingDir: workingDir}
}

func (t *ReadFileTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: readFilePrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The file path to read (absolute or relative to the working directory)", Required: true},
		},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
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
	if err := toolsutil.ValidateFileSize(info.Size()); err != nil {
		return agent.Fail(err.Error()), nil
	}

	content, err := afero.ReadFile(t.fs, resolved)
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	toolsutil.GetLogger().Info("file read", "path", resolved, "size", len(content))

	result := agent.Ok(toolsutil.TruncateOutput(string(content)))
	result.Metadata = map[string]any{"path": resolved, "size": info.Size()}
	return result, nil
}
