package tool_writefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "write_file"

const writeFilePrompt = `Writes content to a file, creating it if it does not exist.

Usage:
- The path parameter can be absolute or relative to the working directory
- Parent directories are created automatically
- Set append: true to append to the file instead of overwriting it`

// WriteFileTool writes files inside the sandboxed filesystem.
type WriteFileTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *WriteFileTool {
	return &WriteFileTool{fs: fs, workingDir: workingDir}
}

func (t *WriteFileTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: writeFilePrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The file path to write (absolute or relative to the working directory)", Required: true},
			{Name: "content", Type: agent.TypeString, Description: "The content to write", Required: true},
			{Name: "append", Type: agent.TypeBoolean, Description: "Append to the file instead of overwriting", Default: false},
		},
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	path, ok := toolsutil.StringArg(args, "path")
	if !ok {
		return agent.Fail("missing required parameter: path"), nil
	}
	content, ok := toolsutil.StringArg(args, "content")
	if !ok {
		return agent.Fail("missing required parameter: content"), nil
	}
	appendMode, _ := toolsutil.BoolArg(args, "append")

	resolved, err := toolsutil.ResolvePath(t.workingDir, path)
	if err != nil {
		toolsutil.GetLogger().Error("unsafe path rejected", "path", path)
		return agent.Fail(err.Error()), nil
	}

	if err := t.fs.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return agent.Fail(fmt.Sprintf("failed to create parent directory: %v", err)), nil
	}

	if appendMode {
		f, err := t.fs.OpenFile(resolved, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return agent.Fail(fmt.Sprintf("failed to open file: %v", err)), nil
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return agent.Fail(fmt.Sprintf("failed to append to file: %v", err)), nil
		}
	} else {
		if err := afero.WriteFile(t.fs, resolved, []byte(content), 0644); err != nil {
			return agent.Fail(fmt.Sprintf("failed to write file: %v", err)), nil
		}
	}

	toolsutil.GetLogger().Info("file written", "path", resolved, "size", len(content), "append", appendMode)

	result := agent.Ok(fmt.Sprintf("wrote %d bytes to %s", len(content), resolved))
	result.Metadata = map[string]any{"path": resolved, "size": len(content), "append": appendMode}
	return result, nil
}
