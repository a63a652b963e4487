package tool_editfile

import (
	"context"
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/marmotcli/marmot/src/agent"
	"github.com/marmotcli/marmot/src/marmotagent/toolsutil"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = "edit_file"

const editFilePrompt = `Replaces an exact string occurrence in a file.

Usage:
- old_string must appear in the file exactly as given, including whitespace
- By default exactly one occurrence is replaced; the edit fails if old_string
  appears more than once unless replace_all is true
- Returns a unified diff of the change`

// EditFileTool performs exact string replacements in files.
type EditFileTool struct {
	fs         afero.Fs
	workingDir string
}

func New(fs afero.Fs, workingDir string) *EditFileTool {
	return &EditFileTool{fs: fs, workingDir: workingDir}
}

func (t *EditFileTool) Schema() agent.ToolSchema {
	return agent.ToolSchema{
		Name:        Name,
		Description: editFilePrompt,
		Parameters: []agent.ToolParameter{
			{Name: "path", Type: agent.TypeString, Description: "The file path to edit (absolute or relative to the working directory)", Required: true},
			{Name: "old_string", Type: agent.TypeString, Description: "The exact text to replace", Required: true},
			{Name: "new_string", Type: agent.TypeString, Description: "The replacement text", Required: true},
			{Name: "replace_all", Type: agent.TypeBoolean, Description: "Replace every occurrence instead of requiring a unique match", Default: false},
		},
	}
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	path, ok := toolsutil.StringArg(args, "path")
	if !ok {
		return agent.Fail("missing required parameter: path"), nil
	}
	oldString, ok := toolsutil.StringArg(args, "old_string")
	if !ok {
		return agent.Fail("missing required parameter: old_string"), nil
	}
	newString, ok := toolsutil.StringArg(args, "new_string")
	if !ok {
		return agent.Fail("missing required parameter: new_string"), nil
	}
	replaceAll, _ := toolsutil.BoolArg(args, "replace_all")

	if oldString == newString {
		return agent.Fail("old_string and new_string are identical"), nil
	}

	resolved, err := toolsutil.ResolvePath(t.workingDir, path)
	if err != nil {
		toolsutil.GetLogger().Error("unsafe path rejected", "path", path)
		return agent.Fail(err.Error()), nil
	}

	content, err := afero.ReadFile(t.fs, resolved)
	if err != nil {
		return agent.Fail(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	original := string(content)
	count := strings.Count(original, oldString)
	if count == 0 {
		return agent.Fail(fmt.Sprintf("old_string not found in %s", path)), nil
	}
	if count > 1 && !replaceAll {
		return agent.Fail(fmt.Sprintf("old_string appears %d times in %s; use replace_all to replace every occurrence", count, path)), nil
	}

	var updated string
	replaced := count
	if replaceAll {
		updated = strings.ReplaceAll(original, oldString, newString)
	} else {
		updated = strings.Replace(original, oldString, newString, 1)
		replaced = 1
	}

	if err := afero.WriteFile(t.fs, resolved, []byte(updated), 0644); err != nil {
		return agent.Fail(fmt.Sprintf("failed to write file: %v", err)), nil
	}

	diff := udiff.Unified(path, path, original, updated)
	toolsutil.GetLogger().Info("file edited", "path", resolved, "replacements", replaced)

	result := agent.Ok(fmt.Sprintf("replaced %d occurrence(s) in %s", replaced, resolved))
	result.Metadata = map[string]any{
		"path":         resolved,
		"replacements": replaced,
		"diff":         toolsutil.TruncateOutput(diff),
	}
	return result, nil
}
