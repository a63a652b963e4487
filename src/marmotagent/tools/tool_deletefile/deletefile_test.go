package tool_deletefile

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/notes.txt", []byte("bye"), 0644))
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "notes.txt"})
	require.NoError(t, err)
	require.True(t, result.Success)

	_, statErr := fs.Stat("/work/notes.txt")
	assert.Error(t, statErr)
}

func TestDeleteFileNotFound(t *testing.T) {
	tool := New(afero.NewMemMapFs(), "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "missing.txt"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not found")
}

func TestDeleteFileRejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/sub", 0755))
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "sub"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "directory")

	_, statErr := fs.Stat("/work/sub")
	assert.NoError(t, statErr)
}

func TestDeleteFileEscapeRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/secret.txt", []byte("keep"), 0644))
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "../secret.txt"})
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, statErr := fs.Stat("/secret.txt")
	assert.NoError(t, statErr)
}
