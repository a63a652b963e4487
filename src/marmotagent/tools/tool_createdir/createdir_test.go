package tool_createdir

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirWithParents(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "a/b/c"})
	require.NoError(t, err)
	require.True(t, result.Success)

	info, err := fs.Stat("/work/a/b/c")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "/work/a/b/c", result.Metadata["path"])
}

func TestCreateDirExistingSucceeds(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/existing", 0755))
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "existing"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCreateDirMissingPath(t *testing.T) {
	tool := New(afero.NewMemMapFs(), "/work")

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "path")
}

func TestCreateDirEscapeRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	tool := New(fs, "/work")

	result, err := tool.Execute(context.Background(), map[string]any{"path": "../outside"})
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, statErr := fs.Stat("/outside")
	assert.Error(t, statErr)
}
