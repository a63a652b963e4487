package tool_runcommand

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh is not available on windows")
	}
}

func TestRunCommandEcho(t *testing.T) {
	skipOnWindows(t)

	tool := New("", 10*time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo hello"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "hello\n", result.Data)
	assert.Equal(t, 0, result.Metadata["exit_code"])
	assert.Equal(t, false, result.Metadata["timed_out"])
}

func TestRunCommandNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	tool := New("", 10*time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "exit 3"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "exited with code 3")
	assert.Equal(t, 3, result.Metadata["exit_code"])
}

func TestRunCommandCapturesStderr(t *testing.T) {
	skipOnWindows(t)

	tool := New("", 10*time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo oops >&2"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "oops\n", result.Data)
	assert.Equal(t, "oops\n", result.Metadata["stderr"])
}

func TestRunCommandTimeout(t *testing.T) {
	skipOnWindows(t)

	tool := New("", 100*time.Millisecond)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "sleep 5"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out")
	assert.Equal(t, true, result.Metadata["timed_out"])
}

func TestRunCommandMissingCommand(t *testing.T) {
	tool := New("", time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestRunCommandWorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	tool := New(dir, 10*time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"command": "pwd"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, result.Data, dir)
}

func TestRunCommandTimeoutCarrier(t *testing.T) {
	tool := New("", 5*time.Second)
	assert.Equal(t, 5*time.Second, tool.Timeout())

	tool.SetTimeout(time.Minute)
	assert.Equal(t, time.Minute, tool.Timeout())
}
