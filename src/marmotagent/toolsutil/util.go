package toolsutil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Package-level logger for tools
var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.LevelError,
}))

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// GetLogger returns the tools package logger
func GetLogger() *slog.Logger {
	return logger
}

var (
	ErrUnsafePath   = errors.New("unsafe path")
	ErrFileTooLarge = errors.New("file too large")
	ErrMissingParam = errors.New("missing required parameter")
)

// MaxFileSize is the largest file the filesystem tools will read or write.
const MaxFileSize = 10 * 1024 * 1024

// MaxOutputLength bounds tool output returned to the model.
const MaxOutputLength = 100000

// ValidateFileSize rejects files beyond MaxFileSize
func ValidateFileSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, MaxFileSize)
	}
	return nil
}

// ResolvePath resolves path inside workingDir and rejects escapes.
// Relative paths are joined to workingDir; absolute paths must already
// be inside it. An empty workingDir disables the sandbox.
func ResolvePath(workingDir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path", ErrMissingParam)
	}
	if workingDir == "" {
		return filepath.Clean(path), nil
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(workingDir, resolved)
	}
	resolved = filepath.Clean(resolved)

	root := filepath.Clean(workingDir)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes working directory", ErrUnsafePath, path)
	}
	return resolved, nil
}

// TruncateOutput caps s at MaxOutputLength, appending a marker when cut.
func TruncateOutput(s string) string {
	if len(s) <= MaxOutputLength {
		return s
	}
	cut := MaxOutputLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (output truncated)"
}

// StringArg extracts a string argument, with ok reporting presence.
func StringArg(args map[string]any, key string) (string, bool) {
	v, exists := args[key]
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntArg extracts an integer argument, tolerating JSON float64 values.
func IntArg(args map[string]any, key string) (int, bool) {
	v, exists := args[key]
	if !exists {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// BoolArg extracts a boolean argument.
func BoolArg(args map[string]any, key string) (bool, bool) {
	v, exists := args[key]
	if !exists {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
