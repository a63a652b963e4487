package tool_webfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Doc</title><style>body{}</style></head>
<body><h1>Heading</h1><p>Some <b>bold</b> text.</p><script>alert(1)</script></body></html>`

func sampleServer(contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		io.WriteString(w, body)
	}))
}

func TestWebFetchText(t *testing.T) {
	server := sampleServer("text/html", samplePage)
	defer server.Close()

	tool := New(5 * time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"url": server.URL})
	require.NoError(t, err)
	require.True(t, result.Success)

	text, ok := result.Data.(string)
	require.True(t, ok)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "Some bold text.")
	// Script and style bodies are stripped.
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "body{}")
}

func TestWebFetchMarkdown(t *testing.T) {
	server := sampleServer("text/html", samplePage)
	defer server.Close()

	tool := New(5 * time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{
		"url":    server.URL,
		"format": "markdown",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	md, _ := result.Data.(string)
	assert.Contains(t, md, "# Heading")
	assert.Contains(t, md, "**bold**")
}

func TestWebFetchJSONWrappedInMarkdown(t *testing.T) {
	server := sampleServer("application/json", `{"ok":true}`)
	defer server.Close()

	tool := New(5 * time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{
		"url":    server.URL,
		"format": "markdown",
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, result.Data, "```json")
}

func TestWebFetchRejectsBadInput(t *testing.T) {
	tool := New(time.Second)

	result, err := tool.Execute(context.Background(), map[string]any{"url": "ftp://nope"})
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Success)

	server := sampleServer("text/html", samplePage)
	defer server.Close()
	result, err = tool.Execute(context.Background(), map[string]any{
		"url":    server.URL,
		"format": "yaml",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestWebFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tool := New(time.Second)
	result, err := tool.Execute(context.Background(), map[string]any{"url": server.URL})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "404")
}
