package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrationsIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Re-opening must not re-apply migrations.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	row := db.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}

func TestConversationLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{Title: "debugging session", Model: "gpt-4o-mini"}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))
	assert.NotEmpty(t, conv.ID)
	assert.False(t, conv.CreatedAt.IsZero())

	got, err := GetConversationByID(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "debugging session", got.Title)
	assert.Equal(t, "gpt-4o-mini", got.Model)

	missing, err := GetConversationByID(ctx, db.DB(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	convs, err := ListConversations(ctx, db.DB(), 10)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestMessageTranscript(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{Model: "gpt-4"}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))

	require.NoError(t, AppendMessage(ctx, db.DB(), &Message{
		ConversationID: conv.ID, Role: "user", Content: "hello",
	}))
	require.NoError(t, AppendMessage(ctx, db.DB(), &Message{
		ConversationID: conv.ID, Role: "assistant", Content: "hi 世界",
	}))

	msgs, err := ListMessages(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hi 世界", msgs[1].Content)
}

func TestToolExecutionRecording(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{Model: "gpt-4"}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))

	require.NoError(t, RecordToolExecution(ctx, db.DB(), &ToolExecution{
		ConversationID: conv.ID,
		ToolName:       "read_file",
		Input:          `{"path":"main.go"}`,
		Output:         "package main",
		DurationMs:     12,
	}))
	require.NoError(t, RecordToolExecution(ctx, db.DB(), &ToolExecution{
		ConversationID: conv.ID,
		ToolName:       "run_command",
		Input:          `{"command":"false"}`,
		Error:          "command exited with code 1",
	}))

	execs, err := ListToolExecutions(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "read_file", execs[0].ToolName)
	assert.Equal(t, int64(12), execs[0].DurationMs)
	assert.Equal(t, "command exited with code 1", execs[1].Error)
}
