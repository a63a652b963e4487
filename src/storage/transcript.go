package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// Execer is the write-side counterpart to sqlscan.Querier, satisfied by
// *sql.DB and *sql.Tx alike.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CreateConversation creates a new conversation record
func CreateConversation(ctx context.Context, db Execer, conversation *Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	if conversation.UpdatedAt.IsZero() {
		conversation.UpdatedAt = time.Now()
	}

	query := `INSERT INTO conversations (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, conversation.ID, conversation.Title, conversation.Model, conversation.CreatedAt, conversation.UpdatedAt)
	return err
}

// GetConversationByID retrieves a conversation by its ID
func GetConversationByID(ctx context.Context, db sqlscan.Querier, conversationID string) (*Conversation, error) {
	query := `SELECT id, title, model, created_at, updated_at FROM conversations WHERE id = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, db, &conv, query, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &conv, nil
}

// TouchConversation bumps a conversation's updated_at timestamp
func TouchConversation(ctx context.Context, db Execer, conversationID string) error {
	query := `UPDATE conversations SET updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), conversationID)
	return err
}

// ListConversations returns conversations ordered by most recently updated
func ListConversations(ctx context.Context, db sqlscan.Querier, limit int) ([]*Conversation, error) {
	query := `SELECT id, title, model, created_at, updated_at FROM conversations ORDER BY updated_at DESC LIMIT ?`
	var convs []*Conversation
	if err := sqlscan.Select(ctx, db, &convs, query, limit); err != nil {
		return nil, err
	}
	return convs, nil
}

// AppendMessage records a message in a conversation's transcript
func AppendMessage(ctx context.Context, db Execer, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, message.ID, message.ConversationID, message.Role, message.Content, message.CreatedAt)
	return err
}

// ListMessages returns a conversation's messages in chronological order
func ListMessages(ctx context.Context, db sqlscan.Querier, conversationID string) ([]*Message, error) {
	query := `SELECT id, conversation_id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at, rowid`
	var msgs []*Message
	if err := sqlscan.Select(ctx, db, &msgs, query, conversationID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// RecordToolExecution records a single tool invocation and its outcome
func RecordToolExecution(ctx context.Context, db Execer, exec *ToolExecution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now()
	}

	query := `INSERT INTO tool_executions (id, conversation_id, tool_name, input, output, error, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, exec.ID, exec.ConversationID, exec.ToolName, exec.Input, exec.Output, exec.Error, exec.DurationMs, exec.CreatedAt)
	return err
}

// ListToolExecutions returns a conversation's tool executions in chronological order
func ListToolExecutions(ctx context.Context, db sqlscan.Querier, conversationID string) ([]*ToolExecution, error) {
	query := `SELECT id, conversation_id, tool_name, input, output, error, duration_ms, created_at FROM tool_executions WHERE conversation_id = ? ORDER BY created_at, rowid`
	var execs []*ToolExecution
	if err := sqlscan.Select(ctx, db, &execs, query, conversationID); err != nil {
		return nil, err
	}
	return execs, nil
}
