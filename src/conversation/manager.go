// Package conversation manages multi-turn conversation state: message
// history, token accounting, truncation via model summarization, and
// whole-file persistence.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marmotcli/marmot/src/aisdk"
	"github.com/marmotcli/marmot/src/tokenizer"
)

// Token accounting constants. Every message costs its encoded content length
// plus a fixed per-message framing overhead, plus a flat overhead for the
// whole prompt. The exact values are an internal contract kept stable for
// deterministic budgeting, not a claim about any provider's real framing.
const (
	perMessageOverhead = 4
	promptOverhead     = 2
)

const summarySystemPrompt = "Summarize the following conversation concisely in one paragraph."

// Summarizer is the capability used to compress dropped history. In
// production this is the model client's chat operation.
type Summarizer interface {
	Summarize(ctx context.Context, messages []aisdk.Message) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, messages []aisdk.Message) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, messages []aisdk.Message) (string, error) {
	return f(ctx, messages)
}

// Metadata keys maintained by the manager. Callers may add their own keys;
// they round-trip through Save/Load untouched.
const (
	metaCreatedAt = "created_at"
	metaUpdatedAt = "updated_at"
	metaTurnCount = "turn_count"
)

// Manager owns a conversation's message history and metadata. It is not safe
// for concurrent use; run one Manager per session.
type Manager struct {
	messages         []aisdk.Message
	systemPrompt     string
	hasSystemPrompt  bool
	maxContextTokens int
	modelName        string
	metadata         map[string]any
	encoding         tokenizer.Encoding
	logger           *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithEncoding overrides the token encoding. Default is the encoding for the
// manager's model name.
func WithEncoding(enc tokenizer.Encoding) Option {
	return func(m *Manager) { m.encoding = enc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager. An empty systemPrompt means no system message.
func NewManager(systemPrompt string, maxContextTokens int, modelName string, opts ...Option) *Manager {
	m := &Manager{
		maxContextTokens: maxContextTokens,
		modelName:        modelName,
		metadata:         freshMetadata(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "conversation")
	if m.encoding == nil {
		enc, known := tokenizer.ForModel(modelName)
		if !known {
			m.logger.Warn("model not recognized, using default encoding",
				"model", modelName, "encoding", enc.Name())
		}
		m.encoding = enc
	}
	if systemPrompt != "" {
		m.systemPrompt = systemPrompt
		m.hasSystemPrompt = true
		m.messages = append(m.messages, aisdk.Message{Role: aisdk.RoleSystem, Content: systemPrompt})
	}
	m.logger.Debug("conversation manager initialized", "max_tokens", maxContextTokens, "model", modelName)
	return m
}

func freshMetadata() map[string]any {
	now := time.Now().Format(time.RFC3339Nano)
	return map[string]any{
		metaCreatedAt: now,
		metaUpdatedAt: now,
		metaTurnCount: 0,
	}
}

// ModelName returns the model this conversation is budgeted for.
func (m *Manager) ModelName() string { return m.modelName }

// MaxContextTokens returns the context budget.
func (m *Manager) MaxContextTokens() int { return m.maxContextTokens }

// Metadata returns the live metadata map. Callers may add custom keys; they
// are persisted verbatim.
func (m *Manager) Metadata() map[string]any { return m.metadata }

// TurnCount returns the number of user turns recorded so far.
func (m *Manager) TurnCount() int { return metaInt(m.metadata, metaTurnCount) }

// AddMessage validates and appends a message. Role must be one of system,
// user, assistant, or tool; content must be non-empty. A user message
// increments the turn count.
func (m *Manager) AddMessage(role, content string) error {
	switch role {
	case aisdk.RoleSystem, aisdk.RoleUser, aisdk.RoleAssistant, aisdk.RoleTool:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if content == "" {
		return ErrEmptyContent
	}

	m.messages = append(m.messages, aisdk.Message{Role: role, Content: content})
	m.metadata[metaUpdatedAt] = time.Now().Format(time.RFC3339Nano)
	if role == aisdk.RoleUser {
		m.metadata[metaTurnCount] = m.TurnCount() + 1
	}
	m.logger.Debug("message added", "role", role, "chars", len(content))
	return nil
}

// GetMessages returns a copy of the history, optionally excluding system
// messages.
func (m *Manager) GetMessages(includeSystem bool) []aisdk.Message {
	out := make([]aisdk.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		if !includeSystem && msg.Role == aisdk.RoleSystem {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// CountTokens sums the token cost of the given messages, or of the full
// history when messages is nil. Pure and deterministic for a fixed encoding.
func (m *Manager) CountTokens(messages []aisdk.Message) int {
	if messages == nil {
		messages = m.messages
	}
	total := 0
	for _, msg := range messages {
		total += len(m.encoding.Encode(msg.Content)) + perMessageOverhead
	}
	return total + promptOverhead
}

// TruncateContext shrinks the history to fit targetTokens (the manager's max
// when targetTokens <= 0). System messages are never summarized or dropped.
// The dropped prefix of conversation messages is replaced by a single
// synthetic user message carrying a model-generated summary. Returns the
// number of dropped original messages.
//
// Fails with ErrContextOverflow when no suffix of the conversation fits the
// target; that case is non-retryable and fires before any summarization call.
func (m *Manager) TruncateContext(ctx context.Context, targetTokens int, summarizer Summarizer) (int, error) {
	if targetTokens <= 0 {
		targetTokens = m.maxContextTokens
	}

	current := m.CountTokens(nil)
	if current <= targetTokens {
		m.logger.Debug("context within limits", "tokens", current, "target", targetTokens)
		return 0, nil
	}

	var system, convo []aisdk.Message
	for _, msg := range m.messages {
		if msg.Role == aisdk.RoleSystem {
			system = append(system, msg)
		} else {
			convo = append(convo, msg)
		}
	}

	// Scan split points from dropping the most to dropping the least and take
	// the first suffix that fits. Index 0 keeps everything, which is already
	// known not to fit.
	splitIndex := 0
	for i := range convo {
		candidate := append(append([]aisdk.Message{}, system...), convo[i:]...)
		if m.CountTokens(candidate) <= targetTokens {
			splitIndex = i
			break
		}
	}
	if splitIndex == 0 {
		return 0, fmt.Errorf("%w (target %d tokens): increase max_context_tokens, reduce reserve_tokens, or check for abnormally large messages", ErrContextOverflow, targetTokens)
	}

	dropped := convo[:splitIndex]
	remaining := convo[splitIndex:]

	summary, err := m.summarize(ctx, dropped, summarizer)
	if err != nil {
		return 0, fmt.Errorf("summarize dropped context: %w", err)
	}

	summaryMsg := aisdk.Message{Role: aisdk.RoleUser, Content: "[Context Summary]: " + summary}
	rewritten := append(append([]aisdk.Message{}, system...), summaryMsg)
	m.messages = append(rewritten, remaining...)

	m.logger.Info("context truncated",
		"dropped", len(dropped),
		"tokens", m.CountTokens(nil),
		"target", targetTokens)
	return len(dropped), nil
}

func (m *Manager) summarize(ctx context.Context, dropped []aisdk.Message, summarizer Summarizer) (string, error) {
	lines := make([]string, 0, len(dropped))
	for _, msg := range dropped {
		lines = append(lines, strings.ToUpper(msg.Role)+": "+msg.Content)
	}
	request := []aisdk.Message{
		{Role: aisdk.RoleSystem, Content: summarySystemPrompt},
		{Role: aisdk.RoleUser, Content: strings.Join(lines, "\n\n")},
	}
	return summarizer.Summarize(ctx, request)
}

// PrepareMessagesForAPI is the single entry point orchestrators use before a
// model call: it truncates so the outgoing payload plus reserveTokens of
// response headroom fits the budget, then returns the full message list.
func (m *Manager) PrepareMessagesForAPI(ctx context.Context, reserveTokens int, summarizer Summarizer) ([]aisdk.Message, error) {
	target := m.maxContextTokens - reserveTokens
	if _, err := m.TruncateContext(ctx, target, summarizer); err != nil {
		return nil, err
	}
	return m.GetMessages(true), nil
}

// SetSystemPrompt inserts a system message at index 0. With replace set, all
// existing system messages are stripped first.
func (m *Manager) SetSystemPrompt(prompt string, replace bool) error {
	if prompt == "" {
		return ErrEmptySystemPrompt
	}
	if replace {
		kept := m.messages[:0]
		for _, msg := range m.messages {
			if msg.Role != aisdk.RoleSystem {
				kept = append(kept, msg)
			}
		}
		m.messages = kept
	}
	m.messages = append([]aisdk.Message{{Role: aisdk.RoleSystem, Content: prompt}}, m.messages...)
	m.systemPrompt = prompt
	m.hasSystemPrompt = true
	m.logger.Debug("system prompt updated")
	return nil
}

// SystemPrompt returns the content of the first system message, if any.
func (m *Manager) SystemPrompt() (string, bool) {
	for _, msg := range m.messages {
		if msg.Role == aisdk.RoleSystem {
			return msg.Content, true
		}
	}
	return "", false
}

// Reset clears the history. With keepSystemPrompt, the history becomes
// exactly the system message; otherwise it becomes empty and the system
// prompt is cleared. Metadata is fully reinitialized.
func (m *Manager) Reset(keepSystemPrompt bool) {
	if keepSystemPrompt && m.hasSystemPrompt {
		m.messages = []aisdk.Message{{Role: aisdk.RoleSystem, Content: m.systemPrompt}}
	} else {
		m.messages = nil
		m.systemPrompt = ""
		m.hasSystemPrompt = false
	}
	m.metadata = freshMetadata()
	m.logger.Debug("conversation reset", "keep_system_prompt", keepSystemPrompt)
}

// Summary is a derived read-only snapshot of the conversation.
type Summary struct {
	TurnCount         int     `json:"turn_count"`
	MessageCount      int     `json:"message_count"`
	TotalTokens       int     `json:"total_tokens"`
	MaxTokens         int     `json:"max_tokens"`
	TokenUsagePercent float64 `json:"token_usage_percent"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	HasSystemPrompt   bool    `json:"has_system_prompt"`
}

// Summary returns the current snapshot.
func (m *Manager) Summary() Summary {
	total := m.CountTokens(nil)
	return Summary{
		TurnCount:         m.TurnCount(),
		MessageCount:      len(m.messages),
		TotalTokens:       total,
		MaxTokens:         m.maxContextTokens,
		TokenUsagePercent: float64(total) / float64(m.maxContextTokens) * 100,
		CreatedAt:         metaString(m.metadata, metaCreatedAt),
		UpdatedAt:         metaString(m.metadata, metaUpdatedAt),
		HasSystemPrompt:   m.hasSystemPrompt,
	}
}

// metaInt reads an integer metadata value, tolerating the float64 that JSON
// round-trips produce.
func metaInt(md map[string]any, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func metaString(md map[string]any, key string) string {
	if s, ok := md[key].(string); ok {
		return s
	}
	return ""
}
