package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmotcli/marmot/src/aisdk"
)

// fileState is the persisted whole-conversation document. Unicode content is
// preserved exactly; metadata keys added by callers round-trip untouched.
type fileState struct {
	SystemPrompt     *string        `json:"system_prompt"`
	MaxContextTokens int            `json:"max_context_tokens"`
	ModelName        string         `json:"model_name"`
	Messages         []messageState `json:"messages"`
	Metadata         map[string]any `json:"metadata"`
}

type messageState struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Save writes the whole conversation state to path as JSON. The write is an
// atomic whole-file overwrite: content lands in a temp file in the target
// directory and is renamed into place.
func (m *Manager) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}

	state := fileState{
		MaxContextTokens: m.maxContextTokens,
		ModelName:        m.modelName,
		Messages:         make([]messageState, 0, len(m.messages)),
		Metadata:         m.metadata,
	}
	if m.hasSystemPrompt {
		prompt := m.systemPrompt
		state.SystemPrompt = &prompt
	}
	for _, msg := range m.messages {
		state.Messages = append(state.Messages, messageState{Role: msg.Role, Content: msg.Content})
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".conversation-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace conversation file: %w", err)
	}

	m.logger.Info("conversation saved", "path", path, "messages", len(m.messages))
	return nil
}

// Load restores a conversation from path. A missing file fails with an error
// satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string, opts ...Option) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("conversation file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("read conversation file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse conversation file %s: %w", path, err)
	}

	systemPrompt := ""
	if state.SystemPrompt != nil {
		systemPrompt = *state.SystemPrompt
	}
	m := NewManager(systemPrompt, state.MaxContextTokens, state.ModelName, opts...)

	m.messages = m.messages[:0]
	for _, msg := range state.Messages {
		m.messages = append(m.messages, aisdk.Message{Role: msg.Role, Content: msg.Content})
	}
	if state.Metadata != nil {
		// JSON round-trips integers as float64; normalize the counter we own.
		state.Metadata[metaTurnCount] = metaInt(state.Metadata, metaTurnCount)
		m.metadata = state.Metadata
	}

	m.logger.Info("conversation loaded", "path", path, "messages", len(m.messages))
	return m, nil
}
