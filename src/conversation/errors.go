package conversation

import "errors"

// Validation errors. Raised before any state mutation.
var (
	ErrInvalidRole       = errors.New("invalid message role")
	ErrEmptyContent      = errors.New("message content cannot be empty")
	ErrEmptySystemPrompt = errors.New("system prompt cannot be empty")
)

// ErrContextOverflow is the fatal, non-retryable truncation failure: even the
// minimal suffix of conversation messages does not fit within the target token
// budget. Callers must raise max_context_tokens, lower reserve_tokens, or look
// for abnormally large individual messages.
var ErrContextOverflow = errors.New("cannot fit conversation within token limit")
