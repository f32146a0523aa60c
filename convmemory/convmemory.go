package convmemory

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is immutable once created. The window and the transcript hold
// independent copies with different retention.
type Message struct {
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Manager maintains the bounded per-conversation message window.
// Turns on the same conversation id are not serialized here; concurrent
// persists are last-writer-wins on the full overwrite.
type Manager interface {
	// Load reconstructs the window from durable storage, at most the
	// configured window size, oldest first.
	Load(ctx context.Context, conversationID string) (*Window, error)

	// Persist overwrites durable storage with exactly the window's
	// current content. Messages stored beyond the window are superseded.
	Persist(ctx context.Context, conversationID string, window *Window) error
}

// Window is the in-memory bounded message sequence for one conversation.
// Appending past capacity evicts the oldest message first.
type Window struct {
	capacity int
	messages []Message
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultWindowSize
	}
	return &Window{capacity: capacity}
}

func (w *Window) Append(msg Message) {
	w.messages = append(w.messages, msg)
	if len(w.messages) > w.capacity {
		w.messages = w.messages[len(w.messages)-w.capacity:]
	}
}

func (w *Window) Messages() []Message {
	cpy := make([]Message, len(w.messages))
	copy(cpy, w.messages)
	return cpy
}

func (w *Window) Len() int {
	return len(w.messages)
}

func (w *Window) Capacity() int {
	return w.capacity
}
