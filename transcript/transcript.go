package transcript

import (
	"context"
	"time"
)

// Entry is one row of the append-only chat history. Entries are never
// evicted; creation time defines replay order.
type Entry struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Log interface {
	Append(ctx context.Context, entries ...Entry) error
	List(ctx context.Context, userID string) ([]Entry, error)
}
