package assistant

import (
	"context"
	"log/slog"

	"github.com/lyaesley/ai-embedded/prompt"
)

// Turn is the completed (or failed) exchange handed to observers after
// generation.
type Turn struct {
	ConversationID string
	UserText       string
	Request        *prompt.Request
	Response       string
	Err            error
}

// Observer is one ordered response hook applied after the model call.
type Observer interface {
	Name() string
	Observe(ctx context.Context, turn Turn)
}

type loggingObserver struct{}

func (o *loggingObserver) Name() string {
	return "logger"
}

func (o *loggingObserver) Observe(ctx context.Context, turn Turn) {
	if turn.Err != nil {
		slog.ErrorContext(
			ctx,
			"turn failed",
			"conversation_id", turn.ConversationID,
			"buffered", len(turn.Response),
			"error", turn.Err,
		)
		return
	}

	slog.InfoContext(
		ctx,
		"turn completed",
		"conversation_id", turn.ConversationID,
		"response_length", len(turn.Response),
		"citations", len(turn.Request.Citations),
	)
}

func NewLoggingObserver() Observer {
	return &loggingObserver{}
}
