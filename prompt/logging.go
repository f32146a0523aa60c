package prompt

import (
	"context"
	"log/slog"
)

type loggingAdvisor struct{}

func (a *loggingAdvisor) Name() string {
	return "logger"
}

func (a *loggingAdvisor) Advise(ctx context.Context, req *Request) error {
	slog.DebugContext(
		ctx,
		"assembled request",
		"conversation_id", req.ConversationID,
		"retrieved", len(req.Retrieved),
		"history", len(req.History),
		"augmented", len(req.Augmented) > 0,
	)
	return nil
}

func NewLoggingAdvisor() Advisor {
	return &loggingAdvisor{}
}
