package http

import (
	"context"
	"net/http"

	"github.com/lyaesley/ai-embedded/server"
)

type middlewareKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

type defaultConversationKey struct{}

// WithDefaultConversation sets the conversation id applied when a
// request does not carry one. The default lives here, at the outermost
// boundary; the core always receives an explicit id.
func WithDefaultConversation(id string) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, defaultConversationKey{}, id)
	}
}

func DefaultConversationFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(defaultConversationKey{}).(string)
	return id, ok
}
