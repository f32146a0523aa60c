package generator

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrGenerationFailed marks model-call failures so callers can tell them
// apart from retriable store errors.
var ErrGenerationFailed = errors.New("generation failed")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Generator interface {
	Generate(ctx context.Context, msgs []Message, opts ...CallOption) (string, error)
	Stream(ctx context.Context, msgs []Message, opts ...CallOption) (Stream, error)
}

// Stream is a finite, non-restartable sequence of text fragments.
// Recv returns io.EOF once the model is done.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// ImageGenerator is the optional image capability. Providers that cannot
// generate images simply do not implement it.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, count int, height int, width int) ([]string, error)
}
