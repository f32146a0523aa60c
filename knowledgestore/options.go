package knowledgestore

import (
	"context"

	"github.com/lyaesley/ai-embedded/embedder"
)

const (
	DefaultTopK      = 6
	DefaultThreshold = 0.3
)

type Option func(*Options)

type Options struct {
	Location              string
	Embedder              embedder.Embedder
	ClearOnEmptyPredicate bool
	Context               context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithEmbedder(embedder embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = embedder
	}
}

// WithClearOnEmptyPredicate makes DeleteByMetadata with an empty key
// clear the whole store instead of doing nothing.
func WithClearOnEmptyPredicate(clear bool) Option {
	return func(o *Options) {
		o.ClearOnEmptyPredicate = clear
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type QueryOption func(*QueryOptions)

type QueryOptions struct {
	TopK      int
	Threshold float64
	Context   context.Context
}

func WithTopK(topK int) QueryOption {
	return func(o *QueryOptions) {
		o.TopK = topK
	}
}

func WithThreshold(threshold float64) QueryOption {
	return func(o *QueryOptions) {
		o.Threshold = threshold
	}
}

func NewQueryOptions(opts ...QueryOption) QueryOptions {
	options := QueryOptions{
		TopK:      DefaultTopK,
		Threshold: DefaultThreshold,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
