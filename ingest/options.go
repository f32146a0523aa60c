package ingest

import (
	"context"

	"github.com/lyaesley/ai-embedded/knowledgestore"
	"github.com/tmc/langchaingo/textsplitter"
)

type Option func(*Options)

type Options struct {
	Store    knowledgestore.Store
	Splitter textsplitter.TextSplitter
	Registry *Registry
	Context  context.Context
}

func WithStore(store knowledgestore.Store) Option {
	return func(o *Options) {
		o.Store = store
	}
}

func WithSplitter(splitter textsplitter.TextSplitter) Option {
	return func(o *Options) {
		o.Splitter = splitter
	}
}

func WithRegistry(registry *Registry) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Splitter: textsplitter.NewTokenSplitter(),
		Registry: NewRegistry(),
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
