package convmemory

import "context"

const DefaultWindowSize = 6

type Option func(*Options)

type Options struct {
	Location   string
	WindowSize int
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithWindowSize(size int) Option {
	return func(o *Options) {
		o.WindowSize = size
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		WindowSize: DefaultWindowSize,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
