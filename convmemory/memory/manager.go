package memory

import (
	"context"
	"sync"

	"github.com/lyaesley/ai-embedded/convmemory"
)

type memoryManager struct {
	options convmemory.Options
	windows map[string][]convmemory.Message
	mtx     sync.RWMutex
}

func (m *memoryManager) Load(ctx context.Context, conversationID string) (*convmemory.Window, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	window := convmemory.NewWindow(m.options.WindowSize)
	for _, msg := range m.windows[conversationID] {
		window.Append(msg)
	}

	return window, nil
}

func (m *memoryManager) Persist(ctx context.Context, conversationID string, window *convmemory.Window) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.windows[conversationID] = window.Messages()

	return nil
}

func NewManager(opts ...convmemory.Option) convmemory.Manager {
	options := convmemory.NewOptions(opts...)

	return &memoryManager{
		options: options,
		windows: map[string][]convmemory.Message{},
		mtx:     sync.RWMutex{},
	}
}
