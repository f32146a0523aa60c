package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lyaesley/ai-embedded/transcript"
)

type memoryLog struct {
	options transcript.Options
	entries map[string][]transcript.Entry
	mtx     sync.RWMutex
}

func (l *memoryLog) Append(ctx context.Context, entries ...transcript.Entry) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	for _, entry := range entries {
		l.entries[entry.UserID] = append(l.entries[entry.UserID], entry)
	}

	return nil
}

func (l *memoryLog) List(ctx context.Context, userID string) ([]transcript.Entry, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	cpy := make([]transcript.Entry, len(l.entries[userID]))
	copy(cpy, l.entries[userID])

	sort.SliceStable(cpy, func(i, j int) bool {
		return cpy[i].CreatedAt.Before(cpy[j].CreatedAt)
	})

	return cpy, nil
}

func NewLog(opts ...transcript.Option) transcript.Log {
	options := transcript.NewOptions(opts...)

	return &memoryLog{
		options: options,
		entries: map[string][]transcript.Entry{},
		mtx:     sync.RWMutex{},
	}
}
