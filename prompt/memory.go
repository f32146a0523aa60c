package prompt

import (
	"context"

	"github.com/lyaesley/ai-embedded/convmemory"
	"github.com/lyaesley/ai-embedded/generator"
)

type memoryAdvisor struct {
	manager convmemory.Manager
}

func (a *memoryAdvisor) Name() string {
	return "memory"
}

func (a *memoryAdvisor) Advise(ctx context.Context, req *Request) error {
	window, err := a.manager.Load(ctx, req.ConversationID)
	if err != nil {
		return err
	}

	req.Window = window

	for _, msg := range window.Messages() {
		req.History = append(req.History, generator.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return nil
}

func NewMemoryAdvisor(manager convmemory.Manager) Advisor {
	return &memoryAdvisor{manager: manager}
}
