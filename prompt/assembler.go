package prompt

import (
	"context"
	"fmt"
)

// Advisor is one ordered request-transform applied before the model
// call. The chain replaces the framework advisor composition of the
// original design with an explicit list.
type Advisor interface {
	Name() string
	Advise(ctx context.Context, req *Request) error
}

type Assembler struct {
	advisors []Advisor
}

func NewAssembler(advisors ...Advisor) *Assembler {
	return &Assembler{advisors: advisors}
}

func (a *Assembler) Assemble(ctx context.Context, conversationID string, userText string) (*Request, error) {
	req := &Request{
		ConversationID: conversationID,
		UserText:       userText,
	}

	for _, advisor := range a.advisors {
		if err := advisor.Advise(ctx, req); err != nil {
			return nil, fmt.Errorf("advisor %s: %w", advisor.Name(), err)
		}
	}

	return req, nil
}
