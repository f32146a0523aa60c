package prompt

import (
	"github.com/lyaesley/ai-embedded/convmemory"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/knowledgestore"
)

// Request is the model request under assembly. Advisors fill it in
// order; Messages renders the final shape for the generator.
type Request struct {
	ConversationID string
	UserText       string

	// Augmented is the user text with the citation block appended, or
	// the original text when retrieval came back empty.
	Augmented string

	System    string
	History   []generator.Message
	Citations []string
	Retrieved []knowledgestore.Result

	// Window is the hydrated conversation window, kept so the write-back
	// after generation appends to the same state it rendered.
	Window *convmemory.Window
}

func (r *Request) Messages() []generator.Message {
	msgs := make([]generator.Message, 0, len(r.History)+2)

	if len(r.System) > 0 {
		msgs = append(msgs, generator.Message{Role: generator.RoleSystem, Content: r.System})
	}

	msgs = append(msgs, r.History...)

	text := r.Augmented
	if len(text) == 0 {
		text = r.UserText
	}
	msgs = append(msgs, generator.Message{Role: generator.RoleUser, Content: text})

	return msgs
}
