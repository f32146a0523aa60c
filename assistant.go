package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lyaesley/ai-embedded/convmemory"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/prompt"
	"github.com/lyaesley/ai-embedded/transcript"
)

// Assistant drives one conversational turn: assemble the retrieval-
// augmented request, call the model, then durably record the exchange
// in the bounded window and the append-only transcript exactly once.
type Assistant struct {
	assembler   *prompt.Assembler
	generator   generator.Generator
	memory      convmemory.Manager
	transcripts transcript.Log
	observers   []Observer
}

func (a *Assistant) Respond(ctx context.Context, conversationID string, userText string) (string, error) {
	if len(strings.TrimSpace(userText)) == 0 {
		return "", errors.New("user input is required")
	}

	req, err := a.assembler.Assemble(ctx, conversationID, userText)
	if err != nil {
		return "", err
	}

	result, err := a.generator.Generate(ctx, req.Messages())
	if err != nil {
		err = fmt.Errorf("%w: %v", generator.ErrGenerationFailed, err)
		a.observe(ctx, Turn{ConversationID: conversationID, UserText: userText, Request: req, Err: err})
		return "", err
	}

	a.writeBack(ctx, conversationID, req, userText, result)

	a.observe(ctx, Turn{ConversationID: conversationID, UserText: userText, Request: req, Response: result})

	return result, nil
}

// RespondStream forwards each model fragment to emit as it arrives and
// buffers the concatenation. Write-back happens once, after the stream
// ends; on abnormal termination (model failure or emit refusing a
// fragment) whatever was buffered is still recorded and the error is
// surfaced alongside the partial text.
func (a *Assistant) RespondStream(ctx context.Context, conversationID string, userText string, emit func(fragment string) error) (string, error) {
	if len(strings.TrimSpace(userText)) == 0 {
		return "", errors.New("user input is required")
	}

	req, err := a.assembler.Assemble(ctx, conversationID, userText)
	if err != nil {
		return "", err
	}

	stream, err := a.generator.Stream(ctx, req.Messages())
	if err != nil {
		err = fmt.Errorf("%w: %v", generator.ErrGenerationFailed, err)
		a.observe(ctx, Turn{ConversationID: conversationID, UserText: userText, Request: req, Err: err})
		return "", err
	}
	defer stream.Close()

	buffered, streamErr := fold(stream, emit)

	a.writeBack(ctx, conversationID, req, userText, buffered)

	if streamErr != nil {
		streamErr = fmt.Errorf("%w: %v", generator.ErrGenerationFailed, streamErr)
	}

	a.observe(ctx, Turn{ConversationID: conversationID, UserText: userText, Request: req, Response: buffered, Err: streamErr})

	return buffered, streamErr
}

// fold drains the fragment sequence into a single accumulator with one
// writer: this loop. Each fragment is buffered, then forwarded; an emit
// error stops production but keeps what was already buffered.
func fold(stream generator.Stream, emit func(string) error) (string, error) {
	var b strings.Builder

	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}

		b.WriteString(fragment)

		if emit != nil {
			if err := emit(fragment); err != nil {
				return b.String(), err
			}
		}
	}
}

// writeBack appends the user and assistant messages to the window and
// persists it in full, and appends both to the transcript. The two
// stores are independent: a failure in one never prevents the other
// from being attempted.
func (a *Assistant) writeBack(ctx context.Context, conversationID string, req *prompt.Request, userText string, response string) {
	// the write-back must survive the caller disconnecting mid-stream;
	// a canceled request context would make every ctx-respecting store
	// refuse the recording
	ctx = context.WithoutCancel(ctx)

	now := time.Now().UTC()

	window := req.Window
	if window == nil {
		var err error
		window, err = a.memory.Load(ctx, conversationID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to load window for write-back", "conversation_id", conversationID, "error", err)
			window = convmemory.NewWindow(0)
		}
	}

	window.Append(convmemory.Message{
		ConversationID: conversationID,
		Role:           convmemory.RoleUser,
		Content:        userText,
		CreatedAt:      now,
	})
	window.Append(convmemory.Message{
		ConversationID: conversationID,
		Role:           convmemory.RoleAssistant,
		Content:        response,
		CreatedAt:      now.Add(time.Millisecond),
	})

	if err := a.memory.Persist(ctx, conversationID, window); err != nil {
		slog.ErrorContext(ctx, "failed to persist window", "conversation_id", conversationID, "error", err)
	}

	entries := []transcript.Entry{
		{UserID: conversationID, Role: convmemory.RoleUser, Content: userText, CreatedAt: now},
		{UserID: conversationID, Role: convmemory.RoleAssistant, Content: response, CreatedAt: now.Add(time.Millisecond)},
	}

	if err := a.transcripts.Append(ctx, entries...); err != nil {
		slog.ErrorContext(ctx, "failed to append transcript", "conversation_id", conversationID, "error", err)
	}
}

func (a *Assistant) observe(ctx context.Context, turn Turn) {
	for _, observer := range a.observers {
		observer.Observe(ctx, turn)
	}
}

func New(
	assembler *prompt.Assembler,
	gen generator.Generator,
	memory convmemory.Manager,
	transcripts transcript.Log,
	observers ...Observer,
) *Assistant {
	if assembler == nil {
		panic("assembler is required")
	}

	if gen == nil {
		panic("generator is required")
	}

	if memory == nil {
		panic("conversation memory is required")
	}

	if transcripts == nil {
		panic("transcript log is required")
	}

	return &Assistant{
		assembler:   assembler,
		generator:   gen,
		memory:      memory,
		transcripts: transcripts,
		observers:   observers,
	}
}
