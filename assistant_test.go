package assistant

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/lyaesley/ai-embedded/convmemory"
	convmemorymem "github.com/lyaesley/ai-embedded/convmemory/memory"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/prompt"
	"github.com/lyaesley/ai-embedded/transcript"
	transcriptmem "github.com/lyaesley/ai-embedded/transcript/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator plays back a fixed response or fragment sequence,
// optionally failing partway through the stream.
type scriptedGenerator struct {
	response    string
	fragments   []string
	generateErr error
	streamErr   error
	lastMsgs    []generator.Message
}

func (g *scriptedGenerator) Generate(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (string, error) {
	g.lastMsgs = msgs
	if g.generateErr != nil {
		return "", g.generateErr
	}
	return g.response, nil
}

func (g *scriptedGenerator) Stream(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (generator.Stream, error) {
	g.lastMsgs = msgs
	if g.generateErr != nil {
		return nil, g.generateErr
	}
	return &scriptedStream{fragments: g.fragments, err: g.streamErr}, nil
}

type scriptedStream struct {
	fragments []string
	err       error
	pos       int
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *scriptedStream) Close() error {
	return nil
}

// ctxAwareManager refuses work once its context is done, the way the
// database-backed providers do.
type ctxAwareManager struct {
	inner convmemory.Manager
}

func (m *ctxAwareManager) Load(ctx context.Context, conversationID string) (*convmemory.Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.inner.Load(ctx, conversationID)
}

func (m *ctxAwareManager) Persist(ctx context.Context, conversationID string, window *convmemory.Window) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.inner.Persist(ctx, conversationID, window)
}

type ctxAwareLog struct {
	inner transcript.Log
}

func (l *ctxAwareLog) Append(ctx context.Context, entries ...transcript.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.inner.Append(ctx, entries...)
}

func (l *ctxAwareLog) List(ctx context.Context, userID string) ([]transcript.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.inner.List(ctx, userID)
}

type fixture struct {
	assistant   *Assistant
	gen         *scriptedGenerator
	memory      convmemory.Manager
	transcripts transcript.Log
}

func newFixture(gen *scriptedGenerator) fixture {
	memory := convmemorymem.NewManager(convmemory.WithWindowSize(6))
	transcripts := transcriptmem.NewLog()

	return fixture{
		assistant: New(
			prompt.NewAssembler(prompt.NewMemoryAdvisor(memory)),
			gen,
			memory,
			transcripts,
		),
		gen:         gen,
		memory:      memory,
		transcripts: transcripts,
	}
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("writes both sides of the turn back exactly once", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{response: "the answer"})

		result, err := f.assistant.Respond(ctx, "conv-1", "the question")
		require.NoError(t, err)
		assert.Equal(t, "the answer", result)

		window, err := f.memory.Load(ctx, "conv-1")
		require.NoError(t, err)
		msgs := window.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, convmemory.RoleUser, msgs[0].Role)
		assert.Equal(t, "the question", msgs[0].Content)
		assert.Equal(t, convmemory.RoleAssistant, msgs[1].Role)
		assert.Equal(t, "the answer", msgs[1].Content)

		entries, err := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "the question", entries[0].Content)
		assert.Equal(t, "the answer", entries[1].Content)
	})

	t.Run("history from earlier turns reaches the model", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{response: "second answer"})

		_, err := f.assistant.Respond(ctx, "conv-1", "first question")
		require.NoError(t, err)

		_, err = f.assistant.Respond(ctx, "conv-1", "second question")
		require.NoError(t, err)

		require.Len(t, f.gen.lastMsgs, 3)
		assert.Equal(t, "first question", f.gen.lastMsgs[0].Content)
		assert.Equal(t, generator.RoleAssistant, f.gen.lastMsgs[1].Role)
		assert.Equal(t, "second question", f.gen.lastMsgs[2].Content)
	})

	t.Run("blank input is rejected before any model call", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{response: "unused"})

		_, err := f.assistant.Respond(ctx, "conv-1", "   ")
		require.Error(t, err)
		assert.Nil(t, f.gen.lastMsgs)
	})

	t.Run("model failure records nothing", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{generateErr: errors.New("model down")})

		_, err := f.assistant.Respond(ctx, "conv-1", "the question")
		require.ErrorIs(t, err, generator.ErrGenerationFailed)

		window, loadErr := f.memory.Load(ctx, "conv-1")
		require.NoError(t, loadErr)
		assert.Equal(t, 0, window.Len())

		entries, listErr := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, listErr)
		assert.Empty(t, entries)
	})

	t.Run("the window stays bounded over many turns", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{response: "ack"})

		for i := 0; i < 10; i++ {
			_, err := f.assistant.Respond(ctx, "conv-1", "question")
			require.NoError(t, err)
		}

		window, err := f.memory.Load(ctx, "conv-1")
		require.NoError(t, err)
		assert.Equal(t, 6, window.Len())

		entries, err := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, err)
		assert.Len(t, entries, 20)
	})
}

func TestRespondStream(t *testing.T) {
	ctx := context.Background()

	t.Run("fragments arrive in order and are recorded as one message", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{fragments: []string{"Hello", " world"}})

		var emitted []string
		result, err := f.assistant.RespondStream(ctx, "conv-1", "greet me", func(fragment string) error {
			emitted = append(emitted, fragment)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"Hello", " world"}, emitted)
		assert.Equal(t, "Hello world", result)

		entries, err := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Hello world", entries[1].Content)

		window, err := f.memory.Load(ctx, "conv-1")
		require.NoError(t, err)
		require.Equal(t, 2, window.Len())
		assert.Equal(t, "Hello world", window.Messages()[1].Content)
	})

	t.Run("mid-stream failure still records the partial text", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{
			fragments: []string{"partial"},
			streamErr: errors.New("connection reset"),
		})

		result, err := f.assistant.RespondStream(ctx, "conv-1", "greet me", nil)
		require.ErrorIs(t, err, generator.ErrGenerationFailed)
		assert.Equal(t, "partial", result)

		entries, listErr := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, listErr)
		require.Len(t, entries, 2)
		assert.Equal(t, "partial", entries[1].Content)
	})

	t.Run("emit refusing a fragment stops the stream but keeps the buffer", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{fragments: []string{"one", "two", "three"}})

		refused := errors.New("client gone")
		result, err := f.assistant.RespondStream(ctx, "conv-1", "greet me", func(fragment string) error {
			if fragment == "two" {
				return refused
			}
			return nil
		})
		require.ErrorIs(t, err, generator.ErrGenerationFailed)
		assert.Equal(t, "onetwo", result)

		entries, listErr := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, listErr)
		require.Len(t, entries, 2)
		assert.Equal(t, "onetwo", entries[1].Content)
	})

	t.Run("caller cancellation still records the buffered partial", func(t *testing.T) {
		memory := &ctxAwareManager{inner: convmemorymem.NewManager(convmemory.WithWindowSize(6))}
		transcripts := &ctxAwareLog{inner: transcriptmem.NewLog()}

		a := New(
			prompt.NewAssembler(prompt.NewMemoryAdvisor(memory)),
			&scriptedGenerator{fragments: []string{"Hello", " world"}},
			memory,
			transcripts,
		)

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		result, err := a.RespondStream(streamCtx, "conv-1", "greet me", func(fragment string) error {
			cancel()
			return streamCtx.Err()
		})
		require.ErrorIs(t, err, generator.ErrGenerationFailed)
		assert.Equal(t, "Hello", result)

		window, loadErr := memory.Load(ctx, "conv-1")
		require.NoError(t, loadErr)
		require.Equal(t, 2, window.Len())
		assert.Equal(t, "Hello", window.Messages()[1].Content)

		entries, listErr := transcripts.List(ctx, "conv-1")
		require.NoError(t, listErr)
		require.Len(t, entries, 2)
		assert.Equal(t, "Hello", entries[1].Content)
	})

	t.Run("stream setup failure records nothing", func(t *testing.T) {
		f := newFixture(&scriptedGenerator{generateErr: errors.New("model down")})

		_, err := f.assistant.RespondStream(ctx, "conv-1", "greet me", nil)
		require.ErrorIs(t, err, generator.ErrGenerationFailed)

		entries, listErr := f.transcripts.List(ctx, "conv-1")
		require.NoError(t, listErr)
		assert.Empty(t, entries)
	})
}
