package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/lyaesley/ai-embedded/convmemory"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/knowledgestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	results []knowledgestore.Result
	err     error
}

func (s *fakeStore) Query(ctx context.Context, text string, opts ...knowledgestore.QueryOption) ([]knowledgestore.Result, error) {
	return s.results, s.err
}

func (s *fakeStore) QueryByMetadata(ctx context.Context, text string, key string, value any, opts ...knowledgestore.QueryOption) ([]knowledgestore.Result, error) {
	return s.results, s.err
}

func (s *fakeStore) Upsert(ctx context.Context, chunks []knowledgestore.Chunk) error {
	return nil
}

func (s *fakeStore) DeleteByMetadata(ctx context.Context, key string, value any) error {
	return nil
}

type fakeManager struct {
	messages []convmemory.Message
	err      error
}

func (m *fakeManager) Load(ctx context.Context, conversationID string) (*convmemory.Window, error) {
	if m.err != nil {
		return nil, m.err
	}
	window := convmemory.NewWindow(len(m.messages) + 1)
	for _, msg := range m.messages {
		window.Append(msg)
	}
	return window, nil
}

func (m *fakeManager) Persist(ctx context.Context, conversationID string, window *convmemory.Window) error {
	return nil
}

func TestRetrievalAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("appends citation labels when retrieval hits", func(t *testing.T) {
		store := &fakeStore{results: []knowledgestore.Result{
			{Text: "first passage", Metadata: map[string]any{"title": "Handbook", "section": "Leave"}},
			{Text: "second passage", Metadata: map[string]any{"docId": "doc-9", "version": "v2"}},
			{Text: "third passage", Metadata: map[string]any{"filename": "notes.txt"}},
			{Text: "fourth passage", Metadata: map[string]any{}},
		}}

		advisor := NewRetrievalAdvisor(store, QuestionAnswer, 6, 0.3)
		req := &Request{ConversationID: "conv-1", UserText: "what is the leave policy?"}
		require.NoError(t, advisor.Advise(ctx, req))

		assert.Equal(t, []string{
			"Source 1: Handbook (Leave)",
			"Source 2: doc-9 (v2)",
			"Source 3: notes.txt",
			"Source 4: untitled",
		}, req.Citations)

		assert.Equal(t,
			"what is the leave policy?\n\n[Sources: Source 1: Handbook (Leave), Source 2: doc-9 (v2), Source 3: notes.txt, Source 4: untitled]",
			req.Augmented,
		)

		assert.Contains(t, req.System, "first passage")
		assert.Contains(t, req.System, "fourth passage")
		assert.Len(t, req.Retrieved, 4)
	})

	t.Run("leaves the user text untouched when retrieval is empty", func(t *testing.T) {
		advisor := NewRetrievalAdvisor(&fakeStore{}, QuestionAnswer, 6, 0.3)
		req := &Request{ConversationID: "conv-1", UserText: "hello"}
		require.NoError(t, advisor.Advise(ctx, req))

		assert.Empty(t, req.Augmented)
		assert.Empty(t, req.Citations)
		assert.NotEmpty(t, req.System)

		msgs := req.Messages()
		assert.Equal(t, "hello", msgs[len(msgs)-1].Content)
	})

	t.Run("propagates store failure", func(t *testing.T) {
		store := &fakeStore{err: knowledgestore.ErrUnavailable}
		advisor := NewRetrievalAdvisor(store, QuestionAnswer, 6, 0.3)

		err := advisor.Advise(ctx, &Request{UserText: "hello"})
		assert.ErrorIs(t, err, knowledgestore.ErrUnavailable)
	})
}

func TestMemoryAdvisor(t *testing.T) {
	ctx := context.Background()

	t.Run("hydrates history from the window", func(t *testing.T) {
		manager := &fakeManager{messages: []convmemory.Message{
			{Role: convmemory.RoleUser, Content: "earlier question"},
			{Role: convmemory.RoleAssistant, Content: "earlier answer"},
		}}

		advisor := NewMemoryAdvisor(manager)
		req := &Request{ConversationID: "conv-1", UserText: "follow-up"}
		require.NoError(t, advisor.Advise(ctx, req))

		require.Len(t, req.History, 2)
		assert.Equal(t, generator.RoleUser, req.History[0].Role)
		assert.Equal(t, "earlier question", req.History[0].Content)
		assert.NotNil(t, req.Window)
	})
}

func TestAssembler(t *testing.T) {
	ctx := context.Background()

	t.Run("runs advisors in order and renders the final message list", func(t *testing.T) {
		store := &fakeStore{results: []knowledgestore.Result{
			{Text: "passage", Metadata: map[string]any{"title": "Handbook"}},
		}}
		manager := &fakeManager{messages: []convmemory.Message{
			{Role: convmemory.RoleUser, Content: "earlier"},
		}}

		assembler := NewAssembler(
			NewRetrievalAdvisor(store, QuestionAnswer, 6, 0.3),
			NewMemoryAdvisor(manager),
			NewLoggingAdvisor(),
		)

		req, err := assembler.Assemble(ctx, "conv-1", "follow-up")
		require.NoError(t, err)

		msgs := req.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, generator.RoleSystem, msgs[0].Role)
		assert.Equal(t, generator.RoleUser, msgs[1].Role)
		assert.Equal(t, "earlier", msgs[1].Content)
		assert.Equal(t, "follow-up\n\n[Sources: Source 1: Handbook]", msgs[2].Content)
	})

	t.Run("wraps advisor failures with the advisor name", func(t *testing.T) {
		assembler := NewAssembler(NewMemoryAdvisor(&fakeManager{err: errors.New("down")}))

		_, err := assembler.Assemble(ctx, "conv-1", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "advisor memory")
	})
}
