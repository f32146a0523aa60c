package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lyaesley/ai-embedded/knowledgestore"
)

type record struct {
	chunk     knowledgestore.Chunk
	createdAt time.Time
}

type memoryStore struct {
	options knowledgestore.Options
	records map[string]record
	mtx     sync.RWMutex
}

func (s *memoryStore) Query(ctx context.Context, text string, opts ...knowledgestore.QueryOption) ([]knowledgestore.Result, error) {
	options := knowledgestore.NewQueryOptions(opts...)
	if options.TopK < 1 {
		return nil, nil
	}

	vec, err := s.options.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.rank(vec, nil, options), nil
}

func (s *memoryStore) QueryByMetadata(ctx context.Context, text string, key string, value any, opts ...knowledgestore.QueryOption) ([]knowledgestore.Result, error) {
	options := knowledgestore.NewQueryOptions(opts...)
	if options.TopK < 1 {
		return nil, nil
	}

	match := func(rec record) bool {
		got, ok := rec.chunk.Metadata[key]
		return ok && fmt.Sprint(got) == fmt.Sprint(value)
	}

	if len(text) == 0 {
		s.mtx.RLock()
		defer s.mtx.RUnlock()

		// plain filter scan; threshold does not apply without a query
		candidates := s.collect(match)
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].createdAt.Before(candidates[j].createdAt)
		})

		results := make([]knowledgestore.Result, 0, len(candidates))
		for _, rec := range candidates {
			if len(results) >= options.TopK {
				break
			}
			results = append(results, knowledgestore.Result{
				Text:     rec.chunk.Text,
				Metadata: rec.chunk.Metadata,
			})
		}

		return results, nil
	}

	vec, err := s.options.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	// metadata filter ignores the similarity threshold; topK still bounds
	options.Threshold = -1

	return s.rank(vec, match, options), nil
}

func (s *memoryStore) Upsert(ctx context.Context, chunks []knowledgestore.Chunk) error {
	now := time.Now().UTC()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			vec, err := s.options.Embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return err
			}
			chunk.Embedding = vec
		}

		if len(chunk.ID) == 0 {
			chunk.ID = uuid.New().String()
		}

		s.mtx.Lock()
		s.records[chunk.ID] = record{chunk: chunk, createdAt: now}
		s.mtx.Unlock()
	}

	return nil
}

func (s *memoryStore) DeleteByMetadata(ctx context.Context, key string, value any) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(key) == 0 {
		if !s.options.ClearOnEmptyPredicate {
			return nil
		}
		s.records = map[string]record{}
		return nil
	}

	for id, rec := range s.records {
		got, ok := rec.chunk.Metadata[key]
		if ok && fmt.Sprint(got) == fmt.Sprint(value) {
			delete(s.records, id)
		}
	}

	return nil
}

func (s *memoryStore) collect(match func(record) bool) []record {
	candidates := make([]record, 0, len(s.records))
	for _, rec := range s.records {
		if match != nil && !match(rec) {
			continue
		}
		candidates = append(candidates, rec)
	}
	return candidates
}

func (s *memoryStore) rank(vec []float32, match func(record) bool, options knowledgestore.QueryOptions) []knowledgestore.Result {
	candidates := s.collect(match)

	results := make([]knowledgestore.Result, 0, len(candidates))
	for _, rec := range candidates {
		score := knowledgestore.CosineSimilarity(vec, rec.chunk.Embedding)
		if score < options.Threshold {
			continue
		}
		results = append(results, knowledgestore.Result{
			Text:     rec.chunk.Text,
			Metadata: rec.chunk.Metadata,
			Score:    score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > options.TopK {
		results = results[:options.TopK]
	}

	return results
}

func NewStore(opts ...knowledgestore.Option) knowledgestore.Store {
	options := knowledgestore.NewOptions(opts...)

	return &memoryStore{
		options: options,
		records: map[string]record{},
		mtx:     sync.RWMutex{},
	}
}
