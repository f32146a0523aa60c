package knowledgestore

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable marks a backend outage. Callers surface it without
// retrying; it is the retriable member of the error taxonomy.
var ErrUnavailable = errors.New("knowledge store unavailable")

// Chunk is the unit written to the store. Metadata carries the identity
// needed for later replacement (docId, version) plus whatever the
// ingestion pipeline attaches.
type Chunk struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding,omitempty"`
}

type Result struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

type Store interface {
	// Query runs a similarity search, sorted by descending score,
	// truncated to topK, filtered to score >= threshold.
	Query(ctx context.Context, text string, opts ...QueryOption) ([]Result, error)

	// QueryByMetadata combines an exact-match metadata filter with
	// similarity ranking. An empty query text degrades to a plain
	// filter scan.
	QueryByMetadata(ctx context.Context, text string, key string, value any, opts ...QueryOption) ([]Result, error)

	// Upsert inserts chunks. Content is not deduplicated; chunks with a
	// nil embedding are embedded by the store.
	Upsert(ctx context.Context, chunks []Chunk) error

	// DeleteByMetadata removes every chunk whose metadata field equals
	// the value. An empty key is a no-op unless the store was built
	// with WithClearOnEmptyPredicate.
	DeleteByMetadata(ctx context.Context, key string, value any) error
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
