package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tmc/langchaingo/documentloaders"
)

type textExtractor struct{}

func (e *textExtractor) Extract(ctx context.Context, name string, content []byte) ([]Document, error) {
	docs, err := documentloaders.NewText(bytes.NewReader(content)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Document{
			Text:     doc.PageContent,
			Metadata: doc.Metadata,
		})
	}

	return out, nil
}

func NewTextExtractor() Extractor {
	return &textExtractor{}
}
