package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tmc/langchaingo/documentloaders"
)

type pdfExtractor struct{}

func (e *pdfExtractor) Extract(ctx context.Context, name string, content []byte) ([]Document, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(content), int64(len(content)))

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	// one logical document per page, page number carried in metadata
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Document{
			Text:     doc.PageContent,
			Metadata: doc.Metadata,
		})
	}

	return out, nil
}

func NewPDFExtractor() Extractor {
	return &pdfExtractor{}
}
