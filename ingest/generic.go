package ingest

import (
	"context"
	"strings"
	"unicode/utf8"
)

type genericExtractor struct{}

// Extract is the fallback for kinds with no dedicated parser: the bytes
// are treated as UTF-8 text, with invalid sequences replaced.
func (e *genericExtractor) Extract(ctx context.Context, name string, content []byte) ([]Document, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrExtractionFailed
	}

	return []Document{
		{Text: text, Metadata: map[string]any{}},
	}, nil
}

func NewGenericExtractor() Extractor {
	return &genericExtractor{}
}
