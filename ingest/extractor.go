package ingest

import (
	"context"
	"errors"
	"strings"
)

// ErrExtractionFailed marks a format-parsing failure. It is surfaced
// per file and does not abort unrelated ingestions.
var ErrExtractionFailed = errors.New("extraction failed")

// Document is one normalized logical document produced by an extractor,
// before splitting.
type Document struct {
	Text     string
	Metadata map[string]any
}

type Extractor interface {
	Extract(ctx context.Context, name string, content []byte) ([]Document, error)
}

// Registry dispatches uploads to a format-specific extractor by
// normalized content kind, with one designated fallback for everything
// it does not recognize.
type Registry struct {
	extractors map[string]Extractor
	fallback   Extractor
}

func (r *Registry) Register(kind string, extractor Extractor) {
	r.extractors[normalizeKind(kind)] = extractor
}

func (r *Registry) Lookup(kind string) Extractor {
	if extractor, ok := r.extractors[normalizeKind(kind)]; ok {
		return extractor
	}
	return r.fallback
}

// normalizeKind folds file extensions and MIME types onto the dispatch
// keys: text, markdown, pdf, office.
func normalizeKind(kind string) string {
	k := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(kind), "."))

	switch k {
	case "text", "txt", "text/plain":
		return "text"
	case "markdown", "md", "text/markdown":
		return "markdown"
	case "pdf", "application/pdf":
		return "pdf"
	case "doc", "docx", "ppt", "pptx", "xls", "xlsx", "rtf", "odt", "ods", "odp",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "office"
	}

	return k
}

func NewRegistry() *Registry {
	generic := NewGenericExtractor()

	r := &Registry{
		extractors: map[string]Extractor{},
		fallback:   generic,
	}

	r.Register("text", NewTextExtractor())
	r.Register("markdown", NewMarkdownExtractor())
	r.Register("pdf", NewPDFExtractor())
	// office formats have no dedicated parser here; the generic
	// extractor stands in for them
	r.Register("office", generic)

	return r
}
