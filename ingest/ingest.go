package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/lyaesley/ai-embedded/knowledgestore"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Manifest reports what one ingestion did, successful or not.
type Manifest struct {
	Status            string    `json:"status"`
	Message           string    `json:"message,omitempty"`
	DocID             string    `json:"docId,omitempty"`
	FileName          string    `json:"fileName"`
	FileSize          int       `json:"fileSize"`
	OriginalDocuments int       `json:"originalDocuments"`
	Chunks            int       `json:"chunks"`
	UploadTime        time.Time `json:"uploadTime"`
}

type Upload struct {
	Name        string
	Kind        string
	ContentType string
	Content     []byte

	// DocID requests replace-version semantics: existing chunks tagged
	// with the same docId are deleted before the new ones are written.
	DocID    string
	Version  string
	Metadata map[string]any
}

// Pipeline turns raw uploads into metadata-tagged, size-bounded chunks
// in the knowledge store.
type Pipeline struct {
	options Options
}

// Ingest is the plain upload path: any failure is returned as a hard
// error to the caller. Contrast with IngestVersioned.
func (p *Pipeline) Ingest(ctx context.Context, up Upload) (Manifest, error) {
	return p.run(ctx, up)
}

// IngestVersioned is the best-effort path: failures come back as an
// error manifest with a human-readable message, never as an error
// value. The asymmetry with Ingest is deliberate.
func (p *Pipeline) IngestVersioned(ctx context.Context, up Upload) Manifest {
	manifest, err := p.run(ctx, up)
	if err != nil {
		return Manifest{
			Status:     StatusError,
			Message:    err.Error(),
			DocID:      up.DocID,
			FileName:   up.Name,
			FileSize:   len(up.Content),
			UploadTime: time.Now().UTC(),
		}
	}
	return manifest
}

// AddDocument stores a single pre-extracted text without splitting.
func (p *Pipeline) AddDocument(ctx context.Context, text string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}

	return p.options.Store.Upsert(ctx, []knowledgestore.Chunk{
		{Text: text, Metadata: metadata},
	})
}

func (p *Pipeline) run(ctx context.Context, up Upload) (Manifest, error) {
	uploadTime := time.Now().UTC()

	extractor := p.options.Registry.Lookup(up.Kind)

	docs, err := extractor.Extract(ctx, up.Name, up.Content)
	if err != nil {
		return Manifest{}, err
	}

	base := map[string]any{
		"filename":    up.Name,
		"fileSize":    len(up.Content),
		"contentType": up.ContentType,
		"uploadTime":  uploadTime.Format(time.RFC3339),
	}
	maps.Copy(base, up.Metadata)

	if len(up.DocID) > 0 {
		version := up.Version
		if len(version) == 0 {
			version = uploadTime.Format(time.RFC3339)
		}
		base["docId"] = up.DocID
		base["version"] = version
		base["lastUpdated"] = uploadTime.Format(time.RFC3339)

		// replace-version: old chunks go first. The delete and the
		// insert are not atomic; a crash in between leaves the docId
		// absent until the re-ingest is retried. Deletion failure does
		// not stop the new version from being written.
		if err := p.options.Store.DeleteByMetadata(ctx, "docId", up.DocID); err != nil {
			slog.ErrorContext(ctx, "failed to delete previous version", "docId", up.DocID, "error", err)
		}
	}

	var chunks []knowledgestore.Chunk
	for _, doc := range docs {
		splits, err := p.options.Splitter.SplitText(doc.Text)
		if err != nil {
			return Manifest{}, fmt.Errorf("split document: %w", err)
		}

		for _, split := range splits {
			metadata := map[string]any{}
			maps.Copy(metadata, doc.Metadata)
			maps.Copy(metadata, base)

			chunks = append(chunks, knowledgestore.Chunk{
				Text:     split,
				Metadata: metadata,
			})
		}
	}

	if err := p.options.Store.Upsert(ctx, chunks); err != nil {
		return Manifest{}, err
	}

	slog.InfoContext(
		ctx,
		"ingested upload",
		"file", up.Name,
		"docId", up.DocID,
		"documents", len(docs),
		"chunks", len(chunks),
	)

	return Manifest{
		Status:            StatusSuccess,
		DocID:             up.DocID,
		FileName:          up.Name,
		FileSize:          len(up.Content),
		OriginalDocuments: len(docs),
		Chunks:            len(chunks),
		UploadTime:        uploadTime,
	}, nil
}

func NewPipeline(opts ...Option) *Pipeline {
	options := NewOptions(opts...)

	if options.Store == nil {
		panic("knowledge store is required")
	}

	return &Pipeline{options: options}
}
