package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/ingest"
	"github.com/lyaesley/ai-embedded/knowledgestore"
	"github.com/lyaesley/ai-embedded/prompt"
)

type chatRequest struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversationId"`
}

func (s *httpServer) conversationID(req chatRequest) string {
	if len(req.ConversationID) > 0 {
		return req.ConversationID
	}
	return s.defaultConversation
}

func (s *httpServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.assistant.Respond(r.Context(), s.conversationID(req), req.Text)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"response": result})
}

func (s *httpServer) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := func(fragment string) error {
		if err := r.Context().Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", fragment); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if _, err := s.assistant.RespondStream(r.Context(), s.conversationID(req), req.Text, emit); err != nil {
		// headers are gone; the error can only be logged and signaled in-band
		slog.ErrorContext(r.Context(), "stream ended abnormally", "error", err)
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
		flusher.Flush()
		return
	}

	fmt.Fprint(w, "event: done\ndata: \n\n")
	flusher.Flush()
}

func (s *httpServer) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	imageGen, ok := s.generator.(generator.ImageGenerator)
	if !ok {
		writeError(w, http.StatusNotImplemented, errors.New("the configured provider does not generate images"))
		return
	}

	req := struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
		Height int    `json:"height"`
		Width  int    `json:"width"`
	}{Count: 1, Height: 1024, Width: 1024}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Prompt) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("prompt field is required"))
		return
	}

	urls, err := imageGen.GenerateImages(r.Context(), req.Prompt, req.Count, req.Height, req.Width)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

func (s *httpServer) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	entries, err := s.transcripts.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *httpServer) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content  string         `json:"content"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.pipeline.AddDocument(r.Context(), req.Content, req.Metadata); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (s *httpServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	up := ingest.Upload{
		Name:        header.Filename,
		Kind:        kindOf(header),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
		DocID:       r.FormValue("docId"),
		Version:     r.FormValue("version"),
	}

	if info := r.FormValue("additionalInfo"); len(info) > 0 {
		up.Metadata = map[string]any{"additionalInfo": info}
	}

	// versioned uploads report failures inside the manifest; plain
	// uploads surface them as errors
	if len(up.DocID) > 0 {
		writeJSON(w, http.StatusOK, s.pipeline.IngestVersioned(r.Context(), up))
		return
	}

	manifest, err := s.pipeline.Ingest(r.Context(), up)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, manifest)
}

type searchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"topK"`
	Threshold float64 `json:"threshold"`
}

func (s *httpServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{TopK: knowledgestore.DefaultTopK, Threshold: knowledgestore.DefaultThreshold}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.search(w, r, req)
}

func (s *httpServer) handleSimpleSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{
		Query:     r.URL.Query().Get("query"),
		TopK:      knowledgestore.DefaultTopK,
		Threshold: knowledgestore.DefaultThreshold,
	}

	if v := r.URL.Query().Get("topK"); len(v) > 0 {
		if topK, err := strconv.Atoi(v); err == nil {
			req.TopK = topK
		}
	}

	if v := r.URL.Query().Get("threshold"); len(v) > 0 {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			req.Threshold = threshold
		}
	}

	s.search(w, r, req)
}

func (s *httpServer) search(w http.ResponseWriter, r *http.Request, req searchRequest) {
	results, err := s.store.Query(
		r.Context(),
		req.Query,
		knowledgestore.WithTopK(req.TopK),
		knowledgestore.WithThreshold(req.Threshold),
	)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

func (s *httpServer) handleMetadataSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Key   string `json:"key"`
		Value any    `json:"value"`
		TopK  int    `json:"topK"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.TopK < 1 {
		req.TopK = knowledgestore.DefaultTopK
	}

	results, err := s.store.QueryByMetadata(
		r.Context(),
		req.Query,
		req.Key,
		req.Value,
		knowledgestore.WithTopK(req.TopK),
	)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":     req.Key,
		"value":   req.Value,
		"results": results,
	})
}

func (s *httpServer) handleTestEmbedding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string   `json:"text"`
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (len(req.Text) == 0 && len(req.Texts) == 0) {
		writeError(w, http.StatusBadRequest, errors.New("text or texts field is required"))
		return
	}

	if len(req.Texts) > 0 {
		vecs, err := s.embedder.EmbedBatch(r.Context(), req.Texts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		results := make([]map[string]any, 0, len(vecs))
		for i, vec := range vecs {
			results = append(results, map[string]any{
				"text":              req.Texts[i],
				"dimensions":        len(vec),
				"embedding_preview": embeddingPreview(vec),
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(results),
			"results": results,
		})
		return
	}

	vec, err := s.embedder.Embed(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"text":              req.Text,
		"dimensions":        len(vec),
		"embedding_preview": embeddingPreview(vec),
	})
}

func embeddingPreview(vec []float32) []float32 {
	if len(vec) > 10 {
		return vec[:10]
	}
	return vec
}

func (s *httpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"service": "ai-embedded",
	})
}

// kindOf prefers the declared content type, then the file extension.
func kindOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); len(ct) > 0 && ct != "application/octet-stream" {
		return ct
	}
	return path.Ext(header.Filename)
}

func statusFor(err error) int {
	var missing *prompt.MissingParameterError

	switch {
	case errors.Is(err, knowledgestore.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingest.ErrExtractionFailed):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
