package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	assistant "github.com/lyaesley/ai-embedded"
	"github.com/lyaesley/ai-embedded/embedder"
	"github.com/lyaesley/ai-embedded/generator"
	"github.com/lyaesley/ai-embedded/ingest"
	"github.com/lyaesley/ai-embedded/knowledgestore"
	"github.com/lyaesley/ai-embedded/server"
	"github.com/lyaesley/ai-embedded/transcript"
)

type httpServer struct {
	options             server.Options
	assistant           *assistant.Assistant
	generator           generator.Generator
	transcripts         transcript.Log
	pipeline            *ingest.Pipeline
	store               knowledgestore.Store
	embedder            embedder.Embedder
	defaultConversation string
	srv                 *http.Server
}

func (s *httpServer) Run() error {
	return s.srv.ListenAndServe()
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodPost)
	router.HandleFunc("/chat/image", s.handleGenerateImage).Methods(http.MethodPost)
	router.HandleFunc("/chat/history/{userId}", s.handleChatHistory).Methods(http.MethodGet)

	api := router.PathPrefix("/api/vector-store").Subrouter()
	api.HandleFunc("/documents", s.handleAddDocument).Methods(http.MethodPost)
	api.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/search", s.handleSimpleSearch).Methods(http.MethodGet)
	api.HandleFunc("/metadata-search", s.handleMetadataSearch).Methods(http.MethodPost)
	api.HandleFunc("/test-embedding", s.handleTestEmbedding).Methods(http.MethodPost)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	var handler http.Handler = router
	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return handler
}

func NewServer(
	a *assistant.Assistant,
	gen generator.Generator,
	transcripts transcript.Log,
	pipeline *ingest.Pipeline,
	store knowledgestore.Store,
	emb embedder.Embedder,
	opts ...server.Option,
) server.Server {
	options := server.NewOptions(opts...)

	s := &httpServer{
		options:     options,
		assistant:   a,
		generator:   gen,
		transcripts: transcripts,
		pipeline:    pipeline,
		store:       store,
		embedder:    emb,
	}

	if id, ok := DefaultConversationFrom(options.Context); ok {
		s.defaultConversation = id
	}

	s.srv = &http.Server{
		Addr:    options.Address,
		Handler: s.routes(),
	}

	return s
}
