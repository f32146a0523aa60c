package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	assistant "github.com/lyaesley/ai-embedded"
	"github.com/lyaesley/ai-embedded/convmemory"
	convmemorymem "github.com/lyaesley/ai-embedded/convmemory/memory"
	convmemorypg "github.com/lyaesley/ai-embedded/convmemory/postgres"
	"github.com/lyaesley/ai-embedded/embedder"
	openaiembedder "github.com/lyaesley/ai-embedded/embedder/openai"
	"github.com/lyaesley/ai-embedded/generator"
	anthropicgenerator "github.com/lyaesley/ai-embedded/generator/anthropic"
	googlegenerator "github.com/lyaesley/ai-embedded/generator/google"
	openaigenerator "github.com/lyaesley/ai-embedded/generator/openai"
	"github.com/lyaesley/ai-embedded/ingest"
	"github.com/lyaesley/ai-embedded/knowledgestore"
	knowledgemem "github.com/lyaesley/ai-embedded/knowledgestore/memory"
	knowledgepg "github.com/lyaesley/ai-embedded/knowledgestore/postgres"
	"github.com/lyaesley/ai-embedded/prompt"
	"github.com/lyaesley/ai-embedded/server"
	httpserver "github.com/lyaesley/ai-embedded/server/http"
	"github.com/lyaesley/ai-embedded/transcript"
	transcriptmem "github.com/lyaesley/ai-embedded/transcript/memory"
	transcriptpg "github.com/lyaesley/ai-embedded/transcript/postgres"
)

var (
	cfg struct {
		// Server config
		Address string `help:"Address to listen on" default:":8080"`

		// Store config
		StoreLocation string `help:"Postgres location for all durable stores; empty runs fully in memory" env:"STORE_LOCATION" default:""`

		// Embedder config
		EmbedderKey string `help:"API key for the embedder" env:"OPENAI_API_KEY" default:""`
		Embedder    string `help:"Model identifier for the embedder" default:"text-embedding-3-small"`

		// Generator config
		Provider     string  `help:"Generator provider: openai, anthropic, or google" default:"openai"`
		GeneratorKey string  `help:"API key for the generator" env:"GENERATOR_API_KEY" default:""`
		Model        string  `help:"Model identifier for the generator" default:"gpt-4o-mini"`
		Temperature  float64 `help:"Sampling temperature" default:"0.7"`

		// Retrieval config
		TopK      int     `help:"Number of passages to retrieve per turn" default:"6"`
		Threshold float64 `help:"Minimum similarity score for retrieved passages" default:"0.3"`

		// Conversation config
		Window              int    `help:"Conversation window size in messages" default:"6"`
		DefaultConversation string `help:"Conversation id applied when a request carries none" default:"disp_1"`

		// Logging config
		LogLevel string `help:"Log level: debug, info, warn, or error" default:"info"`
	}
)

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	// Create embedder
	emb := openaiembedder.NewEmbedder(
		embedder.WithApiKey(cfg.EmbedderKey),
		embedder.WithModel(cfg.Embedder),
	)

	// Create stores
	var store knowledgestore.Store
	var memory convmemory.Manager
	var transcripts transcript.Log

	if len(cfg.StoreLocation) > 0 {
		store = knowledgepg.NewStore(
			knowledgestore.WithLocation(cfg.StoreLocation),
			knowledgestore.WithEmbedder(emb),
		)
		memory = convmemorypg.NewManager(
			convmemory.WithLocation(cfg.StoreLocation),
			convmemory.WithWindowSize(cfg.Window),
		)
		transcripts = transcriptpg.NewLog(
			transcript.WithLocation(cfg.StoreLocation),
		)
	} else {
		store = knowledgemem.NewStore(
			knowledgestore.WithEmbedder(emb),
		)
		memory = convmemorymem.NewManager(
			convmemory.WithWindowSize(cfg.Window),
		)
		transcripts = transcriptmem.NewLog()
	}

	// Create generator
	var gen generator.Generator

	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		gen = anthropicgenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Model),
			generator.WithTemperature(cfg.Temperature),
		)
	case "google":
		gen = googlegenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Model),
			generator.WithTemperature(cfg.Temperature),
		)
	default:
		gen = openaigenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.Model),
			generator.WithTemperature(cfg.Temperature),
		)
	}

	// Create ingestion pipeline
	pipeline := ingest.NewPipeline(
		ingest.WithStore(store),
	)

	// Create prompt assembler: retrieval, then memory, then logging
	assembler := prompt.NewAssembler(
		prompt.NewRetrievalAdvisor(store, prompt.QuestionAnswer, cfg.TopK, cfg.Threshold),
		prompt.NewMemoryAdvisor(memory),
		prompt.NewLoggingAdvisor(),
	)

	// Create assistant
	a := assistant.New(
		assembler,
		gen,
		memory,
		transcripts,
		assistant.NewLoggingObserver(),
	)

	// Serve
	srv := httpserver.NewServer(
		a,
		gen,
		transcripts,
		pipeline,
		store,
		emb,
		server.WithAddress(cfg.Address),
		httpserver.WithDefaultConversation(cfg.DefaultConversation),
	)

	slog.Info("listening", "address", cfg.Address)

	if err := srv.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
