// Command ingest chunks and embeds the retirement facts corpus into a
// Qdrant collection, so the API server can attach to it instead of
// embedding at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/corpus"
	"github.com/PlanwiseAI/planwise-mvp/engine/ingest"
	"github.com/PlanwiseAI/planwise-mvp/engine/semantic"
	"github.com/PlanwiseAI/planwise-mvp/pkg/ollama"
)

func main() {
	corpusPath := flag.String("corpus", "data/retirement_facts.txt", "path to the facts corpus")
	qdrantURL := flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
	collection := flag.String("collection", "planwise", "Qdrant collection name")
	ollamaURL := flag.String("ollama", "http://localhost:11434", "Ollama base URL")
	embedModel := flag.String("embed-model", "nomic-embed-text", "embedding model name")
	embedRPS := flag.Float64("embed-rps", 10, "embedding requests per second")
	chunkSize := flag.Int("chunk-size", ingest.DefaultChunkSize, "chunk size in characters")
	overlap := flag.Int("overlap", ingest.DefaultOverlap, "chunk overlap in characters")
	workers := flag.Int("workers", ingest.DefaultWorkers, "concurrent embedding workers")
	recreate := flag.Bool("recreate", false, "drop and recreate the collection first")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(runOpts{
		corpusPath: *corpusPath,
		qdrantURL:  *qdrantURL,
		collection: *collection,
		ollamaURL:  *ollamaURL,
		embedModel: *embedModel,
		embedRPS:   *embedRPS,
		chunkSize:  *chunkSize,
		overlap:    *overlap,
		workers:    *workers,
		recreate:   *recreate,
		timeout:    *timeout,
	}, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

type runOpts struct {
	corpusPath string
	qdrantURL  string
	collection string
	ollamaURL  string
	embedModel string
	embedRPS   float64
	chunkSize  int
	overlap    int
	workers    int
	recreate   bool
	timeout    time.Duration
}

func run(opts runOpts, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	embedder := ollama.NewEmbedClient(opts.ollamaURL, opts.embedModel, opts.embedRPS)

	index, err := semantic.NewQdrantIndex(opts.qdrantURL, opts.collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer index.Close()

	if opts.recreate {
		if err := index.DropCollection(ctx); err != nil {
			logger.Warn("drop collection", "err", err)
		}
	}

	// Probe the embedder once to learn the vector dimension before
	// creating the collection.
	probe, err := embedder.Embed(ctx, "dimension probe")
	if err != nil {
		return fmt.Errorf("probe embedding: %w", err)
	}
	if err := index.EnsureCollection(ctx, len(probe)); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	built, err := ingest.Build(ctx, ingest.Deps{
		Embedder: embedder,
		Index:    index,
		Splitter: corpus.NewSplitter(opts.chunkSize, opts.overlap),
		Workers:  opts.workers,
		Logger:   logger,
	}, opts.corpusPath)
	if err != nil {
		return err
	}

	logger.Info("corpus ingested",
		"collection", opts.collection,
		"chunks", len(built.Texts),
		"dimension", len(probe),
	)
	return nil
}
