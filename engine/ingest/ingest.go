// Package ingest builds the corpus index at startup: load the facts
// document, chunk it, embed the chunks, and insert them into the
// vector index. The result is immutable for the life of the process.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PlanwiseAI/planwise-mvp/engine/corpus"
	"github.com/PlanwiseAI/planwise-mvp/engine/retrieval"
	"github.com/PlanwiseAI/planwise-mvp/engine/semantic"
	"github.com/PlanwiseAI/planwise-mvp/pkg/fn"
	"github.com/PlanwiseAI/planwise-mvp/pkg/metrics"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500
	// DefaultOverlap is the cross-chunk overlap in characters.
	DefaultOverlap = 50
	// DefaultWorkers bounds concurrent embedding calls.
	DefaultWorkers = 4
)

// Deps holds the external dependencies of the indexing pipeline.
type Deps struct {
	Embedder retrieval.Embedder
	Index    semantic.Index
	Splitter *corpus.Splitter
	Workers  int
	Logger   *slog.Logger
	Metrics  *metrics.Registry
}

// ChunkedDoc is a document split into ordered chunks.
type ChunkedDoc struct {
	Text   string
	Chunks []string
}

// EmbeddedDoc pairs chunks with their embeddings, index-aligned.
type EmbeddedDoc struct {
	Chunks     []string
	Embeddings [][]float32
}

// BuiltIndex is the pipeline output: the raw chunk texts in insertion
// order, parallel to the ids inside the vector index.
type BuiltIndex struct {
	Texts []string
}

// LoadDoc reads the corpus document from disk.
var LoadDoc fn.Stage[string, string] = func(_ context.Context, path string) fn.Result[string] {
	return fn.FromPair(corpus.LoadDocument(path))
}

// NewChunk creates the chunking stage. A document shorter than the
// chunk size comes back as a single chunk.
func NewChunk(splitter *corpus.Splitter) fn.Stage[string, ChunkedDoc] {
	return func(_ context.Context, text string) fn.Result[ChunkedDoc] {
		chunks := splitter.Split(text)
		if len(chunks) == 0 && text != "" {
			chunks = []string{text}
		}
		return fn.Ok(ChunkedDoc{Text: text, Chunks: chunks})
	}
}

// NewEmbed creates the embedding stage. Chunks are embedded in
// parallel, each call retried with backoff; one chunk failing after
// retries fails the build.
func NewEmbed(embedder retrieval.Embedder, workers int) fn.Stage[ChunkedDoc, EmbeddedDoc] {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return func(ctx context.Context, doc ChunkedDoc) fn.Result[EmbeddedDoc] {
		results := fn.ParMapResult(doc.Chunks, workers, func(chunk string) fn.Result[[]float32] {
			return fn.Retry(ctx, fn.DefaultRetry, func(ctx context.Context) fn.Result[[]float32] {
				return fn.FromPair(embedder.Embed(ctx, chunk))
			})
		})
		vectors, err := fn.Collect(results).Unwrap()
		if err != nil {
			return fn.Err[EmbeddedDoc](fmt.Errorf("ingest: embed chunks: %w", err))
		}
		return fn.Ok(EmbeddedDoc{Chunks: doc.Chunks, Embeddings: vectors})
	}
}

// NewInsert creates the index insertion stage.
func NewInsert(index semantic.Index) fn.Stage[EmbeddedDoc, BuiltIndex] {
	return func(ctx context.Context, doc EmbeddedDoc) fn.Result[BuiltIndex] {
		if len(doc.Embeddings) > 0 {
			if err := index.Insert(ctx, doc.Embeddings); err != nil {
				return fn.Err[BuiltIndex](fmt.Errorf("ingest: index insert: %w", err))
			}
		}
		return fn.Ok(BuiltIndex{Texts: doc.Chunks})
	}
}

// Build runs the full pipeline for one document path.
func Build(ctx context.Context, deps Deps, docPath string) (BuiltIndex, error) {
	if deps.Splitter == nil {
		deps.Splitter = corpus.NewSplitter(DefaultChunkSize, DefaultOverlap)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	pipeline := fn.Then(
		fn.Then(
			fn.TracedStage("ingest.load", LoadDoc),
			fn.TracedStage("ingest.chunk", NewChunk(deps.Splitter)),
		),
		fn.Then(
			fn.TracedStage("ingest.embed", NewEmbed(deps.Embedder, deps.Workers)),
			fn.TracedStage("ingest.insert", NewInsert(deps.Index)),
		),
	)

	built, err := pipeline(ctx, docPath).Unwrap()
	if err != nil {
		return BuiltIndex{}, err
	}

	deps.Metrics.Gauge("corpus_indexed_chunks", "chunks in the vector index").Set(int64(len(built.Texts)))
	deps.Logger.Info("ingest: corpus indexed", "path", docPath, "chunks", len(built.Texts))
	return built, nil
}
