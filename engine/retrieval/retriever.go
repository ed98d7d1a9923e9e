// Package retrieval composes the vector index and the cross-encoder
// reranker into "top-N relevant passages for a query". Embedding distance
// over-recalls cheaply; the reranker then orders the small candidate set
// with full query/passage attention, and its ordering is authoritative.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/PlanwiseAI/planwise-mvp/engine/semantic"
	"github.com/PlanwiseAI/planwise-mvp/pkg/fn"
)

// NoDocumentsIndexed is returned instead of an empty result when the
// corpus was never indexed, so prompt assembly can render a clear
// absence rather than silence.
const NoDocumentsIndexed = "No documents indexed."

// PassageSeparator joins the returned passages.
const PassageSeparator = "\n\n---\n\n"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Reranker scores passages against a query, one score per passage,
// higher is more relevant.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Retriever is built once at startup and read-shared by all requests.
// The index and the parallel raw-text store are immutable after build.
type Retriever struct {
	embed  Embedder
	rerank Reranker
	index  semantic.Index
	texts  []string // id -> raw chunk text, insertion order
	logger *slog.Logger
}

// New creates a Retriever over an already-built index and its parallel
// chunk texts.
func New(embed Embedder, rerank Reranker, index semantic.Index, texts []string, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embed:  embed,
		rerank: rerank,
		index:  index,
		texts:  texts,
		logger: logger,
	}
}

// Retrieve embeds the query, fetches the k nearest chunks, reranks them,
// and returns the top-n passage texts joined by PassageSeparator. An
// empty index yields NoDocumentsIndexed, never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k, topN int) (string, error) {
	if topN > k {
		topN = k
	}
	if len(r.texts) == 0 {
		return NoDocumentsIndexed, nil
	}

	vec, err := r.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("retrieval: embed query: %w", err)
	}

	neighbors, err := r.index.Search(ctx, vec, k)
	if err != nil {
		if errors.Is(err, semantic.ErrEmptyIndex) {
			return NoDocumentsIndexed, nil
		}
		return "", fmt.Errorf("retrieval: search: %w", err)
	}
	if len(neighbors) == 0 {
		return NoDocumentsIndexed, nil
	}

	candidates := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		if n.ID < 0 || n.ID >= len(r.texts) {
			return "", fmt.Errorf("retrieval: neighbor id %d outside corpus of %d chunks", n.ID, len(r.texts))
		}
		candidates = append(candidates, r.texts[n.ID])
	}

	ordered := r.rerankCandidates(ctx, query, candidates)

	if topN < len(ordered) {
		ordered = ordered[:topN]
	}
	return strings.Join(ordered, PassageSeparator), nil
}

// rerankCandidates orders candidates by reranker score descending, ties
// keeping the original retrieval order. A reranker failure is not fatal:
// the embedding-distance order stands.
func (r *Retriever) rerankCandidates(ctx context.Context, query string, candidates []string) []string {
	scores, err := r.rerank.Rerank(ctx, query, candidates)
	if err != nil || len(scores) != len(candidates) {
		r.logger.Warn("retrieval: rerank unavailable, keeping distance order", "err", err)
		return candidates
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{text: c, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	return fn.Map(ranked, func(s scored) string { return s.text })
}
