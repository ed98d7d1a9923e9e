package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PlanwiseAI/planwise-mvp/engine/corpus"
	"github.com/PlanwiseAI/planwise-mvp/engine/semantic"
)

// hashEmbedder derives a deterministic vector from the text, so
// rebuild tests get identical embeddings without a model.
type hashEmbedder struct {
	calls int
	fails int // fail the first N calls
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.calls <= e.fails {
		return nil, errors.New("embedder warming up")
	}
	var sum float32
	for _, r := range text {
		sum += float32(r)
	}
	return []float32{sum, float32(len(text))}, nil
}

func writeCorpus(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facts.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func corpusText() string {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("Retirement savings benefit greatly from compound growth over decades. ")
		b.WriteString("Contributing early and consistently beats contributing more but later.\n\n")
	}
	return b.String()
}

func TestBuildIndexesAllChunks(t *testing.T) {
	path := writeCorpus(t, corpusText())
	index := semantic.NewMemoryIndex(0)

	built, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{},
		Index:    index,
	}, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(built.Texts) == 0 {
		t.Fatal("no chunks indexed")
	}
	n, err := index.Len(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != len(built.Texts) {
		t.Fatalf("index has %d vectors, texts has %d chunks", n, len(built.Texts))
	}
}

func TestBuildIdempotentRebuild(t *testing.T) {
	path := writeCorpus(t, corpusText())

	first, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{},
		Index:    semantic.NewMemoryIndex(0),
	}, path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{},
		Index:    semantic.NewMemoryIndex(0),
	}, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Texts) != len(second.Texts) {
		t.Fatalf("rebuild chunk count %d != %d", len(second.Texts), len(first.Texts))
	}
	for i := range first.Texts {
		if first.Texts[i] != second.Texts[i] {
			t.Fatalf("chunk %d differs between builds", i)
		}
	}
}

func TestBuildShortDocumentSingleChunk(t *testing.T) {
	path := writeCorpus(t, "A short fact.")

	built, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{},
		Index:    semantic.NewMemoryIndex(0),
	}, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(built.Texts) != 1 {
		t.Fatalf("chunks = %d, want 1", len(built.Texts))
	}
	if built.Texts[0] != "A short fact." {
		t.Fatalf("chunk = %q", built.Texts[0])
	}
}

func TestBuildRetriesTransientEmbedFailure(t *testing.T) {
	path := writeCorpus(t, "A short fact.")

	built, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{fails: 1},
		Index:    semantic.NewMemoryIndex(0),
	}, path)
	if err != nil {
		t.Fatalf("transient failure should be retried: %v", err)
	}
	if len(built.Texts) != 1 {
		t.Fatalf("chunks = %d, want 1", len(built.Texts))
	}
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(context.Background(), Deps{
		Embedder: &hashEmbedder{},
		Index:    semantic.NewMemoryIndex(0),
	}, filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected error for missing corpus file")
	}
}

func TestChunkStageUsesSplitter(t *testing.T) {
	splitter := corpus.NewSplitter(80, 10)
	stage := NewChunk(splitter)

	res := stage(context.Background(), corpusText())
	doc, err := res.Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Chunks) < 2 {
		t.Fatalf("long document produced %d chunks", len(doc.Chunks))
	}
}
