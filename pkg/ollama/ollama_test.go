package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model: got %s", req.Model)
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "nomic-embed-text", 0)
	vec, err := c.Embed(context.Background(), "saving for retirement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[1] != float32(0.2) {
		t.Fatalf("got %v", vec)
	}
}

func TestEmbed_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m", 0)
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m", 0)
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 500")
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{float64(calls)}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m", 0)
	out, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0][0] != 1 || out[2][0] != 3 {
		t.Fatalf("got %v", out)
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.System == "" {
			t.Error("system prompt missing")
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "Your plan: save more.", Done: true})
	}))
	defer srv.Close()

	c := NewGenerateClient(srv.URL, "llama3.1:8b")
	out, err := c.Generate(context.Background(), "You are an expert.", "Make a plan.")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Your plan: save more." {
		t.Fatalf("got %q", out)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Done: true})
	}))
	defer srv.Close()

	c := NewGenerateClient(srv.URL, "m")
	if _, err := c.Generate(context.Background(), "s", "p"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
