package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRerank_AlignsScoresToInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Texts) != 3 {
			t.Fatalf("expected 3 texts, got %d", len(req.Texts))
		}
		// Server answers best-first, not input order.
		json.NewEncoder(w).Encode([]rerankHit{
			{Index: 2, Score: 0.9},
			{Index: 0, Score: 0.5},
			{Index: 1, Score: 0.1},
		})
	}))
	defer srv.Close()

	c := NewRerankClient(srv.URL)
	scores, err := c.Rerank(context.Background(), "when can I retire", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 0.1, 0.9}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("got %v, want %v", scores, want)
		}
	}
}

func TestRerank_EmptyTexts(t *testing.T) {
	c := NewRerankClient("http://unused")
	scores, err := c.Rerank(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Fatalf("got %v, %v", scores, err)
	}
}

func TestRerank_BadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]rerankHit{{Index: 5, Score: 1}})
	}))
	defer srv.Close()

	c := NewRerankClient(srv.URL)
	if _, err := c.Rerank(context.Background(), "q", []string{"a"}); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestRerank_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRerankClient(srv.URL)
	if _, err := c.Rerank(context.Background(), "q", []string{"a"}); err == nil {
		t.Fatal("expected error for 502")
	}
}
