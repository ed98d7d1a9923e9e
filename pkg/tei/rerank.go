// Package tei is a client for a Text Embeddings Inference server's
// /rerank endpoint, used as the cross-encoder reranker capability.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RerankClient scores (query, text) pairs with a cross-encoder model.
type RerankClient struct {
	baseURL string
	client  *http.Client
}

// NewRerankClient creates a reranker client for a TEI server.
func NewRerankClient(baseURL string) *RerankClient {
	return &RerankClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankHit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rerank returns one relevance score per input text, aligned with the
// input order regardless of the order the server answers in.
func (c *RerankClient) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, _ := json.Marshal(rerankRequest{Query: query, Texts: texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tei rerank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tei rerank: status %d", resp.StatusCode)
	}

	var hits []rerankHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("tei rerank decode: %w", err)
	}

	scores := make([]float64, len(texts))
	for _, h := range hits {
		if h.Index < 0 || h.Index >= len(texts) {
			return nil, fmt.Errorf("tei rerank: index %d out of range", h.Index)
		}
		scores[h.Index] = h.Score
	}
	return scores, nil
}
