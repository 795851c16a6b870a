package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RerankerClient talks to the cross-encoder scoring sidecar. The sidecar
// scores a (query, document) pair jointly; higher is more relevant.
type RerankerClient struct {
	httpClient *http.Client
	baseURL    string
}

// ScoreRequest is the payload for the /score endpoint.
type ScoreRequest struct {
	Query    string `json:"query"`
	Document string `json:"document"`
}

// ScoreResponse is the sidecar's reply.
type ScoreResponse struct {
	Score float64 `json:"score"`
	Error string  `json:"error,omitempty"`
}

func NewRerankerClient(baseURL string, timeout time.Duration) *RerankerClient {
	if baseURL == "" {
		baseURL = "http://localhost:8001"
	}
	return &RerankerClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Score returns the cross-encoder relevance score for a (query, document) pair.
func (c *RerankerClient) Score(ctx context.Context, query, document string) (float64, error) {
	body, err := json.Marshal(ScoreRequest{Query: query, Document: document})
	if err != nil {
		return 0, fmt.Errorf("failed to encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, wrapTimeout("reranker score", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("reranker returned status %d", resp.StatusCode)
	}

	var scoreResp ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scoreResp); err != nil {
		return 0, fmt.Errorf("failed to decode score response: %w", err)
	}
	if scoreResp.Error != "" {
		return 0, fmt.Errorf("reranker error: %s", scoreResp.Error)
	}

	return scoreResp.Score, nil
}

// IsHealthy checks if the reranker sidecar is reachable.
func (c *RerankerClient) IsHealthy(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
