// Package pinecone implements the vector store contract against a Pinecone
// index host. Pinecone takes pre-computed vectors, so the client carries an
// embedder; raw query scores follow the normalized cosine distance convention.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/optiplan-ai/internal/ai"
	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

const contentType = "application/json"

type Client struct {
	host     string
	apiKey   string
	embedder ai.Embedder
	logger   *zap.Logger

	HTTPClient *http.Client
}

func New(host, apiKey string, embedder ai.Embedder, logger *zap.Logger) (*Client, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return nil, fmt.Errorf("pinecone index host is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("pinecone api key is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("an embedder is required for the pinecone store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		host:     host,
		apiKey:   apiKey,
		embedder: embedder,
		logger:   logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Convention reports normalized cosine distance: lower raw scores are better.
func (c *Client) Convention() vectorstore.ScoreConvention {
	return vectorstore.ConventionCosineDistance
}

type vectorEntry struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vectorEntry `json:"vectors"`
	Namespace string        `json:"namespace"`
}

// Upsert embeds each document and writes the vectors. A failed embedding is
// degraded to a zero vector of the embedder's dimension and logged, so one
// bad document does not abort the batch.
func (c *Client) Upsert(ctx context.Context, namespace string, docs []vectorstore.Document) error {
	entries := make([]vectorEntry, 0, len(docs))

	for _, doc := range docs {
		vector := doc.Vector
		if vector == nil {
			embedded, err := c.embedder.Embed(ctx, doc.Content)
			if err != nil {
				c.logger.Warn("embedding failed, substituting zero vector",
					zap.String("document_id", doc.ID),
					zap.Error(err),
				)
				embedded = make([]float32, c.embedder.Dimension())
			}
			vector = embedded
		}

		entries = append(entries, vectorEntry{
			ID:       doc.ID,
			Values:   vector,
			Metadata: doc.Metadata,
		})
	}

	return c.postJSON(ctx, "/vectors/upsert", upsertRequest{
		Vectors:   entries,
		Namespace: namespace,
	}, nil)
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (c *Client) Query(ctx context.Context, namespace, content string, k int, filter vectorstore.Filter) ([]vectorstore.Candidate, error) {
	vector, err := c.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := queryRequest{
		Vector:          vector,
		TopK:            k,
		Namespace:       namespace,
		Filter:          buildFilter(filter),
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := c.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	candidates := make([]vectorstore.Candidate, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		candidates = append(candidates, vectorstore.Candidate{
			ID:       match.ID,
			Score:    match.Score,
			Metadata: match.Metadata,
		})
	}

	return candidates, nil
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace"`
}

func (c *Client) DeleteByIDs(ctx context.Context, namespace string, ids []string) error {
	return c.postJSON(ctx, "/vectors/delete", deleteRequest{
		IDs:       ids,
		Namespace: namespace,
	}, nil)
}

func buildFilter(filter vectorstore.Filter) map[string]any {
	clauses := map[string]any{}

	if filter.ProjectID != "" {
		clauses["project_id"] = map[string]any{"$eq": filter.ProjectID}
	}
	if filter.ManagerID != "" {
		clauses["manager_id"] = map[string]any{"$eq": filter.ManagerID}
	}
	if len(filter.UserIDs) > 0 {
		clauses["user_id"] = map[string]any{"$in": filter.UserIDs}
	}

	if len(clauses) == 0 {
		return nil
	}

	return clauses
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("make request to pinecone", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
