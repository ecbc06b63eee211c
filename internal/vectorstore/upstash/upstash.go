// Package upstash implements the vector store contract on top of the Upstash
// Vector REST API. Documents are sent as raw text; Upstash embeds them
// server-side and reports similarity scores.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"go.uber.org/zap"
)

const contentType = "application/json"

type Client struct {
	url    string
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
}

func New(url, token string, logger *zap.Logger) (*Client, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return nil, fmt.Errorf("upstash url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("upstash token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:    url,
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Convention reports Upstash's similarity scores: higher is better, [0,1].
func (c *Client) Convention() vectorstore.ScoreConvention {
	return vectorstore.ConventionSimilarity
}

type upsertEntry struct {
	ID       string         `json:"id"`
	Data     string         `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (c *Client) Upsert(ctx context.Context, namespace string, docs []vectorstore.Document) error {
	entries := make([]upsertEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, upsertEntry{
			ID:       doc.ID,
			Data:     doc.Content,
			Metadata: doc.Metadata,
		})
	}

	return c.postJSON(ctx, "/upsert-data/"+namespace, entries, nil)
}

type queryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
	Filter          string `json:"filter,omitempty"`
}

type queryResponse struct {
	Result []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"result"`
}

func (c *Client) Query(ctx context.Context, namespace, content string, k int, filter vectorstore.Filter) ([]vectorstore.Candidate, error) {
	req := queryRequest{
		Data:            content,
		TopK:            k,
		IncludeMetadata: true,
		Filter:          buildFilter(filter),
	}

	var resp queryResponse
	if err := c.postJSON(ctx, "/query-data/"+namespace, req, &resp); err != nil {
		return nil, err
	}

	candidates := make([]vectorstore.Candidate, 0, len(resp.Result))
	for _, result := range resp.Result {
		candidates = append(candidates, vectorstore.Candidate{
			ID:       result.ID,
			Score:    result.Score,
			Metadata: result.Metadata,
		})
	}

	return candidates, nil
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (c *Client) DeleteByIDs(ctx context.Context, namespace string, ids []string) error {
	return c.postJSON(ctx, "/delete/"+namespace, deleteRequest{IDs: ids}, nil)
}

// buildFilter renders the project scope (and optional user allow-list) as an
// Upstash metadata filter expression.
func buildFilter(filter vectorstore.Filter) string {
	var clauses []string

	if filter.ProjectID != "" {
		clauses = append(clauses, fmt.Sprintf("project_id = '%s'", escape(filter.ProjectID)))
	}
	if filter.ManagerID != "" {
		clauses = append(clauses, fmt.Sprintf("manager_id = '%s'", escape(filter.ManagerID)))
	}

	if len(filter.UserIDs) > 0 {
		quoted := make([]string, 0, len(filter.UserIDs))
		for _, id := range filter.UserIDs {
			quoted = append(quoted, fmt.Sprintf("'%s'", escape(id)))
		}
		clauses = append(clauses, fmt.Sprintf("user_id IN (%s)", strings.Join(quoted, ", ")))
	}

	return strings.Join(clauses, " AND ")
}

func escape(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("make request to upstash", zap.String("url", req.URL.String()))

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
