package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultDimension = 768

// Embedder produces text embeddings with a Gemini embedding model.
type Embedder struct {
	client    *genai.Client
	modelName string
	dimension int
	logger    *zap.Logger
}

func NewEmbedder(client *genai.Client, model string, dimension int, logger *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	if dimension <= 0 {
		dimension = defaultDimension
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:    client,
		modelName: model,
		dimension: dimension,
		logger:    logger,
	}
}

// Dimension returns the configured vector length. Callers use it to build
// the zero-vector fallback when an embedding call is degraded.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	values := resp.Embeddings[0].Values
	if len(values) != e.dimension {
		e.logger.Debug("embedding dimension differs from configured value",
			zap.Int("configured", e.dimension),
			zap.Int("returned", len(values)),
		)
	}

	return values, nil
}
