package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
)

// Service generates fixed-dimension embedding vectors for memory text.
type Service interface {
	// Embed generates an embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedAll generates embeddings for multiple texts in one call,
	// preserving input order
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
}

type client struct {
	llmClient gollem.LLMClient
}

// New creates a new embedding service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return &client{llmClient: llmClient}, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("got", len(embeddings)),
			goerr.V("want", len(texts)))
	}

	results := make([][]float32, len(embeddings))
	for i, embedding := range embeddings {
		if len(embedding) != model.EmbeddingDimension {
			return nil, goerr.New("embedding dimension mismatch",
				goerr.V("got", len(embedding)),
				goerr.V("want", model.EmbeddingDimension))
		}

		vec := make([]float32, len(embedding))
		for j, v := range embedding {
			vec[j] = float32(v)
		}
		results[i] = vec
	}

	return results, nil
}
