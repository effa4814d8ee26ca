package googleEmbedding

import (
	"context"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/rag/embedding"
	"github.com/pebblebot/pebble/pkg/logger_i"
	"google.golang.org/genai"
)

var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

// NewClient builds the embedding collaborator once at startup. Nil means the
// credential is missing or the client could not be constructed; the caller
// treats the RAG subsystem as unavailable.
func NewClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	logger := logger_i.NewLogger("google_embedding")
	if apikey == "" {
		logger.Error("GOOGLE_API_KEY not set, embeddings unavailable")
		return nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil
	}
	logger.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	return &client{genAi: c, model: modelName, logger: logger}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		c.logger.Error("Error getting embedding from Google", "error", err)
		return nil, err
	}
	return result.Embeddings[0].Values, nil
}

// BatchEmbedding embeds a small batch of chunks in one request. The ingestion
// pipeline keeps batches at 3-5 chunks, so a single retry after a rate-limit
// hit is all the resilience needed here.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil && doRetry(err, c.logger) {
		time.Sleep(5 * time.Second)
		c.logger.Debug("Retrying after rate limit")
		res, err = c.doCall(ctx, getContent(chunks))
	}
	if err != nil {
		c.logger.Error("Error getting batch embeddings from Google", "error", err)
		return nil, err
	}

	var vectors [][]float32
	for _, r := range res.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}
