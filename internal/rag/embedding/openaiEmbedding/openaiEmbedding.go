package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client talks to any server implementing the OpenAI /embeddings route: OpenAI itself,
// a text-embeddings-inference container serving all-MiniLM-L6-v2, Ollama, vLLM.
type Client struct {
	api               openai.Client
	model             string
	dimension         int
	requestDimensions bool
	logger            *logger_i.Logger
}

func New(settings config.EmbeddingSettings, httpClient *http.Client) *Client {
	opts := []option.RequestOption{option.WithBaseURL(settings.BaseURL)}
	if settings.APIKey != "" {
		opts = append(opts, option.WithAPIKey(settings.APIKey))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		api:               openai.NewClient(opts...),
		model:             settings.Model,
		dimension:         settings.Dimension,
		requestDimensions: settings.RequestDimensions,
		logger:            logger_i.NewLogger("openai_embedding"),
	}
}

func (c *Client) Dimension() int {
	return c.dimension
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	return c.embed(ctx, chunks)
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.WithContext(ctx)

	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(c.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if c.requestDimensions {
		params.Dimensions = openai.Int(int64(c.dimension))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		log.Error("embedding request failed", "model", c.model, "inputs", len(texts), "error", err)
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding server returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// results carry their input index, order is not guaranteed
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		vectors[d.Index] = vec
	}
	log.Debug("embedded texts", "count", len(texts))
	return vectors, nil
}
