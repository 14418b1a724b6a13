package googleEmbedding

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
	retryAfter   = 5 * time.Second
)

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, settings config.EmbeddingSettings, httpClient *http.Client) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     settings.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}

	model := settings.Model
	if model == "" || model == config.OpenAIEmbeddingModel {
		model = config.GoogleEmbeddingModel
	}
	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", model)

	return &Client{
		genAi:     c,
		model:     model,
		dimension: int32(settings.Dimension),
		logger:    logger,
	}, nil
}

func (c *Client) Dimension() int {
	return int(c.dimension)
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCallWithRetry(ctx, genai.Text(query), taskQuery)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return res.Embeddings[0].Values, nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	res, err := c.doCallWithRetry(ctx, getContent(chunks), taskDocument)
	if err != nil {
		return nil, err
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *Client) doCallWithRetry(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	log := c.logger.WithContext(ctx)

	res, err := c.doCall(ctx, content, task)
	if err == nil {
		return res, nil
	}
	if !doRetry(err) {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}

	log.Warn("Rate limit hit, retrying", "in", retryAfter)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryAfter):
	}
	res, err = c.doCall(ctx, content, task)
	if err != nil {
		log.Error("Error getting Embeddings from Google after retry", "error", err)
		return nil, err
	}
	return res, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// doRetry reports quota errors. The REST transport returns genai.APIError, gRPC based
// transports a status error.
func doRetry(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
