package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"google.golang.org/genai"
)

type Client struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func New(ctx context.Context, settings config.LLMSettings, modelName string, httpClient *http.Client) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     settings.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	modelName = ModelFor(modelName)
	logger := logger_i.NewLogger("llm_gemini").With("model", modelName)
	logger.Info("Gemini client created")
	return &Client{client: c, modelName: modelName, logger: logger}, nil
}

// ModelFor maps an empty model or one of the Groq defaults to the Gemini default, so
// switching llm.provider alone is enough.
func ModelFor(model string) string {
	switch model {
	case "", config.AnswerModel, config.ValidationModel:
		return config.GeminiModelName
	}
	return model
}

func (c *Client) Model() string {
	return c.modelName
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	log := c.logger.WithContext(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(req.Prompt), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini returned no response")
	}
	return result.Text(), nil
}
