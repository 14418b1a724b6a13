package openaiLLM

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client calls an OpenAI compatible chat completions endpoint. The default base URL is
// Groq's, which serves both the answer and the validation model.
type Client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func New(settings config.LLMSettings, model string, httpClient *http.Client) *Client {
	opts := []option.RequestOption{option.WithBaseURL(settings.BaseURL)}
	if settings.APIKey != "" {
		opts = append(opts, option.WithAPIKey(settings.APIKey))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:    openai.NewClient(opts...),
		model:  model,
		logger: logger_i.NewLogger("llm_openai").With("model", model),
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	log := c.logger.WithContext(ctx)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		log.Error("chat completion failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	log.Debug("chat completion done", "finish_reason", completion.Choices[0].FinishReason, "tokens", completion.Usage.TotalTokens)
	return completion.Choices[0].Message.Content, nil
}
