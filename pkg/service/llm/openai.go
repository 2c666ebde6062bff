package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

type openAIClient struct {
	client *openai.Client
	model  string
}

// OpenAIOption is a functional option for the OpenAI-compatible client
type OpenAIOption func(*openai.ClientConfig, *openAIClient)

// WithBaseURL points the client at an OpenAI-compatible gateway, e.g. https://llm.example.com/openai/v1
func WithBaseURL(baseURL string) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *openAIClient) {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithModel sets the chat completion model
func WithModel(model string) OpenAIOption {
	return func(_ *openai.ClientConfig, c *openAIClient) {
		c.model = model
	}
}

// NewOpenAI creates a Service backed by an OpenAI-compatible chat completion endpoint
func NewOpenAI(apiKey string, opts ...OpenAIOption) (Service, error) {
	if apiKey == "" {
		return nil, goerr.New("LLM API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	c := &openAIClient{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&cfg, c)
	}
	c.client = openai.NewClientWithConfig(cfg)

	return c, nil
}

func (c *openAIClient) Summarize(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion", goerr.V("model", c.model))
	}

	if len(resp.Choices) == 0 {
		return "", goerr.New("chat completion returned no choices", goerr.V("model", c.model))
	}

	return resp.Choices[0].Message.Content, nil
}
