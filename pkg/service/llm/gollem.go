package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

type gollemClient struct {
	llmClient gollem.LLMClient
}

// NewGollem creates a Service on top of a gollem LLM client such as Gemini
func NewGollem(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &gollemClient{llmClient: llmClient}, nil
}

func (c *gollemClient) Summarize(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}

	if len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text")
	}

	return strings.Join(resp.Texts, "\n"), nil
}
