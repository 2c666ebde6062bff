package llm

import "context"

// Service generates a natural-language reply from a system prompt and a user prompt
type Service interface {
	Summarize(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
