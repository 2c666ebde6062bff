package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// LLM selects the summarization backend. An OpenAI-compatible key takes precedence over Gemini;
// with neither the chat bots are disabled.
type LLM struct {
	apiKey  string
	baseURL string
	model   string

	gemini Gemini
}

func (x *LLM) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-api-key",
			Usage:       "API key of the OpenAI-compatible chat completion endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("DESKRELAY_LLM_API_KEY"),
			Destination: &x.apiKey,
		},
		&cli.StringFlag{
			Name:        "llm-base-url",
			Usage:       "Base URL of the OpenAI-compatible endpoint, e.g. https://llm.example.com/openai/v1",
			Category:    "LLM",
			Sources:     cli.EnvVars("DESKRELAY_LLM_BASE_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Usage:       "Chat completion model",
			Category:    "LLM",
			Value:       llm.DefaultOpenAIModel,
			Sources:     cli.EnvVars("DESKRELAY_LLM_MODEL"),
			Destination: &x.model,
		},
	}
	return append(flags, x.gemini.Flags()...)
}

func (x LLM) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("api_key.len", len(x.apiKey)),
		slog.String("base_url", x.baseURL),
		slog.String("model", x.model),
	}
	return slog.GroupValue(append(attrs, x.gemini.LogAttrs()...)...)
}

// Configure returns the summarization service, or nil when no backend is configured
func (x *LLM) Configure(ctx context.Context) (llm.Service, error) {
	if x.apiKey != "" {
		opts := []llm.OpenAIOption{llm.WithModel(x.model)}
		if x.baseURL != "" {
			opts = append(opts, llm.WithBaseURL(x.baseURL))
		}
		svc, err := llm.NewOpenAI(x.apiKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI-compatible client")
		}
		return svc, nil
	}

	client, err := x.gemini.Configure(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}

	svc, err := llm.NewGollem(client)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini summarizer")
	}
	return svc, nil
}
