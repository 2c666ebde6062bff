package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/deskrelay/pkg/controller/http"
	"github.com/urfave/cli/v3"
)

// GoogleChat holds the bearer token check of the chat webhook
type GoogleChat struct {
	audience string
}

func (x *GoogleChat) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-chat-audience",
			Usage:       "Project number of the Google Chat app. Events are not verified when empty",
			Category:    "Google Chat",
			Sources:     cli.EnvVars("DESKRELAY_GOOGLE_CHAT_AUDIENCE"),
			Destination: &x.audience,
		},
	}
}

func (x GoogleChat) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("verify", x.audience != ""),
		slog.String("audience", x.audience),
	)
}

// Configure returns the verifier, or nil when verification is disabled
func (x *GoogleChat) Configure(ctx context.Context) (*httpctrl.ChatVerifier, error) {
	if x.audience == "" {
		return nil, nil
	}

	verifier, err := httpctrl.NewChatVerifier(ctx, x.audience)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Google Chat verification")
	}
	return verifier, nil
}
