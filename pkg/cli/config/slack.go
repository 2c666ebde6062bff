package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/deskrelay/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for replies and user lookup)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("DESKRELAY_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("DESKRELAY_SLACK_SIGNING_SECRET"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// IsWebhookConfigured reports whether both the token and the signing secret are set
func (x *Slack) IsWebhookConfigured() bool {
	return x.botToken != "" && x.signingSecret != ""
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure creates the Slack client. Returns nil when the bot is not configured; a token without
// a signing secret is rejected because the webhook could not be verified.
func (x *Slack) Configure() (slacksvc.Service, error) {
	if x.botToken == "" && x.signingSecret == "" {
		return nil, nil
	}
	if !x.IsWebhookConfigured() {
		return nil, goerr.Wrap(ErrMissingCredential, "slack-bot-token and slack-signing-secret must be set together")
	}

	svc, err := slacksvc.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack client")
	}
	return svc, nil
}
