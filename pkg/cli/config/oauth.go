package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/service/oauth"
	"github.com/urfave/cli/v3"
)

// OAuth holds the client registration at the identity provider
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	scope        string
	timeout      time.Duration
}

func (x *OAuth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "oauth-client-id",
			Usage:       "OAuth client ID registered at the identity provider",
			Category:    "OAuth",
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "oauth-client-secret",
			Usage:       "OAuth client secret",
			Category:    "OAuth",
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "oauth-redirect-uri",
			Usage:       "Redirect URI registered for the client, i.e. https://<relay>/token",
			Category:    "OAuth",
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_REDIRECT_URI"),
			Destination: &x.redirectURI,
		},
		&cli.StringFlag{
			Name:        "oauth-auth-url",
			Usage:       "Authorization endpoint",
			Category:    "OAuth",
			Value:       oauth.DefaultAuthURL,
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_AUTH_URL"),
			Destination: &x.authURL,
		},
		&cli.StringFlag{
			Name:        "oauth-token-url",
			Usage:       "Token endpoint",
			Category:    "OAuth",
			Value:       oauth.DefaultTokenURL,
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_TOKEN_URL"),
			Destination: &x.tokenURL,
		},
		&cli.StringFlag{
			Name:        "oauth-scope",
			Usage:       "Requested scopes, comma separated",
			Category:    "OAuth",
			Value:       oauth.DefaultScope,
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_SCOPE"),
			Destination: &x.scope,
		},
		&cli.DurationFlag{
			Name:        "oauth-timeout",
			Usage:       "Timeout of token endpoint calls",
			Category:    "OAuth",
			Value:       oauth.DefaultTimeout,
			Sources:     cli.EnvVars("DESKRELAY_OAUTH_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x OAuth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", x.clientID),
		slog.Int("client_secret.len", len(x.clientSecret)),
		slog.String("redirect_uri", x.redirectURI),
		slog.String("token_url", x.tokenURL),
		slog.String("scope", x.scope),
	)
}

func (x *OAuth) scopes() []string {
	var scopes []string
	for _, s := range strings.Split(x.scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// Configure creates the OAuth client. Client ID, secret and redirect URI are required.
func (x *OAuth) Configure() (oauth.Service, error) {
	for flag, v := range map[string]string{
		"oauth-client-id":     x.clientID,
		"oauth-client-secret": x.clientSecret,
		"oauth-redirect-uri":  x.redirectURI,
	} {
		if v == "" {
			return nil, goerr.Wrap(ErrMissingCredential, "failed to configure OAuth", goerr.V(FlagKey, flag))
		}
	}

	opts := []oauth.Option{
		oauth.WithEndpoint(x.authURL, x.tokenURL),
		oauth.WithScopes(x.scopes()...),
	}
	if x.timeout > 0 {
		opts = append(opts, oauth.WithTimeout(x.timeout))
	}

	svc, err := oauth.New(x.clientID, x.clientSecret, x.redirectURI, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OAuth client")
	}
	return svc, nil
}
