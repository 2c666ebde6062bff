package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/utils/safe"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout = 30 * time.Second

	// replies of the token endpoint are small; anything larger is truncated in error details
	maxReplySize = 1 << 20
)

// client implements Service with golang.org/x/oauth2
type client struct {
	conf      *oauth2.Config
	transport http.RoundTripper
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithEndpoint overrides the authorization and token URLs
func WithEndpoint(authURL, tokenURL string) Option {
	return func(c *client) {
		c.conf.Endpoint.AuthURL = authURL
		c.conf.Endpoint.TokenURL = tokenURL
	}
}

// WithScopes overrides the requested scopes
func WithScopes(scopes ...string) Option {
	return func(c *client) {
		c.conf.Scopes = scopes
	}
}

// WithTimeout sets the timeout of calls to the token endpoint
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.timeout = timeout
	}
}

// WithTransport replaces the underlying HTTP transport
func WithTransport(transport http.RoundTripper) Option {
	return func(c *client) {
		c.transport = transport
	}
}

// New creates a new OAuth service. redirectURL must match the URL registered with the provider.
func New(clientID, clientSecret, redirectURL string, opts ...Option) (Service, error) {
	if clientID == "" {
		return nil, goerr.New("OAuth client ID is required")
	}
	if clientSecret == "" {
		return nil, goerr.New("OAuth client secret is required")
	}
	if redirectURL == "" {
		return nil, goerr.New("OAuth redirect URL is required")
	}

	c := &client{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{DefaultScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DefaultAuthURL,
				TokenURL: DefaultTokenURL,
				// The provider expects credentials in the form body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) AuthURL() string {
	return c.conf.AuthCodeURL("", oauth2.AccessTypeOffline)
}

func (c *client) Exchange(ctx context.Context, code string) (*Grant, error) {
	capture := &captureTransport{base: c.transport}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: capture,
		Timeout:   c.timeout,
	})

	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		if capture.replied {
			return nil, goerr.Wrap(capture.providerError(err), "failed to exchange authorization code")
		}
		return nil, goerr.Wrap(err, "failed to call token endpoint")
	}

	grant := &Grant{
		Pair: model.TokenPair{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		},
		Raw: capture.raw(),
	}

	return grant, nil
}

func (c *client) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, goerr.New("refresh token is empty")
	}

	capture := &captureTransport{base: c.transport}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: capture,
		Timeout:   c.timeout,
	})

	// Without an access token the source goes straight to the refresh grant
	src := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		if capture.replied {
			return nil, goerr.Wrap(capture.providerError(err), "failed to refresh access token")
		}
		return nil, goerr.Wrap(err, "failed to call token endpoint")
	}

	// oauth2 carries the old refresh token over when the reply has none
	pair := &model.TokenPair{AccessToken: token.AccessToken}
	if token.RefreshToken != refreshToken {
		pair.RefreshToken = token.RefreshToken
	}

	return pair, nil
}

// captureTransport keeps a copy of the token endpoint reply, which oauth2 does not expose when
// the reply lacks an access token.
type captureTransport struct {
	base http.RoundTripper

	replied bool
	status  int
	body    []byte
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer safe.Close(req.Context(), resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token endpoint reply")
	}

	t.replied = true
	t.status = resp.StatusCode
	t.body = body

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (t *captureTransport) raw() json.RawMessage {
	if json.Valid(t.body) {
		return json.RawMessage(t.body)
	}

	// Non-JSON replies are kept as a JSON string so they can be embedded in a response
	encoded, err := json.Marshal(string(t.body))
	if err != nil {
		return nil
	}
	return encoded
}

func (t *captureTransport) providerError(cause error) *ProviderError {
	return &ProviderError{
		StatusCode: t.status,
		Body:       t.raw(),
		cause:      cause,
	}
}
