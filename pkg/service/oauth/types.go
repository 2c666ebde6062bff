package oauth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/secmon-lab/deskrelay/pkg/domain/model"
)

const (
	DefaultAuthURL  = "https://accounts.zoho.com/oauth/v2/auth"
	DefaultTokenURL = "https://accounts.zoho.com/oauth/v2/token"
	DefaultScope    = "SDPOnDemand.requests.ALL"
)

// Service talks to the token endpoint of the identity provider
type Service interface {
	// AuthURL returns the consent URL the operator is redirected to
	AuthURL() string

	// Exchange trades an authorization code for a token pair. The pair may be incomplete when the
	// provider omits a value; Raw always holds the provider reply.
	Exchange(ctx context.Context, code string) (*Grant, error)

	// Refresh obtains a new access token. RefreshToken of the result is set only when the
	// provider issued one.
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
}

// Grant is the result of a code exchange
type Grant struct {
	Pair model.TokenPair
	Raw  json.RawMessage
}

// ProviderError is returned when the token endpoint rejects a request. Body is the raw reply.
type ProviderError struct {
	StatusCode int
	Body       []byte
	cause      error
}

func (x *ProviderError) Error() string {
	if x.cause != nil {
		return fmt.Sprintf("token endpoint rejected request (status %d): %s", x.StatusCode, x.cause.Error())
	}
	return fmt.Sprintf("token endpoint rejected request (status %d)", x.StatusCode)
}

func (x *ProviderError) Unwrap() error {
	return x.cause
}
