package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/service/oauth"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

// TokenUseCase manages the single OAuth token pair of the deployment
type TokenUseCase struct {
	repo  interfaces.Repository
	oauth oauth.Service
}

func NewTokenUseCase(repo interfaces.Repository, oauthService oauth.Service) *TokenUseCase {
	return &TokenUseCase{
		repo:  repo,
		oauth: oauthService,
	}
}

// TokenExchangeError is returned when the code exchange does not yield a complete token pair.
// Details is the raw reply of the provider and may be nil when the provider sent nothing.
type TokenExchangeError struct {
	Details json.RawMessage
	cause   error
}

func (x *TokenExchangeError) Error() string {
	return "failed to obtain tokens: " + x.cause.Error()
}

func (x *TokenExchangeError) Unwrap() error {
	return x.cause
}

// TokenStatus tells which values are held by the token store
type TokenStatus struct {
	HasAccessToken  bool
	HasRefreshToken bool
}

// AuthURL returns the provider consent URL. The token store is not touched.
func (uc *TokenUseCase) AuthURL() string {
	return uc.oauth.AuthURL()
}

// Exchange trades an authorization code for a token pair and stores it. The store is modified
// only when the provider issued both tokens. There is no retry.
func (uc *TokenUseCase) Exchange(ctx context.Context, code string) error {
	logger := logging.From(ctx)

	grant, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		var providerErr *oauth.ProviderError
		if errors.As(err, &providerErr) {
			return &TokenExchangeError{Details: providerErr.Body, cause: err}
		}
		return goerr.Wrap(err, "failed to exchange authorization code")
	}

	if !grant.Pair.IsComplete() {
		logger.Warn("provider did not issue both tokens",
			"has_access_token", grant.Pair.AccessToken != "",
			"has_refresh_token", grant.Pair.RefreshToken != "",
		)
		return &TokenExchangeError{Details: grant.Raw, cause: ErrIncompleteGrant}
	}

	if err := uc.repo.PutAccessToken(ctx, grant.Pair.AccessToken); err != nil {
		return goerr.Wrap(err, "failed to store access token")
	}
	if err := uc.repo.PutRefreshToken(ctx, grant.Pair.RefreshToken); err != nil {
		return goerr.Wrap(err, "failed to store refresh token")
	}

	logger.Info("tokens stored", "pair", grant.Pair)
	return nil
}

// AccessToken returns the stored access token, refreshing it first when none is stored.
// refreshed reports whether the returned token was just issued.
func (uc *TokenUseCase) AccessToken(ctx context.Context) (token string, refreshed bool, err error) {
	token, err = uc.repo.GetAccessToken(ctx)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to get access token")
	}
	if token != "" {
		return token, false, nil
	}

	logging.From(ctx).Info("no access token stored, refreshing")
	token, err = uc.Refresh(ctx)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Refresh obtains and stores a new access token. The refresh token is replaced only when the
// provider issued a different one.
func (uc *TokenUseCase) Refresh(ctx context.Context) (string, error) {
	refreshToken, err := uc.repo.GetRefreshToken(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get refresh token")
	}
	if refreshToken == "" {
		return "", goerr.Wrap(ErrNoRefreshToken, "manual authorization is required")
	}

	pair, err := uc.oauth.Refresh(ctx, refreshToken)
	if err != nil {
		return "", goerr.Wrap(errors.Join(ErrRefreshFailed, err), "manual authorization is required")
	}
	if pair.AccessToken == "" {
		return "", goerr.Wrap(ErrRefreshFailed, "provider returned no access token")
	}

	if err := uc.repo.PutAccessToken(ctx, pair.AccessToken); err != nil {
		return "", goerr.Wrap(err, "failed to store access token")
	}

	rotated := pair.RefreshToken != "" && pair.RefreshToken != refreshToken
	if rotated {
		if err := uc.repo.PutRefreshToken(ctx, pair.RefreshToken); err != nil {
			return "", goerr.Wrap(err, "failed to store refresh token")
		}
	}

	logging.From(ctx).Info("access token refreshed", "refresh_token_rotated", rotated)
	return pair.AccessToken, nil
}

// Status reports which tokens are stored
func (uc *TokenUseCase) Status(ctx context.Context) (*TokenStatus, error) {
	access, err := uc.repo.GetAccessToken(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get access token")
	}
	refresh, err := uc.repo.GetRefreshToken(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get refresh token")
	}

	return &TokenStatus{
		HasAccessToken:  access != "",
		HasRefreshToken: refresh != "",
	}, nil
}
