package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

const (
	// ChatIssuer signs the bearer tokens of Google Chat requests
	ChatIssuer = "chat@system.gserviceaccount.com"
	// ChatJWKSURL publishes the keys of ChatIssuer
	ChatJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/chat@system.gserviceaccount.com"

	maxChatEventSize = 1 << 20
)

// ChatVerifier checks the bearer token Google Chat attaches to every event. The audience is the
// project number of the Chat app.
type ChatVerifier struct {
	keySet   jwk.Set
	audience string
}

// NewChatVerifier creates a verifier backed by the published Google Chat keys, refreshed in the
// background
func NewChatVerifier(ctx context.Context, audience string) (*ChatVerifier, error) {
	if audience == "" {
		return nil, goerr.New("Google Chat audience is required")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(ChatJWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register Google Chat JWKS", goerr.V("url", ChatJWKSURL))
	}
	if _, err := cache.Refresh(ctx, ChatJWKSURL); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch Google Chat public keys", goerr.V("url", ChatJWKSURL))
	}

	return NewChatVerifierWithKeySet(jwk.NewCachedSet(cache, ChatJWKSURL), audience), nil
}

// NewChatVerifierWithKeySet creates a verifier with a fixed key set
func NewChatVerifierWithKeySet(keySet jwk.Set, audience string) *ChatVerifier {
	return &ChatVerifier{
		keySet:   keySet,
		audience: audience,
	}
}

// Verify validates the Authorization header of r
func (v *ChatVerifier) Verify(r *http.Request) error {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return goerr.New("missing bearer token")
	}

	// Allow 10 seconds of clock skew to handle time synchronization differences
	if _, err := jwt.Parse([]byte(token),
		jwt.WithKeySet(v.keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer(ChatIssuer),
		jwt.WithAudience(v.audience),
		jwt.WithAcceptableSkew(10*time.Second),
	); err != nil {
		return goerr.Wrap(err, "failed to verify Google Chat token")
	}

	return nil
}

func (s *Server) handleGoogleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(ctx, w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	if s.uc.Chat == nil {
		writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Error: "chat bot is not configured"})
		return
	}

	if s.chatVerifier != nil {
		if err := s.chatVerifier.Verify(r); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxChatEventSize))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	var event model.ChatEvent
	if err := json.Unmarshal(body, &event); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse chat event"), http.StatusBadRequest)
		return
	}

	msg, err := s.uc.Chat.HandleEvent(ctx, &event)
	if err != nil {
		writeUseCaseError(ctx, w, err)
		return
	}

	if msg == nil {
		logging.From(ctx).Debug("no reply for chat event", "type", event.Type.String())
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSON(ctx, w, http.StatusOK, msg)
}

