package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
)

const (
	tokenStoredMessage = "Tokens stored successfully"
	tokenFailedMessage = "Failed to obtain tokens"
)

// handleToken is the OAuth entry point and callback. Without a code the operator is sent to the
// provider consent page; with a code the tokens are exchanged and stored.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, s.uc.Token.AuthURL(), http.StatusFound)
		return
	}

	if err := s.uc.Token.Exchange(ctx, code); err != nil {
		var exErr *usecase.TokenExchangeError
		if errors.As(err, &exErr) {
			errutil.Handle(ctx, err, "token exchange rejected")
			details := exErr.Details
			if !json.Valid(details) {
				// Non-JSON provider replies are forwarded as a string
				raw, err := json.Marshal(string(details))
				if err != nil {
					errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to encode provider reply"), http.StatusInternalServerError)
					return
				}
				details = raw
			}
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
				Error:   tokenFailedMessage,
				Details: details,
			})
			return
		}

		errutil.HandleHTTP(ctx, w, err, http.StatusBadGateway)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": tokenStoredMessage})
}
