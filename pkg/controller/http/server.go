package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/deskrelay/pkg/domain/types"
	"github.com/secmon-lab/deskrelay/pkg/service/asset"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

type Server struct {
	router              *chi.Mux
	uc                  *usecase.UseCases
	assets              asset.Store
	chatVerifier        *ChatVerifier
	slackWebhookHandler *SlackWebhookHandler
	slackSigningSecret  string
}

type Options func(*Server)

// WithAssets sets the store of the client page served for unmatched paths
func WithAssets(store asset.Store) Options {
	return func(s *Server) {
		s.assets = store
	}
}

// WithChatVerifier enables bearer token verification of Google Chat events
func WithChatVerifier(verifier *ChatVerifier) Options {
	return func(s *Server) {
		s.chatVerifier = verifier
	}
}

func WithSlackWebhook(handler *SlackWebhookHandler, signingSecret string) Options {
	return func(s *Server) {
		s.slackWebhookHandler = handler
		s.slackSigningSecret = signingSecret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(sentryMiddleware)

	// Relay operations are matched by exact path
	for _, op := range types.AllOperations() {
		r.HandleFunc(op.Path(), s.operationHandler(op))
	}

	// Slack webhook endpoint (if configured) - uses signature verification
	if s.slackWebhookHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			r.Post("/event", s.slackWebhookHandler.ServeHTTP)
		})
	}

	// Anything else is a static asset or 404
	r.NotFound(staticHandler(s.assets))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) operationHandler(op types.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch op {
		case types.OperationToken:
			s.handleToken(w, r)
		case types.OperationListRequests:
			s.handleListRequests(w, r)
		case types.OperationGetRequest:
			s.handleGetRequest(w, r)
		case types.OperationListApprovals:
			s.handleListApprovals(w, r)
		case types.OperationGoogleChat:
			s.handleGoogleChat(w, r)
		case types.OperationHealth:
			handleHealth(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.From(ctx).Error("failed to marshal response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write response", "error", err)
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"operation", types.OperationFor(r.URL.Path).String(),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
