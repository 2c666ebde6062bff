package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/m-mizutani/gt"
	"github.com/sashabaranov/go-openai"
	httpctrl "github.com/secmon-lab/deskrelay/pkg/controller/http"
	"github.com/secmon-lab/deskrelay/pkg/repository/memory"
	"github.com/secmon-lab/deskrelay/pkg/service/asset"
	"github.com/secmon-lab/deskrelay/pkg/service/desk"
	"github.com/secmon-lab/deskrelay/pkg/service/llm"
	"github.com/secmon-lab/deskrelay/pkg/service/oauth"
	slacksvc "github.com/secmon-lab/deskrelay/pkg/service/slack"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
)

// upstream fakes the identity provider, the ticketing API, the approval API and the LLM on a
// single server. Desk endpoints accept only validToken.
type upstream struct {
	mu sync.Mutex

	validToken string
	// tokenReplies are served in order by the token endpoint; the last one repeats
	tokenReplies []tokenReply
	tokenForms   []url.Values

	ticketStatus int
	ticketBody   string
	ticketAuths  []string
	ticketQuery  []url.Values
	ticketPaths  []string

	approvalStatus int
	approvalBody   string
	approvalQuery  []url.Values

	summary   string
	llmInputs []string
}

type tokenReply struct {
	status int
	body   string
}

func newUpstream() *upstream {
	return &upstream{
		validToken:     "access-1",
		tokenReplies:   []tokenReply{{status: http.StatusOK, body: `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`}},
		ticketStatus:   http.StatusOK,
		ticketBody:     ticketListBody(2),
		approvalStatus: http.StatusOK,
		approvalBody:   `{"value":[{"strStatus":"Pending","strCategory":"Laptop","decAmount":"1200"}]}`,
		summary:        "You have **2** open tickets. See [portal](https://desk.example.com).",
	}
}

func (x *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	x.mu.Lock()
	defer x.mu.Unlock()

	switch {
	case r.URL.Path == "/oauth/v2/token":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		x.tokenForms = append(x.tokenForms, r.PostForm)
		reply := x.tokenReplies[0]
		if len(x.tokenReplies) > 1 {
			x.tokenReplies = x.tokenReplies[1:]
		}
		writeRaw(w, reply.status, reply.body)

	case strings.HasPrefix(r.URL.Path, "/api/v3/requests"):
		auth := r.Header.Get("Authorization")
		x.ticketAuths = append(x.ticketAuths, auth)
		x.ticketQuery = append(x.ticketQuery, r.URL.Query())
		x.ticketPaths = append(x.ticketPaths, r.URL.Path)
		if auth != "Zoho-oauthtoken "+x.validToken {
			writeRaw(w, http.StatusUnauthorized, `{"response_status":{"status_code":4000,"status":"failed"}}`)
			return
		}
		writeRaw(w, x.ticketStatus, x.ticketBody)

	case r.URL.Path == "/approvals":
		x.approvalQuery = append(x.approvalQuery, r.URL.Query())
		if r.Header.Get("Authorization") != "Zoho-oauthtoken "+x.validToken {
			writeRaw(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
			return
		}
		writeRaw(w, x.approvalStatus, x.approvalBody)

	case r.URL.Path == "/openai/v1/chat/completions":
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, m := range req.Messages {
			if m.Role == openai.ChatMessageRoleUser {
				x.llmInputs = append(x.llmInputs, m.Content)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: x.summary}},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

func (x *upstream) tokenCalls() []url.Values {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]url.Values(nil), x.tokenForms...)
}

func (x *upstream) ticketCalls() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.ticketAuths...)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func ticketListBody(n int) string {
	requests := make([]map[string]any, n)
	for i := range requests {
		requests[i] = map[string]any{
			"id":         fmt.Sprintf("1000%d", i),
			"display_id": fmt.Sprintf("%d", 500-i),
			"subject":    fmt.Sprintf("Ticket subject %d", i),
			"status":     map[string]any{"name": "Open"},
		}
	}

	raw, err := json.Marshal(map[string]any{"requests": requests})
	if err != nil {
		panic(err)
	}
	return string(raw)
}

type testEnv struct {
	upstream *upstream
	repo     *memory.Memory
	uc       *usecase.UseCases
	server   *httpctrl.Server
}

type envConfig struct {
	noApprovals bool
	noLLM       bool
	slack       slacksvc.Service
	serverOpts  []httpctrl.Options
}

type envOption func(*envConfig)

func withoutApprovals() envOption {
	return func(c *envConfig) { c.noApprovals = true }
}

func withoutLLM() envOption {
	return func(c *envConfig) { c.noLLM = true }
}

func withSlack(svc slacksvc.Service) envOption {
	return func(c *envConfig) { c.slack = svc }
}

func withServerOptions(opts ...httpctrl.Options) envOption {
	return func(c *envConfig) { c.serverOpts = append(c.serverOpts, opts...) }
}

func newTestEnv(t *testing.T, up *upstream, opts ...envOption) *testEnv {
	t.Helper()

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	oauthSvc, err := oauth.New("client-id", "client-secret", "https://relay.example.com/token",
		oauth.WithEndpoint(srv.URL+"/oauth/v2/auth", srv.URL+"/oauth/v2/token"),
	)
	gt.NoError(t, err).Required()

	tickets, err := desk.NewTicketClient(srv.URL + "/api/v3")
	gt.NoError(t, err).Required()

	var ucOpts []usecase.Option
	if !cfg.noApprovals {
		approvals, err := desk.NewApprovalClient(srv.URL + "/approvals")
		gt.NoError(t, err).Required()
		ucOpts = append(ucOpts, usecase.WithApprovalService(approvals))
	}
	if !cfg.noLLM {
		llmSvc, err := llm.NewOpenAI("sk-test", llm.WithBaseURL(srv.URL+"/openai/v1"))
		gt.NoError(t, err).Required()
		ucOpts = append(ucOpts, usecase.WithLLM(llmSvc))
	}

	if cfg.slack != nil {
		ucOpts = append(ucOpts, usecase.WithSlackService(cfg.slack))
	}

	repo := memory.New()
	uc := usecase.New(repo, oauthSvc, tickets, ucOpts...)

	assets := asset.NewFS(fstest.MapFS{
		"index.html": {Data: []byte("<html>relay</html>")},
		"script.js":  {Data: []byte("console.log('relay')")},
	})
	serverOpts := append([]httpctrl.Options{httpctrl.WithAssets(assets)}, cfg.serverOpts...)

	return &testEnv{
		upstream: up,
		repo:     repo,
		uc:       uc,
		server:   httpctrl.New(uc, serverOpts...),
	}
}

func (x *testEnv) storeTokens(t *testing.T, access, refresh string) {
	t.Helper()
	if access != "" {
		gt.NoError(t, x.repo.PutAccessToken(t.Context(), access)).Required()
	}
	if refresh != "" {
		gt.NoError(t, x.repo.PutRefreshToken(t.Context(), refresh)).Required()
	}
}

func (x *testEnv) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	x.server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v)).Required()
	return v
}
