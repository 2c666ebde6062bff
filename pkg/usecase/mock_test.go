package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/service/oauth"
	"github.com/secmon-lab/deskrelay/pkg/service/slack"
)

// events records the order of calls across mocks
type events struct {
	mu   sync.Mutex
	list []string
}

func (x *events) add(e string) {
	if x == nil {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.list = append(x.list, e)
}

func (x *events) all() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.list...)
}

type mockOAuth struct {
	events *events

	authURL    string
	exchangeFn func(ctx context.Context, code string) (*oauth.Grant, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*model.TokenPair, error)

	mu            sync.Mutex
	refreshTokens []string
}

func (m *mockOAuth) AuthURL() string {
	return m.authURL
}

func (m *mockOAuth) Exchange(ctx context.Context, code string) (*oauth.Grant, error) {
	m.events.add("exchange")
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return nil, fmt.Errorf("unexpected exchange")
}

func (m *mockOAuth) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	m.events.add("refresh")
	m.mu.Lock()
	m.refreshTokens = append(m.refreshTokens, refreshToken)
	m.mu.Unlock()

	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return &model.TokenPair{AccessToken: "refreshed-access"}, nil
}

func (m *mockOAuth) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refreshTokens)
}

type listCall struct {
	Token    string
	ListInfo model.ListInfo
}

type getCall struct {
	Token string
	ID    string
}

type mockTickets struct {
	events *events

	listFn func(ctx context.Context, token string, info model.ListInfo) (*model.UpstreamResponse, error)
	getFn  func(ctx context.Context, token, id string) (*model.UpstreamResponse, error)

	mu        sync.Mutex
	listCalls []listCall
	getCalls  []getCall
}

func (m *mockTickets) ListRequests(ctx context.Context, token string, info model.ListInfo) (*model.UpstreamResponse, error) {
	m.events.add("list:" + token)
	m.mu.Lock()
	m.listCalls = append(m.listCalls, listCall{Token: token, ListInfo: info})
	m.mu.Unlock()

	if m.listFn != nil {
		return m.listFn(ctx, token, info)
	}
	return jsonResponse(http.StatusOK, `{"requests":[]}`), nil
}

func (m *mockTickets) GetRequest(ctx context.Context, token, id string) (*model.UpstreamResponse, error) {
	m.events.add("get:" + token)
	m.mu.Lock()
	m.getCalls = append(m.getCalls, getCall{Token: token, ID: id})
	m.mu.Unlock()

	if m.getFn != nil {
		return m.getFn(ctx, token, id)
	}
	return jsonResponse(http.StatusOK, `{"request":{"id":"`+id+`"}}`), nil
}

type approvalCall struct {
	Token string
	Email string
}

type mockApprovals struct {
	listFn func(ctx context.Context, token, email string) (*model.UpstreamResponse, error)

	mu    sync.Mutex
	calls []approvalCall
}

func (m *mockApprovals) ListApprovals(ctx context.Context, token, email string) (*model.UpstreamResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, approvalCall{Token: token, Email: email})
	m.mu.Unlock()

	if m.listFn != nil {
		return m.listFn(ctx, token, email)
	}
	return jsonResponse(http.StatusOK, `{"value":[]}`), nil
}

type llmCall struct {
	System string
	User   string
}

type mockLLM struct {
	fn func(ctx context.Context, system, user string) (string, error)

	mu    sync.Mutex
	calls []llmCall
}

func (m *mockLLM) Summarize(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, llmCall{System: system, User: user})
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(ctx, system, user)
	}
	return "You have no open tickets.", nil
}

type postedMessage struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

type mockSlack struct {
	users map[string]*slack.User

	mu     sync.Mutex
	posted []postedMessage
}

func (m *mockSlack) GetUserInfo(ctx context.Context, userID string) (*slack.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (m *mockSlack) PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, postedMessage{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	return "1700000000.999999", nil
}

func jsonResponse(status int, body string) *model.UpstreamResponse {
	return &model.UpstreamResponse{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        []byte(body),
	}
}

// ticketListBody builds a ticket list body with n tickets, newest first
func ticketListBody(n int) string {
	requests := make([]map[string]any, n)
	for i := range requests {
		requests[i] = map[string]any{
			"id":         fmt.Sprintf("1000%d", i),
			"display_id": fmt.Sprintf("%d", 500-i),
			"subject":    fmt.Sprintf("Ticket subject %d", i),
			"status":     map[string]any{"name": "Open"},
			"created_time": map[string]any{
				"display_value": "Oct 1, 2026 10:00 AM",
				"value":         "1790000000000",
			},
		}
	}

	raw, err := json.Marshal(map[string]any{"requests": requests})
	if err != nil {
		panic(err)
	}
	return string(raw)
}
