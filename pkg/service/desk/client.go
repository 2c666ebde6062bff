package desk

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/utils/safe"
)

const (
	DefaultTimeout = 30 * time.Second

	maxBodySize = 32 << 20
)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
}

// Option is a functional option for desk clients
type Option func(*options)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout sets the timeout of outbound calls. It also applies to a client given by
// WithHTTPClient; the caller's client is not modified.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.timeout > 0 {
		c := *o.httpClient
		c.Timeout = o.timeout
		o.httpClient = &c
	}
	return o
}

type ticketClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTicketClient creates a client of the ticketing API rooted at baseURL, e.g.
// https://sdpondemand.manageengine.com/app/itdesk/api/v3
func NewTicketClient(baseURL string, opts ...Option) (TicketService, error) {
	if baseURL == "" {
		return nil, goerr.New("ticket API base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid ticket API base URL", goerr.V("url", baseURL))
	}

	o := newOptions(opts)
	return &ticketClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
	}, nil
}

func (c *ticketClient) ListRequests(ctx context.Context, accessToken string, listInfo model.ListInfo) (*model.UpstreamResponse, error) {
	inputData, err := listInfo.InputData()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode list_info")
	}

	q := url.Values{}
	q.Set("input_data", inputData)

	return get(ctx, c.httpClient, c.baseURL+"/requests?"+q.Encode(), accessToken)
}

func (c *ticketClient) GetRequest(ctx context.Context, accessToken, id string) (*model.UpstreamResponse, error) {
	if id == "" {
		return nil, goerr.New("request ID is required")
	}

	return get(ctx, c.httpClient, c.baseURL+"/requests/"+url.PathEscape(id), accessToken)
}

type approvalClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewApprovalClient creates a client of the approval API served at endpoint
func NewApprovalClient(endpoint string, opts ...Option) (ApprovalService, error) {
	if endpoint == "" {
		return nil, goerr.New("approval API endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, goerr.Wrap(err, "invalid approval API endpoint", goerr.V("url", endpoint))
	}

	o := newOptions(opts)
	return &approvalClient{
		endpoint:   endpoint,
		httpClient: o.httpClient,
	}, nil
}

func (c *approvalClient) ListApprovals(ctx context.Context, accessToken, email string) (*model.UpstreamResponse, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid approval API endpoint", goerr.V("url", c.endpoint))
	}

	q := u.Query()
	q.Set(ApprovalEmailParam, email)
	u.RawQuery = q.Encode()

	return get(ctx, c.httpClient, u.String(), accessToken)
}

func get(ctx context.Context, httpClient *http.Client, target, accessToken string) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", target))
	}
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call downstream API", goerr.V("url", target))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read downstream response", goerr.V("url", target), goerr.V("status", resp.StatusCode))
	}

	return &model.UpstreamResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
