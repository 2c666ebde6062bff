package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for user info cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached user with expiration
type cacheEntry struct {
	user      *User
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for user info cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	return newClient(token, nil, opts...)
}

func newClient(token string, apiOpts []slack.Option, opts ...Option) (*client, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:      slack.New(token, apiOpts...),
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetUserInfo retrieves user information for the given user ID with caching
func (c *client) GetUserInfo(ctx context.Context, userID string) (*User, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.user, nil
	}

	info, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}

	user := &User{
		ID:       info.ID,
		Name:     info.Name,
		RealName: info.RealName,
		Email:    info.Profile.Email,
	}

	c.mu.Lock()
	c.cache[userID] = cacheEntry{
		user:      user,
		expiresAt: now.Add(c.cacheTTL),
	}
	c.mu.Unlock()

	return user, nil
}

// PostMessage posts a text message to a channel
func (c *client) PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error) {
	options := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID), goerr.V("thread_ts", threadTS))
	}

	return ts, nil
}
