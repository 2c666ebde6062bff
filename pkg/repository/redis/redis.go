package redis

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
)

const defaultKeyPrefix = "deskrelay:"

// Redis stores the token pair as two plain string keys without TTL
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ interfaces.Repository = &Redis{}

type Option func(*Redis)

// WithKeyPrefix overrides the "deskrelay:" key prefix
func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// New connects to addr and checks the connection with PING
func New(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr), goerr.V("db", db))
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get token from redis", goerr.V("key", key))
	}
	return v, nil
}

func (r *Redis) put(ctx context.Context, key, value string) error {
	if value == "" {
		return goerr.New("empty token value", goerr.V("key", key))
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to put token to redis", goerr.V("key", key))
	}
	return nil
}

func (r *Redis) GetAccessToken(ctx context.Context) (string, error) {
	return r.get(ctx, model.AccessTokenKey)
}

func (r *Redis) GetRefreshToken(ctx context.Context) (string, error) {
	return r.get(ctx, model.RefreshTokenKey)
}

func (r *Redis) PutAccessToken(ctx context.Context, token string) error {
	return r.put(ctx, model.AccessTokenKey, token)
}

func (r *Redis) PutRefreshToken(ctx context.Context, token string) error {
	return r.put(ctx, model.RefreshTokenKey, token)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
