package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/domain/interfaces"
	"github.com/secmon-lab/deskrelay/pkg/domain/model"
)

// Memory keeps the token pair in process memory. Values are lost on restart, so it is meant for
// development and tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		values: make(map[string]string),
	}
}

func (m *Memory) get(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

func (m *Memory) put(key, value string) error {
	if value == "" {
		return goerr.New("empty token value", goerr.V("key", key))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) GetAccessToken(ctx context.Context) (string, error) {
	return m.get(model.AccessTokenKey), nil
}

func (m *Memory) GetRefreshToken(ctx context.Context) (string, error) {
	return m.get(model.RefreshTokenKey), nil
}

func (m *Memory) PutAccessToken(ctx context.Context, token string) error {
	return m.put(model.AccessTokenKey, token)
}

func (m *Memory) PutRefreshToken(ctx context.Context, token string) error {
	return m.put(model.RefreshTokenKey, token)
}

func (m *Memory) Close() error {
	return nil
}
