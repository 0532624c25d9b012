package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spacesedan/tweetsentiment/internal/clients"
)

var ErrTokenNotFound = errors.New("request token not found or expired")

const REQUEST_TOKEN_KEY_PREFIX = "oauth:request_token:"

// TokenStore keeps OAuth1 request-token secrets between the login redirect and
// the callback. Take removes the entry so a callback can only be used once.
type TokenStore interface {
	Put(ctx context.Context, token, secret string, ttl time.Duration) error
	Take(ctx context.Context, token string) (string, error)
}

type memoryEntry struct {
	secret  string
	expires time.Time
}

// MemoryTokenStore is used when no valkey address is configured. Entries only
// live as long as the process.
type MemoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryTokenStore) Put(_ context.Context, token, secret string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[token] = memoryEntry{secret: secret, expires: now.Add(ttl)}
	return nil
}

func (m *MemoryTokenStore) Take(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(m.entries, token)

	if m.now().After(e.expires) {
		return "", ErrTokenNotFound
	}
	return e.secret, nil
}

type keyValueStore interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	GetAndDelete(ctx context.Context, key string) (string, error)
}

// ValkeyTokenStore shares request tokens between server instances.
type ValkeyTokenStore struct {
	kv keyValueStore
}

func NewValkeyTokenStore(kv keyValueStore) *ValkeyTokenStore {
	return &ValkeyTokenStore{kv: kv}
}

func (v *ValkeyTokenStore) Put(ctx context.Context, token, secret string, ttl time.Duration) error {
	return v.kv.SetWithTTL(ctx, REQUEST_TOKEN_KEY_PREFIX+token, secret, ttl)
}

func (v *ValkeyTokenStore) Take(ctx context.Context, token string) (string, error) {
	secret, err := v.kv.GetAndDelete(ctx, REQUEST_TOKEN_KEY_PREFIX+token)
	if errors.Is(err, clients.ErrKeyNotFound) {
		return "", ErrTokenNotFound
	}
	return secret, err
}
