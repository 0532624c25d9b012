package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/clients"
)

func TestMemoryTokenStore_TakeOnce(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok", "secret", time.Minute))

	secret, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "secret", secret)

	_, err = store.Take(ctx, "tok")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTokenStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "old", "s1", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := store.Take(ctx, "old")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Put(ctx, "stale", "s2", time.Minute))
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Put(ctx, "fresh", "s3", time.Minute))
	assert.NotContains(t, store.entries, "stale")
}

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (f *fakeKV) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) GetAndDelete(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", clients.ErrKeyNotFound
	}
	delete(f.values, key)
	return v, nil
}

func TestValkeyTokenStore(t *testing.T) {
	kv := &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
	store := NewValkeyTokenStore(kv)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok", "secret", REQUEST_TOKEN_TTL))
	assert.Equal(t, "secret", kv.values[REQUEST_TOKEN_KEY_PREFIX+"tok"])
	assert.Equal(t, REQUEST_TOKEN_TTL, kv.ttls[REQUEST_TOKEN_KEY_PREFIX+"tok"])

	secret, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "secret", secret)

	_, err = store.Take(ctx, "tok")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func newOAuthServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "oauth_callback=")
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true"))
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_token="req-token"`)
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_verifier="verifier"`)
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=user-token&oauth_token_secret=user-secret&screen_name=gopher"))
	})
	return httptest.NewServer(mux)
}

func testLoginConfig(host string) config.TwitterConfig {
	return config.TwitterConfig{
		Credentials: config.TwitterCredentials{ConsumerKey: "ck", ConsumerSecret: "cs"},
		APIHost:     host,
		CallbackURL: "http://localhost:8080/authorize",
	}
}

func TestTwitterLogin_RoundTrip(t *testing.T) {
	server := newOAuthServer(t)
	defer server.Close()

	store := NewMemoryTokenStore()
	login := NewTwitterLogin(testLoginConfig(server.URL), store)
	ctx := context.Background()

	authURL, err := login.Begin(ctx)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authenticate", parsed.Path)
	assert.Equal(t, "req-token", parsed.Query().Get("oauth_token"))

	callback := httptest.NewRequest(http.MethodGet, "/authorize?oauth_token=req-token&oauth_verifier=verifier", nil)
	token, err := login.Complete(ctx, callback)
	require.NoError(t, err)
	assert.Equal(t, UserToken{Token: "user-token", Secret: "user-secret"}, token)

	// the request token is single use
	_, err = login.Complete(ctx, callback)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTwitterLogin_Denied(t *testing.T) {
	login := NewTwitterLogin(testLoginConfig("http://localhost"), NewMemoryTokenStore())

	req := httptest.NewRequest(http.MethodGet, "/authorize?denied=req-token", nil)
	_, err := login.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrLoginDenied)
}

func TestTwitterLogin_UnknownRequestToken(t *testing.T) {
	login := NewTwitterLogin(testLoginConfig("http://localhost"), NewMemoryTokenStore())

	req := httptest.NewRequest(http.MethodGet, "/authorize?oauth_token=nope&oauth_verifier=v", nil)
	_, err := login.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
