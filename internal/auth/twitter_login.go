package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/spacesedan/tweetsentiment/config"
)

const REQUEST_TOKEN_TTL = 10 * time.Minute

var ErrLoginDenied = errors.New("sign in was cancelled")

// UserToken is the access token a signed-in user granted to the app.
type UserToken struct {
	Token  string
	Secret string
}

// TwitterLogin drives the three-legged "Sign in with Twitter" OAuth1 flow.
type TwitterLogin struct {
	oauth *oauth1.Config
	store TokenStore
}

func NewTwitterLogin(cfg config.TwitterConfig, store TokenStore) *TwitterLogin {
	return &TwitterLogin{
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.Credentials.ConsumerKey,
			ConsumerSecret: cfg.Credentials.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: cfg.APIHost + "/oauth/request_token",
				AuthorizeURL:    cfg.APIHost + "/oauth/authenticate",
				AccessTokenURL:  cfg.APIHost + "/oauth/access_token",
			},
		},
		store: store,
	}
}

// Begin obtains a request token and returns the URL to send the user to.
func (l *TwitterLogin) Begin(ctx context.Context) (string, error) {
	requestToken, requestSecret, err := l.oauth.RequestToken()
	if err != nil {
		return "", fmt.Errorf("failed to obtain request token: %w", err)
	}

	if err := l.store.Put(ctx, requestToken, requestSecret, REQUEST_TOKEN_TTL); err != nil {
		return "", fmt.Errorf("failed to store request token: %w", err)
	}

	authURL, err := l.oauth.AuthorizationURL(requestToken)
	if err != nil {
		return "", fmt.Errorf("failed to build authorization url: %w", err)
	}

	slog.Debug("[TwitterLogin] Redirecting to twitter for sign in")
	return authURL.String(), nil
}

// Complete handles the callback request and exchanges the verifier for the
// user's access token.
func (l *TwitterLogin) Complete(ctx context.Context, r *http.Request) (UserToken, error) {
	if r.URL.Query().Get("denied") != "" {
		return UserToken{}, ErrLoginDenied
	}

	requestToken, verifier, err := oauth1.ParseAuthorizationCallback(r)
	if err != nil {
		return UserToken{}, fmt.Errorf("invalid authorization callback: %w", err)
	}

	requestSecret, err := l.store.Take(ctx, requestToken)
	if err != nil {
		return UserToken{}, err
	}

	accessToken, accessSecret, err := l.oauth.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return UserToken{}, fmt.Errorf("failed to obtain access token: %w", err)
	}

	return UserToken{Token: accessToken, Secret: accessSecret}, nil
}
