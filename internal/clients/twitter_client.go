package clients

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/models"
)

// TwitterClient runs recent searches against the Twitter API v2.
type TwitterClient struct {
	config  config.TwitterConfig
	api     *twitter.Client
	backoff time.Duration
}

// requests are signed by the http.Client transport, not by go-twitter
type transportAuthorizer struct{}

func (transportAuthorizer) Add(*http.Request) {}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", USER_AGENT)
	return t.base.RoundTrip(req)
}

func baseHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
	}
}

// NewTwitterClient builds a client for the configured auth mode. User mode signs
// every request with OAuth1 using the configured access token; app mode uses
// an OAuth2 client-credentials bearer token.
func NewTwitterClient(cfg config.TwitterConfig) (*TwitterClient, error) {
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	var httpClient *http.Client
	switch cfg.AuthMode {
	case config.AuthModeApp:
		httpClient = appHTTPClient(cfg)
	case config.AuthModeUser, "":
		httpClient = userHTTPClient(cfg, cfg.Credentials.AccessToken, cfg.Credentials.AccessSecret)
	default:
		return nil, fmt.Errorf("unknown twitter auth mode %q", cfg.AuthMode)
	}

	slog.Info("[TwitterClient] Client ready",
		slog.String("auth_mode", cfg.AuthMode),
		slog.String("host", cfg.APIHost))

	return &TwitterClient{
		config:  cfg,
		api:     newAPI(cfg, httpClient),
		backoff: INITIAL_BACKOFF,
	}, nil
}

func newAPI(cfg config.TwitterConfig, httpClient *http.Client) *twitter.Client {
	return &twitter.Client{
		Authorizer: transportAuthorizer{},
		Client:     httpClient,
		Host:       cfg.APIHost,
	}
}

func userHTTPClient(cfg config.TwitterConfig, token, secret string) *http.Client {
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, baseHTTPClient(cfg.RequestTimeout))
	oauthConf := oauth1.NewConfig(cfg.Credentials.ConsumerKey, cfg.Credentials.ConsumerSecret)

	client := oauthConf.Client(ctx, oauth1.NewToken(token, secret))
	client.Timeout = cfg.RequestTimeout
	return client
}

func appHTTPClient(cfg config.TwitterConfig) *http.Client {
	oauthConf := &clientcredentials.Config{
		ClientID:     cfg.Credentials.ConsumerKey,
		ClientSecret: cfg.Credentials.ConsumerSecret,
		TokenURL:     cfg.APIHost + TWITTER_TOKEN_PATH,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseHTTPClient(cfg.RequestTimeout))
	client := oauthConf.Client(ctx)
	client.Timeout = cfg.RequestTimeout
	return client
}

// WithUserToken returns a client that searches on behalf of a signed-in user.
func (tc *TwitterClient) WithUserToken(token, secret string) *TwitterClient {
	return &TwitterClient{
		config:  tc.config,
		api:     newAPI(tc.config, userHTTPClient(tc.config, token, secret)),
		backoff: tc.backoff,
	}
}

// ScreenName looks up the account the client is signed in as.
func (tc *TwitterClient) ScreenName(ctx context.Context) (string, error) {
	resp, err := tc.api.AuthUserLookup(ctx, twitter.UserLookupOpts{})
	if err != nil {
		return "", classifyError("users/me", err)
	}
	if resp.Raw == nil || len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
		return "", &FetchError{Query: "users/me", Kind: ErrUpstream, Err: errors.New("empty user lookup response")}
	}
	return resp.Raw.Users[0].UserName, nil
}

// Fetch returns up to maxCount tweets for the query in API order. Pages are
// requested until maxCount is reached or the API reports no next page.
func (tc *TwitterClient) Fetch(ctx context.Context, query string, maxCount int) ([]models.Tweet, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	start := time.Now()
	tweets := make([]models.Tweet, 0, maxCount)
	nextToken := ""

	for len(tweets) < maxCount {
		opts := twitter.TweetRecentSearchOpts{
			MaxResults:  pageSize(maxCount - len(tweets)),
			NextToken:   nextToken,
			TweetFields: []twitter.TweetField{twitter.TweetFieldID, twitter.TweetFieldText},
		}

		resp, err := tc.searchWithRetry(ctx, query, opts)
		if err != nil {
			return nil, err
		}

		if resp.Raw != nil {
			for _, t := range resp.Raw.Tweets {
				if t == nil {
					continue
				}
				tweets = append(tweets, models.Tweet{ID: t.ID, Text: html.UnescapeString(t.Text)})
				if len(tweets) == maxCount {
					break
				}
			}
		}

		if resp.Meta == nil || resp.Meta.NextToken == "" {
			break
		}
		nextToken = resp.Meta.NextToken
	}

	slog.Info("[TwitterClient] Fetched tweets",
		slog.String("query", query),
		slog.Int("count", len(tweets)),
		slog.Duration("elapsed", time.Since(start)))

	return tweets, nil
}

func pageSize(remaining int) int {
	return min(TWITTER_MAX_PAGE_SIZE, max(TWITTER_MIN_PAGE_SIZE, remaining))
}

// searchWithRetry retries upstream failures with exponential backoff. Rate
// limit and auth failures are returned at once.
func (tc *TwitterClient) searchWithRetry(ctx context.Context, query string, opts twitter.TweetRecentSearchOpts) (*twitter.TweetRecentSearchResponse, error) {
	backoff := tc.backoff

	var fetchErr *FetchError
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		resp, err := tc.api.TweetRecentSearch(ctx, query, opts)
		if err == nil {
			return resp, nil
		}

		fetchErr = classifyError(query, err)
		if !errors.Is(fetchErr, ErrUpstream) || ctx.Err() != nil {
			return nil, fetchErr
		}

		slog.Warn("[TwitterClient] Search failed, retrying",
			slog.String("query", query),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		if attempt == MAX_RETRIES {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{Query: query, Kind: ErrUpstream, Err: ctx.Err()}
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	return nil, fetchErr
}

func classifyError(query string, err error) *FetchError {
	var errResp *twitter.ErrorResponse
	if errors.As(err, &errResp) {
		return &FetchError{Query: query, StatusCode: errResp.StatusCode, Kind: kindForStatus(errResp.StatusCode), Err: err}
	}

	var httpErr *twitter.HTTPError
	if errors.As(err, &httpErr) {
		return &FetchError{Query: query, StatusCode: httpErr.StatusCode, Kind: kindForStatus(httpErr.StatusCode), Err: err}
	}

	var oauthErr *oauth2.RetrieveError
	if errors.As(err, &oauthErr) && oauthErr.Response != nil {
		return &FetchError{Query: query, StatusCode: oauthErr.Response.StatusCode, Kind: kindForStatus(oauthErr.Response.StatusCode), Err: err}
	}

	return &FetchError{Query: query, Kind: ErrUpstream, Err: err}
}
