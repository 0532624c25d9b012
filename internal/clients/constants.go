package clients

import "time"

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 8 * time.Second
	USER_AGENT      = "tweetsentiment-client/1.0 (+https://github.com/spacesedan/tweetsentiment)"

	// recent search accepts 10..100 results per page
	TWITTER_MIN_PAGE_SIZE = 10
	TWITTER_MAX_PAGE_SIZE = 100
	TWITTER_TOKEN_PATH    = "/oauth2/token"
)
