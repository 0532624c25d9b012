package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-simpler.org/env"
)

const (
	AuthModeUser = "user"
	AuthModeApp  = "app"
)

// Config holds all application configuration
type Config struct {
	Environment string `env:"APP_ENV" default:"dev"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	Server      ServerConfig
	Twitter     TwitterConfig
	Sentiment   SentimentConfig
	Valkey      ValkeyConfig
	Kafka       KafkaConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	SecretKey       string        `env:"APP_SECRET_KEY"`
	// EncryptionKey encrypts the session cookie, which carries the user's
	// access token. It must be 16, 24 or 32 bytes.
	EncryptionKey string `env:"APP_ENCRYPTION_KEY"`
}

// TwitterCredentials are the four values the search client signs requests
// with. In app mode the consumer key and secret double as the OAuth2 client.
type TwitterCredentials struct {
	ConsumerKey    string `env:"TWITTER_CONSUMER_KEY"`
	ConsumerSecret string `env:"TWITTER_CONSUMER_SECRET"`
	AccessToken    string `env:"TWITTER_ACCESS_TOKEN"`
	AccessSecret   string `env:"TWITTER_ACCESS_SECRET"`
}

type TwitterConfig struct {
	Credentials    TwitterCredentials
	AuthMode       string        `env:"TWITTER_AUTH_MODE" default:"user"`
	APIHost        string        `env:"TWITTER_API_HOST" default:"https://api.twitter.com"`
	CallbackURL    string        `env:"TWITTER_CALLBACK_URL" default:"http://localhost:8080/authorize"`
	MaxResults     int           `env:"TWITTER_MAX_RESULTS" default:"500"`
	RequestTimeout time.Duration `env:"TWITTER_REQUEST_TIMEOUT" default:"10s"`
}

type SentimentConfig struct {
	Workers       int    `env:"SENTIMENT_WORKERS" default:"1"`
	PolarityModel string `env:"SENTIMENT_POLARITY_MODEL"`
}

type ValkeyConfig struct {
	InitAddress string `env:"VALKEY_INIT_ADDRESS"`
	Password    string `env:"VALKEY_PASSWORD"`
	TLS         bool   `env:"VALKEY_TLS" default:"false"`
}

type KafkaConfig struct {
	Broker       string `env:"KAFKA_BROKER"`
	SummaryTopic string `env:"KAFKA_SUMMARY_TOPIC" default:"sentiment-summaries"`
}

// Load reads configuration from environment variables and validates it once.
// Malformed numbers, booleans and durations are errors, not defaults.
func Load() (Config, error) {
	var config Config
	if err := env.Load(&config, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.Twitter.AuthMode = strings.ToLower(config.Twitter.AuthMode)
	config.Twitter.APIHost = strings.TrimRight(config.Twitter.APIHost, "/")

	return config, validate(config)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports every missing credential by its environment variable name.
func (c TwitterCredentials) Validate() error {
	return c.validateFor(AuthModeUser)
}

// validateFor skips the access token pair in app mode, where requests carry
// an OAuth2 bearer token instead.
func (c TwitterCredentials) validateFor(mode string) error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "TWITTER_CONSUMER_KEY")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "TWITTER_CONSUMER_SECRET")
	}
	if mode != AuthModeApp {
		if c.AccessToken == "" {
			missing = append(missing, "TWITTER_ACCESS_TOKEN")
		}
		if c.AccessSecret == "" {
			missing = append(missing, "TWITTER_ACCESS_SECRET")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing twitter credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func validate(config Config) error {
	var errs []error

	if err := config.Twitter.Credentials.validateFor(config.Twitter.AuthMode); err != nil {
		errs = append(errs, err)
	}
	if config.Twitter.AuthMode != AuthModeUser && config.Twitter.AuthMode != AuthModeApp {
		errs = append(errs, fmt.Errorf("TWITTER_AUTH_MODE must be %q or %q, got %q",
			AuthModeUser, AuthModeApp, config.Twitter.AuthMode))
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", config.Server.Port))
	}
	if config.Twitter.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("TWITTER_MAX_RESULTS must be positive, got %d", config.Twitter.MaxResults))
	}
	if config.Sentiment.Workers < 1 {
		errs = append(errs, fmt.Errorf("SENTIMENT_WORKERS must be positive, got %d", config.Sentiment.Workers))
	}

	return errors.Join(errs...)
}

// ValidateWeb checks the settings only the web server needs.
func (c Config) ValidateWeb() error {
	var errs []error

	if c.Server.SecretKey == "" {
		errs = append(errs, errors.New("missing APP_SECRET_KEY"))
	} else if c.IsProduction() && len(c.Server.SecretKey) < 32 {
		errs = append(errs, errors.New("APP_SECRET_KEY must be at least 32 bytes in production"))
	}

	switch len(c.Server.EncryptionKey) {
	case 16, 24, 32:
	case 0:
		errs = append(errs, errors.New("missing APP_ENCRYPTION_KEY"))
	default:
		errs = append(errs, fmt.Errorf("APP_ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", len(c.Server.EncryptionKey)))
	}

	return errors.Join(errs...)
}
