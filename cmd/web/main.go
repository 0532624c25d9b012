package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/auth"
	"github.com/spacesedan/tweetsentiment/internal/clients"
	"github.com/spacesedan/tweetsentiment/internal/clients/kafka_client"
	"github.com/spacesedan/tweetsentiment/internal/logging"
	"github.com/spacesedan/tweetsentiment/internal/monitoring"
	"github.com/spacesedan/tweetsentiment/internal/processing"
	"github.com/spacesedan/tweetsentiment/internal/sentiment"
	"github.com/spacesedan/tweetsentiment/internal/sentiment/transformer"
	"github.com/spacesedan/tweetsentiment/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	logging.InitLogger(cfg.LogLevel)
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.ValidateWeb(); err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("[Main] Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := monitoring.NewHealth()

	twitterClient, err := clients.NewTwitterClient(cfg.Twitter)
	if err != nil {
		return err
	}

	scorer, release, err := newScorer(cfg.Sentiment)
	if err != nil {
		return err
	}
	defer release()

	opts := []processing.AnalyzerOption{processing.WithWorkers(cfg.Sentiment.Workers)}
	if cfg.Kafka.Broker != "" {
		publisher, err := kafka_client.NewSummaryPublisher(cfg.Kafka)
		if err != nil {
			return err
		}
		defer publisher.Close()
		go health.Monitor(ctx, "kafka", monitoring.HEALTHCHECK_INTERVAL, publisher.Ping)
		opts = append(opts, processing.WithPublisher(publisher))
	} else {
		slog.Info("[Main] KAFKA_BROKER not set, summary events disabled")
	}

	var tokenStore auth.TokenStore
	if cfg.Valkey.InitAddress != "" {
		valkeyClient, err := clients.NewValkeyClient(cfg.Valkey)
		if err != nil {
			return err
		}
		defer valkeyClient.Close()
		go health.Monitor(ctx, "valkey", monitoring.HEALTHCHECK_INTERVAL, valkeyClient.Ping)
		tokenStore = auth.NewValkeyTokenStore(valkeyClient)
	} else {
		slog.Info("[Main] VALKEY_INIT_ADDRESS not set, keeping sign-in tokens in memory")
		tokenStore = auth.NewMemoryTokenStore()
	}

	srv, err := server.NewServer(cfg, server.Dependencies{
		Analyzer: processing.NewAnalyzer(twitterClient, scorer, opts...),
		Login:    auth.NewTwitterLogin(cfg.Twitter, tokenStore),
		UserClient: func(token, secret string) server.UserClient {
			return twitterClient.WithUserToken(token, secret)
		},
		Health:     health,
		MaxResults: cfg.Twitter.MaxResults,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[Main] Server listening", slog.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("[Main] Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// newScorer loads the transformer polarity model when one is configured and
// falls back to naive Bayes otherwise.
func newScorer(cfg config.SentimentConfig) (*sentiment.Scorer, func(), error) {
	if cfg.PolarityModel != "" {
		return transformer.NewScorer(cfg.PolarityModel)
	}
	scorer, err := sentiment.NewDefaultScorer()
	return scorer, func() {}, err
}
