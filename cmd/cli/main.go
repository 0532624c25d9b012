package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/clients"
	"github.com/spacesedan/tweetsentiment/internal/logging"
	"github.com/spacesedan/tweetsentiment/internal/models"
	"github.com/spacesedan/tweetsentiment/internal/processing"
	"github.com/spacesedan/tweetsentiment/internal/sentiment"
)

func main() {
	query := flag.String("query", "", "search query (required)")
	searchType := flag.String("type", string(models.SearchKeyword), "search type: keyword, hashtag or user")
	count := flag.Int("count", 100, "number of tweets to fetch")
	out := flag.String("out", "tweets.txt", "file the fetched tweets are written to")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	logging.InitLogger(cfg.LogLevel)
	if err != nil {
		slog.Error("[CLI] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	twitterClient, err := clients.NewTwitterClient(cfg.Twitter)
	if err != nil {
		slog.Error("[CLI] Failed to create twitter client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.Sentiment.PolarityModel != "" {
		slog.Info("[CLI] SENTIMENT_POLARITY_MODEL is only used by the web server, scoring with naive Bayes")
	}
	scorer, err := sentiment.NewDefaultScorer()
	if err != nil {
		slog.Error("[CLI] Failed to load sentiment models", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &cli{
		source:     twitterClient,
		scorer:     scorer,
		maxResults: cfg.Twitter.MaxResults,
		workers:    cfg.Sentiment.Workers,
		stdout:     os.Stdout,
	}

	req := models.SearchRequest{Search: *query, SearchType: models.SearchType(*searchType), Count: *count}
	if err := app.run(ctx, req, *out); err != nil {
		slog.Error("[CLI] Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type cli struct {
	source     processing.TweetSource
	scorer     sentiment.TextScorer
	maxResults int
	workers    int
	stdout     io.Writer
}

// run fetches, dumps and scores the tweets for req, then prints the summary.
func (c *cli) run(ctx context.Context, req models.SearchRequest, out string) error {
	if err := req.Validate(c.maxResults); err != nil {
		return err
	}
	q, err := req.Query()
	if err != nil {
		return err
	}

	tweets, err := c.source.Fetch(ctx, q, req.Count)
	if err != nil {
		return err
	}
	texts := models.DedupeTexts(models.Texts(tweets))

	if err := writeDump(out, texts); err != nil {
		return err
	}
	slog.Info("[CLI] Wrote tweets", slog.String("file", out), slog.Int("count", len(texts)))

	result, err := sentiment.Aggregate(ctx, c.scorer, texts, sentiment.WithWorkers(c.workers))
	if err != nil {
		return err
	}

	return sentiment.WriteSummary(c.stdout, sentiment.Summarize(result))
}

// writeDump writes each text followed by a blank line.
func writeDump(path string, texts []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(formatDump(texts)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatDump(texts []string) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	return b.String()
}
