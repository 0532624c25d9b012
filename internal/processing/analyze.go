package processing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/tweetsentiment/internal/models"
	"github.com/spacesedan/tweetsentiment/internal/sentiment"
)

// TweetSource returns up to maxCount tweets for a query in API order.
type TweetSource interface {
	Fetch(ctx context.Context, query string, maxCount int) ([]models.Tweet, error)
}

// SummaryPublisher receives one event per completed analysis.
type SummaryPublisher interface {
	Publish(event models.SummaryEvent) error
}

// Report is everything a page or terminal needs to show one analysis.
type Report struct {
	ID         string
	Query      string
	SearchType models.SearchType
	Fetched    int
	Result     *sentiment.AggregateResult
	Summary    sentiment.Summary
	CreatedAt  time.Time
}

type Analyzer struct {
	source    TweetSource
	scorer    sentiment.TextScorer
	publisher SummaryPublisher
	workers   int
	now       func() time.Time
}

type AnalyzerOption func(*Analyzer)

func WithPublisher(p SummaryPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.publisher = p }
}

func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) { a.workers = n }
}

func NewAnalyzer(source TweetSource, scorer sentiment.TextScorer, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		source:  source,
		scorer:  scorer,
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithSource returns a copy of the analyzer that fetches from source, used to
// search on behalf of a signed-in user.
func (a *Analyzer) WithSource(source TweetSource) *Analyzer {
	clone := *a
	clone.source = source
	return &clone
}

// Analyze fetches tweets for the request, drops duplicate texts and scores
// the rest. Fetch errors are returned before any scoring happens.
func (a *Analyzer) Analyze(ctx context.Context, req models.SearchRequest) (*Report, error) {
	query, err := req.Query()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	start := a.now()
	logger := slog.With(slog.String("analysis_id", id), slog.String("query", query))

	tweets, err := a.source.Fetch(ctx, query, req.Count)
	if err != nil {
		logger.Warn("[Analyzer] Failed to fetch tweets", slog.String("error", err.Error()))
		return nil, err
	}

	texts := models.DedupeTexts(models.Texts(tweets))

	result, err := sentiment.Aggregate(ctx, a.scorer, texts, sentiment.WithWorkers(a.workers))
	if err != nil {
		logger.Error("[Analyzer] Failed to score tweets", slog.String("error", err.Error()))
		return nil, err
	}

	report := &Report{
		ID:         id,
		Query:      query,
		SearchType: req.SearchType,
		Fetched:    len(tweets),
		Result:     result,
		Summary:    sentiment.Summarize(result),
		CreatedAt:  start,
	}

	logger.Info("[Analyzer] Analysis complete",
		slog.Int("fetched", len(tweets)),
		slog.Int("scored", result.Total()),
		slog.Duration("elapsed", a.now().Sub(start)))

	a.publish(logger, report)
	return report, nil
}

// publish is best effort; a failure never changes the analysis outcome.
func (a *Analyzer) publish(logger *slog.Logger, r *Report) {
	if a.publisher == nil {
		return
	}

	if err := a.publisher.Publish(SummaryEventFromReport(r)); err != nil {
		logger.Warn("[Analyzer] Failed to publish summary event",
			slog.String("error", err.Error()))
	}
}

func SummaryEventFromReport(r *Report) models.SummaryEvent {
	return models.SummaryEvent{
		AnalysisID:      r.ID,
		Query:           r.Query,
		SearchType:      r.SearchType,
		Total:           r.Summary.Total,
		NegativeCount:   r.Summary.NegativeCount,
		NeutralCount:    r.Summary.NeutralCount,
		PositiveCount:   r.Summary.PositiveCount,
		NegativePercent: r.Summary.NegativePercent,
		NeutralPercent:  r.Summary.NeutralPercent,
		PositivePercent: r.Summary.PositivePercent,
		PolaritySum:     r.Summary.PolaritySum,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}
