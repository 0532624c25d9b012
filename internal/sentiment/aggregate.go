package sentiment

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregateResult holds one analysis worth of scored texts, bucketed by
// classification in input order. It is never modified after Aggregate returns.
type AggregateResult struct {
	total       int
	negative    []ScoreResult
	neutral     []ScoreResult
	positive    []ScoreResult
	polaritySum float64
}

type aggregateOptions struct {
	workers int
}

type AggregateOption func(*aggregateOptions)

// WithWorkers scores up to n texts concurrently. Bucket order and the
// polarity sum are the same as with sequential scoring.
func WithWorkers(n int) AggregateOption {
	return func(o *aggregateOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Aggregate scores every text and buckets the results. The first text that
// fails to score aborts the batch: the result is nil and the error is a
// *ScoringError naming the failing input.
func Aggregate(ctx context.Context, scorer TextScorer, texts []string, opts ...AggregateOption) (*AggregateResult, error) {
	options := aggregateOptions{workers: 1}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()

	var (
		scores []ScoreResult
		err    error
	)
	if options.workers > 1 && len(texts) > 1 {
		scores, err = scoreConcurrently(ctx, scorer, texts, options.workers)
	} else {
		scores, err = scoreSequentially(ctx, scorer, texts)
	}
	if err != nil {
		return nil, err
	}

	result := &AggregateResult{total: len(texts)}
	for _, score := range scores {
		result.polaritySum += score.Polarity

		switch score.Classification() {
		case Negative:
			result.negative = append(result.negative, score)
		case Positive:
			result.positive = append(result.positive, score)
		default:
			result.neutral = append(result.neutral, score)
		}
	}

	slog.Debug("[Aggregator] Aggregated sentiment",
		slog.Int("total", result.total),
		slog.Int("workers", options.workers),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

func scoreSequentially(ctx context.Context, scorer TextScorer, texts []string) ([]ScoreResult, error) {
	scores := make([]ScoreResult, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, err := scorer.Score(text)
		if err != nil {
			return nil, &ScoringError{Index: i, Err: err}
		}
		scores = append(scores, score)
	}
	return scores, nil
}

func scoreConcurrently(ctx context.Context, scorer TextScorer, texts []string, workers int) ([]ScoreResult, error) {
	scores := make([]ScoreResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			score, err := scorer.Score(text)
			if err != nil {
				return &ScoringError{Index: i, Err: err}
			}
			scores[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *AggregateResult) Total() int { return r.total }

func (r *AggregateResult) NegativeCount() int { return len(r.negative) }
func (r *AggregateResult) NeutralCount() int  { return len(r.neutral) }
func (r *AggregateResult) PositiveCount() int { return len(r.positive) }

// Percentages are 0 when the result holds no inputs.
func (r *AggregateResult) NegativePercent() float64 { return percentage(len(r.negative), r.total) }
func (r *AggregateResult) NeutralPercent() float64  { return percentage(len(r.neutral), r.total) }
func (r *AggregateResult) PositivePercent() float64 { return percentage(len(r.positive), r.total) }

func (r *AggregateResult) PolaritySum() float64 { return r.polaritySum }

func (r *AggregateResult) Negative() []ScoreResult { return append([]ScoreResult(nil), r.negative...) }
func (r *AggregateResult) Neutral() []ScoreResult  { return append([]ScoreResult(nil), r.neutral...) }
func (r *AggregateResult) Positive() []ScoreResult { return append([]ScoreResult(nil), r.positive...) }

func (r *AggregateResult) Count(c Classification) int {
	switch c {
	case Negative:
		return r.NegativeCount()
	case Neutral:
		return r.NeutralCount()
	case Positive:
		return r.PositiveCount()
	default:
		return 0
	}
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
