package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/tweetsentiment/internal/models"
	"github.com/spacesedan/tweetsentiment/internal/sentiment"
)

type stubSource struct {
	tweets []models.Tweet
	err    error
	query  string
	count  int
}

func (s *stubSource) Fetch(_ context.Context, query string, count int) ([]models.Tweet, error) {
	s.query, s.count = query, count
	return s.tweets, s.err
}

// wordScorer marks "good" positive and "bad" negative.
type wordScorer struct{}

func (wordScorer) Score(text string) (sentiment.ScoreResult, error) {
	r := sentiment.ScoreResult{Text: text}
	switch {
	case strings.Contains(text, "good"):
		r.Positivity, r.Polarity = 0.6, 0.5
	case strings.Contains(text, "bad"):
		r.Negativity, r.Polarity = 0.6, -0.25
	default:
		r.Neutrality = 1
	}
	return r, nil
}

func newTestCLI(source *stubSource) (*cli, *bytes.Buffer) {
	var stdout bytes.Buffer
	return &cli{
		source:     source,
		scorer:     wordScorer{},
		maxResults: 500,
		workers:    1,
		stdout:     &stdout,
	}, &stdout
}

func TestRun_DumpsAndSummarizes(t *testing.T) {
	source := &stubSource{tweets: []models.Tweet{
		{ID: "1", Text: "good game"},
		{ID: "2", Text: "bad call"},
		{ID: "3", Text: "good game"},
		{ID: "4", Text: "half time"},
	}}
	app, stdout := newTestCLI(source)
	out := filepath.Join(t.TempDir(), "tweets.txt")

	err := app.run(context.Background(), models.SearchRequest{
		Search:     "golang",
		SearchType: models.SearchHashtag,
		Count:      4,
	}, out)
	require.NoError(t, err)

	assert.Equal(t, "#golang", source.query)
	assert.Equal(t, 4, source.count)

	dump, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "good game\n\nbad call\n\nhalf time\n\n", string(dump))

	assert.Equal(t,
		"Positive: 1 (33.3%)\nNeutral: 1 (33.3%)\nNegative: 1 (33.3%)\nPolarity: 0.2500\n",
		stdout.String())
}

func TestRun_InvalidRequest(t *testing.T) {
	source := &stubSource{}
	app, stdout := newTestCLI(source)
	out := filepath.Join(t.TempDir(), "tweets.txt")

	err := app.run(context.Background(), models.SearchRequest{Search: "cats", Count: 501}, out)
	assert.ErrorIs(t, err, models.ErrInvalidSearch)
	assert.Empty(t, source.query)
	assert.Empty(t, stdout.String())
	assert.NoFileExists(t, out)
}

func TestRun_FetchError(t *testing.T) {
	boom := errors.New("rate limited")
	app, stdout := newTestCLI(&stubSource{err: boom})
	out := filepath.Join(t.TempDir(), "tweets.txt")

	err := app.run(context.Background(), models.SearchRequest{Search: "cats", Count: 10}, out)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, stdout.String())
	assert.NoFileExists(t, out)
}

func TestFormatDump(t *testing.T) {
	assert.Equal(t, "first\n\nsecond\n\n", formatDump([]string{"first", "second"}))
	assert.Empty(t, formatDump(nil))
}

func TestWriteDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.txt")

	require.NoError(t, writeDump(path, []string{"a tweet", "another\nwith a newline"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a tweet\n\nanother\nwith a newline\n\n", string(data))
}
