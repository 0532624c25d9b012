package sentiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPolarity struct {
	value float64
	err   error
}

func (s stubPolarity) Polarity(string) (float64, error) { return s.value, s.err }

func TestScorer_Classifications(t *testing.T) {
	scorer := NewScorer(NewVaderScorer(), stubPolarity{})

	tests := []struct {
		text string
		want Classification
	}{
		{"I love this game", Positive},
		{"I hate this", Negative},
		{"it is a game", Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result, err := scorer.Score(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.text, result.Text)
			assert.Equal(t, tt.want, result.Classification())
		})
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer, err := NewDefaultScorer()
	require.NoError(t, err)

	text := "What a great match, the defence was awful though https://t.co/abc123"
	first, err := scorer.Score(text)
	require.NoError(t, err)
	second, err := scorer.Score(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

type recordingPolarity struct{ seen []string }

func (r *recordingPolarity) Polarity(text string) (float64, error) {
	r.seen = append(r.seen, text)
	return 0, nil
}

func TestScorer_LexiconSeesRawText(t *testing.T) {
	polarity := &recordingPolarity{}
	vader := NewVaderScorer()
	scorer := NewScorer(vader, polarity)

	text := "GREAT  match!!! https://t.co/abc123"
	result, err := scorer.Score(text)
	require.NoError(t, err)

	raw := vader.Scores(text)
	assert.Equal(t, raw.Negative, result.Negativity)
	assert.Equal(t, raw.Neutral, result.Neutrality)
	assert.Equal(t, raw.Positive, result.Positivity)
	assert.Equal(t, raw.Compound, result.Compound)
	assert.Equal(t, []string{"GREAT match!!!"}, polarity.seen)
}

func TestScorer_InvalidUTF8(t *testing.T) {
	scorer := NewScorer(NewVaderScorer(), stubPolarity{})

	_, err := scorer.Score("bad \xff\xfe bytes")
	assert.ErrorIs(t, err, ErrScoringFailure)
}

func TestScorer_PolarityFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	scorer := NewScorer(NewVaderScorer(), stubPolarity{err: boom})

	_, err := scorer.Score("fine")
	assert.ErrorIs(t, err, ErrScoringFailure)
	assert.ErrorIs(t, err, boom)
}

func TestScorer_PolarityCarriedThrough(t *testing.T) {
	scorer := NewScorer(NewVaderScorer(), stubPolarity{value: 0.75})

	result, err := Aggregate(context.Background(), scorer, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, result.PolaritySum(), 1e-9)
}

func TestBayesPolarity_Range(t *testing.T) {
	polarity, err := NewBayesPolarity()
	require.NoError(t, err)

	for _, text := range []string{"I love this game", "I hate this", "", "   "} {
		p, err := polarity.Polarity(text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, -1.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestBayesPolarity_FillerScoresZero(t *testing.T) {
	polarity, err := NewBayesPolarity()
	require.NoError(t, err)

	for _, text := range []string{"it is a game", "Game, it is.", "this is what it was"} {
		t.Run(text, func(t *testing.T) {
			p, err := polarity.Polarity(text)
			require.NoError(t, err)
			assert.Zero(t, p)
		})
	}
}

func TestBayesPolarity_OnlyOpinionWordsCount(t *testing.T) {
	polarity, err := newBayesPolarity(map[string]struct{}{"love": {}})
	require.NoError(t, err)

	alone, err := polarity.Polarity("love")
	require.NoError(t, err)
	padded, err := polarity.Polarity("I really love this game, it is a game of games")
	require.NoError(t, err)

	assert.Equal(t, 1.0, math.Abs(alone))
	assert.Equal(t, alone, padded)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"url", "look at this https://t.co/xyz now", "look at this now"},
		{"www", "see www.example.com", "see"},
		{"markdown link", "read [the post](https://example.com/p) today", "read the post today"},
		{"whitespace", "  lots\n\tof   space ", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}
