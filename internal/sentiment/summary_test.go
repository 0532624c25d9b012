package sentiment

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 0.0, Round1(0))
	assert.Equal(t, 100.0, Round1(100))
}

func TestWriteSummary(t *testing.T) {
	result, err := Aggregate(context.Background(), scenarioScorer(),
		[]string{"I love this game", "I hate this", "it is a game", "I love this game"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Summarize(result)))

	want := "Positive: 2 (50.0%)\n" +
		"Neutral: 1 (25.0%)\n" +
		"Negative: 1 (25.0%)\n" +
		"Polarity: 1.1000\n"
	assert.Equal(t, want, buf.String())
}

func TestSummarize_Empty(t *testing.T) {
	result, err := Aggregate(context.Background(), &fakeScorer{}, []string{})
	require.NoError(t, err)

	assert.Equal(t, Summary{}, Summarize(result))
}
