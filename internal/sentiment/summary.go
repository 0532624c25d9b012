package sentiment

import (
	"fmt"
	"io"
	"math"
)

// Summary is the display form of an AggregateResult. Percentages are rounded
// to one decimal place.
type Summary struct {
	Total           int     `json:"total"`
	NegativeCount   int     `json:"negative_count"`
	NeutralCount    int     `json:"neutral_count"`
	PositiveCount   int     `json:"positive_count"`
	NegativePercent float64 `json:"negative_percent"`
	NeutralPercent  float64 `json:"neutral_percent"`
	PositivePercent float64 `json:"positive_percent"`
	PolaritySum     float64 `json:"polarity_sum"`
}

func Summarize(r *AggregateResult) Summary {
	return Summary{
		Total:           r.Total(),
		NegativeCount:   r.NegativeCount(),
		NeutralCount:    r.NeutralCount(),
		PositiveCount:   r.PositiveCount(),
		NegativePercent: Round1(r.NegativePercent()),
		NeutralPercent:  Round1(r.NeutralPercent()),
		PositivePercent: Round1(r.PositivePercent()),
		PolaritySum:     r.PolaritySum(),
	}
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// WriteSummary prints the terminal form of a summary.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w,
		"Positive: %d (%.1f%%)\nNeutral: %d (%.1f%%)\nNegative: %d (%.1f%%)\nPolarity: %.4f\n",
		s.PositiveCount, s.PositivePercent,
		s.NeutralCount, s.NeutralPercent,
		s.NegativeCount, s.NegativePercent,
		s.PolaritySum)
	return err
}
