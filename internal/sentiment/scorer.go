package sentiment

import (
	"fmt"
	"unicode/utf8"
)

type Classification string

const (
	Negative Classification = "negative"
	Neutral  Classification = "neutral"
	Positive Classification = "positive"
)

// ScoreResult is the sentiment of a single text. Values are copied, never shared.
type ScoreResult struct {
	Text       string  `json:"text"`
	Negativity float64 `json:"negativity"`
	Neutrality float64 `json:"neutrality"`
	Positivity float64 `json:"positivity"`
	Compound   float64 `json:"compound"`
	Polarity   float64 `json:"polarity"`
}

// Classification compares negativity against positivity only. Equal values,
// including the 0 == 0 case for filler text, are neutral.
func (r ScoreResult) Classification() Classification {
	return Classify(r.Negativity, r.Positivity)
}

func Classify(negativity, positivity float64) Classification {
	if negativity < positivity {
		return Positive
	}
	if negativity > positivity {
		return Negative
	}
	return Neutral
}

// TextScorer scores one text.
type TextScorer interface {
	Score(text string) (ScoreResult, error)
}

// Scorer combines the VADER lexicon scores with an independent polarity scorer.
type Scorer struct {
	lexicon  *VaderScorer
	polarity PolarityScorer
}

func NewScorer(lexicon *VaderScorer, polarity PolarityScorer) *Scorer {
	return &Scorer{lexicon: lexicon, polarity: polarity}
}

// NewDefaultScorer builds a Scorer from VADER and the naive Bayes polarity model.
func NewDefaultScorer() (*Scorer, error) {
	polarity, err := NewBayesPolarity()
	if err != nil {
		return nil, err
	}
	return NewScorer(NewVaderScorer(), polarity), nil
}

func (s *Scorer) Score(text string) (ScoreResult, error) {
	if !utf8.ValidString(text) {
		return ScoreResult{}, fmt.Errorf("%w: text is not valid UTF-8", ErrScoringFailure)
	}

	// VADER reads punctuation and casing, so it gets the text as written
	lex := s.lexicon.Scores(text)

	polarity, err := s.polarity.Polarity(CleanText(text))
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: polarity: %w", ErrScoringFailure, err)
	}

	return ScoreResult{
		Text:       text,
		Negativity: lex.Negative,
		Neutrality: lex.Neutral,
		Positivity: lex.Positive,
		Compound:   lex.Compound,
		Polarity:   polarity,
	}, nil
}
