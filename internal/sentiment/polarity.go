package sentiment

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	bayes "github.com/cdipaolo/sentiment"
	"github.com/jonreiter/govader"
)

// PolarityScorer produces a single polarity value in roughly [-1, 1],
// independent of the VADER lexicon.
type PolarityScorer interface {
	Polarity(text string) (float64, error)
}

// BayesPolarity scores polarity with the pre-trained naive Bayes word model.
// Only opinion words count: each one the model labels positive adds +1 and
// each one it labels negative adds -1, and the polarity is their mean. Words
// outside the opinion vocabulary score 0, so filler text has polarity 0.
type BayesPolarity struct {
	// the model's text sanitizer keeps state between calls
	mu         sync.Mutex
	models     bayes.Models
	vocabulary map[string]struct{}
}

// NewBayesPolarity uses the VADER lexicon entries as the opinion vocabulary.
func NewBayesPolarity() (*BayesPolarity, error) {
	lexicon := govader.NewSentimentIntensityAnalyzer().Lexicon
	vocabulary := make(map[string]struct{}, len(lexicon))
	for word := range lexicon {
		vocabulary[word] = struct{}{}
	}
	return newBayesPolarity(vocabulary)
}

func newBayesPolarity(vocabulary map[string]struct{}) (*BayesPolarity, error) {
	models, err := bayes.Restore()
	if err != nil {
		return nil, fmt.Errorf("failed to restore sentiment model: %w", err)
	}
	return &BayesPolarity{models: models, vocabulary: vocabulary}, nil
}

func (b *BayesPolarity) Polarity(text string) (float64, error) {
	b.mu.Lock()
	analysis := b.models.SentimentAnalysis(text, bayes.English)
	b.mu.Unlock()

	if analysis == nil {
		return 0, fmt.Errorf("no analysis produced for text")
	}

	var words, sum float64
	for _, w := range analysis.Words {
		if !b.isOpinionWord(w.Word) {
			continue
		}
		words++
		if w.Score == 1 {
			sum++
		} else {
			sum--
		}
	}

	if words == 0 {
		return 0, nil
	}
	return sum / words, nil
}

func (b *BayesPolarity) isOpinionWord(word string) bool {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}))
	if word == "" {
		return false
	}
	_, ok := b.vocabulary[word]
	return ok
}
