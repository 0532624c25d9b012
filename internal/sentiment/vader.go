package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// CleanText strips links and collapses whitespace before polarity scoring.
func CleanText(input string) string {
	return strings.Join(strings.Fields(RemoveLinks(input)), " ")
}

// LexiconScores holds the four VADER values for a text.
type LexiconScores struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

// VaderScorer wraps the govader lexicon analyzer. The analyzer only reads its
// lexicon after construction, so one instance is shared by all goroutines.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Scores(text string) LexiconScores {
	s := v.analyzer.PolarityScores(text)
	return LexiconScores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}
