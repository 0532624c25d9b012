package models

// Tweet is a single search hit. Text is already HTML-unescaped.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Texts returns the tweet texts in the order they were fetched.
func Texts(tweets []Tweet) []string {
	out := make([]string, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, t.Text)
	}
	return out
}

// DedupeTexts drops repeated texts; the first occurrence keeps its position.
func DedupeTexts(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
