package models

import "time"

// SummaryEvent is published once per completed web analysis.
type SummaryEvent struct {
	AnalysisID      string     `json:"analysis_id"`
	Query           string     `json:"query"`
	SearchType      SearchType `json:"search_type"`
	Total           int        `json:"total"`
	NegativeCount   int        `json:"negative_count"`
	NeutralCount    int        `json:"neutral_count"`
	PositiveCount   int        `json:"positive_count"`
	NegativePercent float64    `json:"negative_percent"`
	NeutralPercent  float64    `json:"neutral_percent"`
	PositivePercent float64    `json:"positive_percent"`
	PolaritySum     float64    `json:"polarity_sum"`
	CreatedAt       time.Time  `json:"created_at"`
}
