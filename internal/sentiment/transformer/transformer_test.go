//go:build ort

package transformer

import (
	"testing"

	"github.com/knights-analytics/hugot/pipelines"
	"github.com/stretchr/testify/assert"
)

func TestSignedScore(t *testing.T) {
	tests := []struct {
		label string
		score float32
		want  float64
	}{
		{"POSITIVE", 0.75, 0.75},
		{"negative", 0.5, -0.5},
		{"LABEL_1", 0.25, 0.25},
		{"LABEL_0", 0.25, -0.25},
		{"neutral", 0.9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := signedScore(pipelines.ClassificationOutput{Label: tt.label, Score: tt.score})
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestNewPolarity_RequiresModelPath(t *testing.T) {
	_, err := NewPolarity("")
	assert.Error(t, err)
}
