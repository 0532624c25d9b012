// Package transformer scores polarity with a local text-classification model
// through hugot's ONNX Runtime backend. It links the ORT and tokenizers
// native libraries, so only binaries that load a model import it.
package transformer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/tweetsentiment/internal/sentiment"
)

const pipelineName = "tweet-polarity"

// Polarity runs a text-classification model (for example a distilbert SST-2
// export). A POSITIVE label maps to +score and a NEGATIVE label to -score.
type Polarity struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewPolarity(modelPath string) (*Polarity, error) {
	if modelPath == "" {
		return nil, errors.New("model path is required")
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      pipelineName,
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("[Transformer] Failed to destroy session",
				slog.String("error", destroyErr.Error()))
		}
		return nil, fmt.Errorf("failed to load classification pipeline: %w", err)
	}

	slog.Info("[Transformer] Loaded classification model",
		slog.String("model_path", modelPath))

	return &Polarity{session: session, pipeline: pipeline}, nil
}

func (t *Polarity) Polarity(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	t.mu.Lock()
	out, err := t.pipeline.RunPipeline([]string{text})
	t.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("classification pipeline failed: %w", err)
	}

	if len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return 0, errors.New("classification pipeline returned no labels")
	}

	return signedScore(out.ClassificationOutputs[0][0]), nil
}

func signedScore(best pipelines.ClassificationOutput) float64 {
	switch strings.ToUpper(best.Label) {
	case "POSITIVE", "POS", "LABEL_1":
		return float64(best.Score)
	case "NEGATIVE", "NEG", "LABEL_0":
		return -float64(best.Score)
	default:
		return 0
	}
}

func (t *Polarity) Close() error {
	return t.session.Destroy()
}

// NewScorer pairs VADER with the model at modelPath. The returned func
// destroys the model session.
func NewScorer(modelPath string) (*sentiment.Scorer, func(), error) {
	polarity, err := NewPolarity(modelPath)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if err := polarity.Close(); err != nil {
			slog.Warn("[Transformer] Failed to close polarity model",
				slog.String("error", err.Error()))
		}
	}
	return sentiment.NewScorer(sentiment.NewVaderScorer(), polarity), release, nil
}
