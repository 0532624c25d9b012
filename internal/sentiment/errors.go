package sentiment

import (
	"errors"
	"fmt"
)

// ErrScoringFailure signals that a text could not be scored by the underlying engines.
var ErrScoringFailure = errors.New("scoring failure")

// ScoringError records which input of a batch failed to score.
type ScoringError struct {
	Index int
	Err   error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s: input %d: %v", ErrScoringFailure.Error(), e.Index, e.Err)
}

func (e *ScoringError) Unwrap() []error { return []error{ErrScoringFailure, e.Err} }
