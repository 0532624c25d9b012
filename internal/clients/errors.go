package clients

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// FetchError is returned by the tweet source when a search cannot be completed.
// Kind is one of ErrRateLimited, ErrUnauthorized or ErrUpstream.
type FetchError struct {
	Query      string
	StatusCode int
	Kind       error
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %q: %v (status %d): %v", e.Query, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %q: %v: %v", e.Query, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{e.Kind, e.Err} }

func kindForStatus(status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrUpstream
	}
}
