package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSearch = errors.New("invalid search")

type SearchType string

const (
	SearchUser    SearchType = "user"
	SearchHashtag SearchType = "hashtag"
	SearchKeyword SearchType = "keyword"
)

func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case SearchUser, SearchHashtag, SearchKeyword:
		return t, nil
	case "":
		return SearchKeyword, nil
	default:
		return "", fmt.Errorf("%w: unknown search type %q", ErrInvalidSearch, s)
	}
}

// SearchRequest is one analysis as submitted from the search form or the CLI.
type SearchRequest struct {
	Search     string     `json:"search"`
	SearchType SearchType `json:"search_type"`
	Count      int        `json:"count"`
}

// Validate checks the request against the configured result ceiling.
func (r SearchRequest) Validate(maxResults int) error {
	if strings.TrimSpace(r.Search) == "" {
		return fmt.Errorf("%w: search term is empty", ErrInvalidSearch)
	}
	if r.Count < 1 || r.Count > maxResults {
		return fmt.Errorf("%w: result number must be between 1 and %d", ErrInvalidSearch, maxResults)
	}
	if _, err := ParseSearchType(string(r.SearchType)); err != nil {
		return err
	}
	return nil
}

// Query builds the recent-search query for the request.
//
//	user    -> @name
//	hashtag -> #tag
//	keyword -> verbatim
func (r SearchRequest) Query() (string, error) {
	term := strings.TrimSpace(r.Search)
	if term == "" {
		return "", fmt.Errorf("%w: search term is empty", ErrInvalidSearch)
	}

	searchType, err := ParseSearchType(string(r.SearchType))
	if err != nil {
		return "", err
	}

	switch searchType {
	case SearchUser:
		if !strings.HasPrefix(term, "@") {
			term = "@" + term
		}
	case SearchHashtag:
		if !strings.HasPrefix(term, "#") {
			term = "#" + term
		}
	}
	return term, nil
}
