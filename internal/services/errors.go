package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyQuery is returned before any request is issued when the search
	// term is blank after trimming.
	ErrEmptyQuery = errors.New("search query is required")
	// ErrInvalidParameter marks an unknown language or search type.
	ErrInvalidParameter = errors.New("invalid parameter")

	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstreamRateLimited = errors.New("upstream rate limited, retry later")
	ErrUpstreamUnavailable = errors.New("upstream request failed")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrSourceNotConfigured = errors.New("source not configured")
)

// Source names an upstream card database.
type Source string

const (
	SourceEnglish  Source = "pokemontcg"
	SourceJapanese Source = "japanese"
)

// UpstreamError describes one failed upstream call. Kind is one of the
// sentinel errors above; StatusCode is 0 when no response was received.
type UpstreamError struct {
	Source     Source
	StatusCode int
	Kind       error
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Source, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap lets errors.Is match both the kind and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classifyStatus maps a non-2xx status code to its sentinel.
func classifyStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUpstreamAuth
	case http.StatusTooManyRequests:
		return ErrUpstreamRateLimited
	default:
		return ErrUpstreamUnavailable
	}
}

// HTTPStatus maps a search error onto the status the proxy responds with.
func HTTPStatus(err error) int {
	var upErr *UpstreamError
	switch {
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUpstreamRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrSourceNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.As(err, &upErr):
		if upErr.StatusCode >= 500 {
			return upErr.StatusCode
		}
		if upErr.StatusCode == 0 {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the single human readable line shown for a search error.
// Malformed responses read the same as an unavailable upstream.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return "Search query is required"
	case errors.Is(err, ErrInvalidParameter):
		return err.Error()
	case errors.Is(err, ErrUpstreamAuth):
		return "API key is invalid or missing"
	case errors.Is(err, ErrUpstreamRateLimited):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, ErrSourceNotConfigured):
		return "Japanese card search is not available"
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrMalformedResponse):
		return "Failed to fetch cards from Pokemon TCG API"
	default:
		return "Internal server error"
	}
}
