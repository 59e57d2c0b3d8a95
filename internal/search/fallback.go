package search

import (
	"context"
	"fmt"
	"unicode/utf8"

	"nansc/internal/logging"
)

// FallbackStatus classifies a web lookup for an unknown airport.
type FallbackStatus string

const (
	FallbackFound    FallbackStatus = "found"
	FallbackNotFound FallbackStatus = "not-found"
	FallbackFailed   FallbackStatus = "failed"
)

// DefaultMaxChars caps the quoted search text.
const DefaultMaxChars = 800

// minUsefulChars is the shortest search text treated as an answer.
const minUsefulChars = 10

// Fallback is the outcome of searching the web for an airport code.
type Fallback struct {
	Code    string
	Status  FallbackStatus
	Message string
	Err     error `json:"-"`
}

// AirportQuery is the query sent for an unknown code.
func AirportQuery(code string) string {
	return fmt.Sprintf("ICAO airport code %s location airport name", code)
}

// AirportFallback searches the web for a code the local table does not know.
// The found text is truncated to maxChars characters; a non-positive maxChars
// uses DefaultMaxChars. It never returns an error: failures are reported in
// the Fallback.
func AirportFallback(ctx context.Context, s Searcher, code string, maxChars int) Fallback {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	results, err := s.Search(ctx, AirportQuery(code))
	if err != nil {
		logging.SearchWarn("Airport fallback for %s failed: %v", code, err)
		return Fallback{
			Code:   code,
			Status: FallbackFailed,
			Err:    err,
			Message: fmt.Sprintf("ICAO code '%s' not found in local database.\n"+
				"Web search failed: %v\n"+
				"Please verify the ICAO code or check your internet connection.", code, err),
		}
	}

	text := Summarize(results)
	if utf8.RuneCountInString(text) <= minUsefulChars {
		return Fallback{
			Code:   code,
			Status: FallbackNotFound,
			Message: fmt.Sprintf("ICAO code '%s' not found in local database.\n"+
				"Web search did not return useful results.\n"+
				"Please verify the ICAO code and try again.", code),
		}
	}

	if utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
	}
	return Fallback{
		Code:   code,
		Status: FallbackFound,
		Message: fmt.Sprintf("ICAO code '%s' not found in local database.\n"+
			"Searching online...\n\n"+
			"Found result:\n%s", code, text),
	}
}
