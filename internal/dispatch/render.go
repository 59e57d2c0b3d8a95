package dispatch

import (
	"fmt"
	"strings"

	"nansc/internal/intent"
)

// Line renders a single result for prompt interpolation.
func (r Result) Line() string {
	return r.LineWith(r.Summary())
}

// LineWith renders the result's label and token with summary as the outcome.
func (r Result) LineWith(summary string) string {
	label := "ICAO Code"
	if r.Kind == intent.KindLegacyAddress {
		label = "AFTN Code"
	}
	return fmt.Sprintf("%s %s: %s", label, r.Token, summary)
}

// Summary is the outcome text without the token label.
func (r Result) Summary() string {
	switch r.Outcome {
	case OutcomeResolved:
		if r.Record != nil {
			return r.Record.Describe()
		}
	case OutcomeConverted:
		if r.Address != nil {
			return r.Address.String()
		}
	case OutcomeMiss:
		return "not found in local database"
	case OutcomeError:
		return "Error: " + r.Reason
	}
	return string(r.Outcome)
}

// SummaryFunc supplies replacement outcome text for a result. ok=false keeps
// the result's own Summary.
type SummaryFunc func(r Result) (summary string, ok bool)

// Render returns the "Tool Results:" block for a set of results, or "" when
// there are none.
func Render(results []Result) string {
	return RenderWith(results, nil)
}

// RenderWith is Render with per-result summaries taken from summary where it
// has one, such as web fallback text for Misses. summary may be nil.
func RenderWith(results []Result, summary SummaryFunc) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Tool Results:\n")
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		line := r.Line()
		if summary != nil {
			if text, ok := summary(r); ok {
				line = r.LineWith(text)
			}
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// Augment prefixes message with the rendered results. The message is
// returned unchanged when there are no results.
func Augment(message string, results []Result) string {
	return AugmentWith(message, results, nil)
}

// AugmentWith is Augment rendering through RenderWith.
func AugmentWith(message string, results []Result, summary SummaryFunc) string {
	block := RenderWith(results, summary)
	if block == "" {
		return message
	}
	return block + "\n\nUser Message: " + message
}

// Misses returns the tokens of Miss outcomes in order.
func Misses(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Outcome == OutcomeMiss {
			out = append(out, r.Token)
		}
	}
	return out
}
