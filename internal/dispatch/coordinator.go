// Package dispatch routes detected tokens to the airport resolver or the
// AFTN→AMHS converter and collects one tagged outcome per token.
//
// Everything here is synchronous and side-effect free apart from read-only
// access to the reference table.
package dispatch

import (
	"fmt"
	"strings"

	"nansc/internal/amhs"
	"nansc/internal/intent"
	"nansc/internal/reference"
)

// Outcome tags a Result.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeConverted Outcome = "converted"
	OutcomeMiss      Outcome = "miss"
	OutcomeError     Outcome = "error"
)

// Result is the outcome of dispatching one candidate.
type Result struct {
	Kind    intent.Kind              `json:"kind"`
	Token   string                   `json:"token"`
	Outcome Outcome                  `json:"outcome"`
	Record  *reference.AirportRecord `json:"record,omitempty"`
	Address *amhs.StructuredAddress  `json:"address,omitempty"`
	Reason  string                   `json:"reason,omitempty"`
	Err     error                    `json:"-"`
}

// Failed reports whether the candidate produced an Error outcome.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeError
}

// Operation selects what Batch does with each line.
type Operation string

const (
	OpConvert Operation = "convert"
	OpLookup  Operation = "lookup"
)

// ParseOperation accepts the CLI spellings of an Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convert", "aftn", "convert aftn":
		return OpConvert, nil
	case "lookup", "icao", "lookup airport":
		return OpLookup, nil
	default:
		return "", fmt.Errorf("unknown batch operation %q (use convert or lookup)", s)
	}
}

// Coordinator dispatches candidates against an immutable reference table.
type Coordinator struct {
	table *reference.Table
}

// New creates a Coordinator. The table must not be nil.
func New(table *reference.Table) *Coordinator {
	return &Coordinator{table: table}
}

// Table exposes the reference table the coordinator resolves against.
func (c *Coordinator) Table() *reference.Table {
	return c.table
}

// Dispatch detects candidates in text and dispatches each one.
func (c *Coordinator) Dispatch(text string) []Result {
	return c.DispatchCandidates(intent.Detect(text))
}

// DispatchCandidates returns exactly one Result per candidate, in order.
// A failing candidate never stops the rest.
func (c *Coordinator) DispatchCandidates(candidates []intent.Candidate) []Result {
	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, c.dispatchOne(cand))
	}
	return results
}

func (c *Coordinator) dispatchOne(cand intent.Candidate) Result {
	switch cand.Kind {
	case intent.KindAirportCode:
		return c.Lookup(cand.Token)
	case intent.KindLegacyAddress:
		return Convert(cand.Token)
	default:
		err := fmt.Errorf("unsupported candidate kind %q", cand.Kind)
		return Result{Kind: cand.Kind, Token: cand.Token, Outcome: OutcomeError, Reason: err.Error(), Err: err}
	}
}

// Lookup resolves a single ICAO code. Input that is not four letters A-Z is
// an Error outcome; an unknown code is a Miss.
func (c *Coordinator) Lookup(code string) Result {
	res := Result{Kind: intent.KindAirportCode, Token: code}
	if len(code) != 4 || !isUpperAlpha(code) {
		res.Outcome = OutcomeError
		res.Err = fmt.Errorf("ICAO code must be exactly 4 letters A-Z, got %q", code)
		res.Reason = res.Err.Error()
		return res
	}

	rec, ok := c.table.Resolve(code)
	if !ok {
		res.Outcome = OutcomeMiss
		res.Reason = "not found in local database"
		return res
	}
	res.Outcome = OutcomeResolved
	res.Record = &rec
	return res
}

// Convert runs the AFTN→AMHS conversion for a single token.
func Convert(token string) Result {
	res := Result{Kind: intent.KindLegacyAddress, Token: token}
	addr, err := amhs.Convert(token)
	if err != nil {
		res.Outcome = OutcomeError
		res.Err = err
		res.Reason = err.Error()
		return res
	}
	res.Outcome = OutcomeConverted
	res.Address = &addr
	return res
}

// Batch dispatches one item per non-blank line with the given operation.
// Lines are trimmed and upper-cased first.
func (c *Coordinator) Batch(lines []string, op Operation) []Result {
	var results []Result
	for _, line := range lines {
		item := strings.ToUpper(strings.TrimSpace(line))
		if item == "" {
			continue
		}
		switch op {
		case OpConvert:
			results = append(results, Convert(item))
		default:
			results = append(results, c.Lookup(item))
		}
	}
	return results
}

func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
