// Package intent finds ICAO codes and AFTN addresses in operator text.
//
// Detection is lexical: uppercase letter runs bounded by word boundaries,
// classified by exact length. Nothing is learned or guessed.
package intent

import (
	"strings"
	"unicode"
)

// Kind classifies a candidate token.
type Kind string

const (
	// KindAirportCode is a 4-letter ICAO location indicator.
	KindAirportCode Kind = "airport-code"
	// KindLegacyAddress is an 8-letter AFTN address.
	KindLegacyAddress Kind = "legacy-address"
)

// Candidate is one token the dispatcher should act on.
type Candidate struct {
	Kind  Kind   `json:"kind"`
	Token string `json:"token"`
}

// isWordRune reports whether r belongs to a word. Any Unicode letter or digit
// counts, so "ÉHECA" is one word and not a code.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// upperWords returns the words of text made only of A-Z.
func upperWords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
	out := words[:0]
	for _, w := range words {
		if strings.IndexFunc(w, func(r rune) bool { return r < 'A' || r > 'Z' }) < 0 {
			out = append(out, w)
		}
	}
	return out
}

// Detect returns candidates in order of first appearance, each unique token
// once. Runs whose length is neither 4 nor 8 are ignored.
func Detect(text string) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	for _, tok := range upperWords(text) {
		var kind Kind
		switch len(tok) {
		case 4:
			kind = KindAirportCode
		case 8:
			kind = KindLegacyAddress
		default:
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, Candidate{Kind: kind, Token: tok})
	}

	return out
}

// DefaultKnowledgeKeywords trigger a knowledge base lookup.
var DefaultKnowledgeKeywords = []string{
	"procedure", "rule", "reg", "manual", "doc", "guideline",
	"protocol", "standard", "regulation", "policy", "directive",
}

// NeedsKnowledge reports whether text mentions any keyword (substring,
// case-insensitive). A nil keyword list uses DefaultKnowledgeKeywords.
func NeedsKnowledge(text string, keywords []string) bool {
	if keywords == nil {
		keywords = DefaultKnowledgeKeywords
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
