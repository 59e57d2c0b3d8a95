package knowledge

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators splits on paragraphs, then lines, then sentences, then
// words, then characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into chunks of at most ChunkSize characters, carrying up
// to ChunkOverlap characters of context between neighbours. It prefers the
// coarsest separator that yields pieces small enough.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter returns a splitter with the default separators.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{ChunkSize: size, ChunkOverlap: overlap, Separators: DefaultSeparators}
}

// Split returns the chunks of text. Whitespace-only input yields nil.
func (s *Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	var out []string
	for _, c := range s.split(text, seps) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, small []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if length(p) < s.ChunkSize {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small, sep)...)
			small = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, p)
		} else {
			chunks = append(chunks, s.split(p, rest)...)
		}
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small, sep)...)
	}
	return chunks
}

// merge packs pieces into chunks joined by sep, keeping a tail of the
// previous chunk as overlap.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := length(sep)
	var chunks, current []string
	total := 0

	for _, p := range pieces {
		n := length(p)
		joined := 0
		if len(current) > 0 {
			joined = sepLen
		}
		if total+n+joined > s.ChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
			for len(current) > 0 && (total > s.ChunkOverlap || total+n+sepLen > s.ChunkSize) {
				total -= length(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, p)
		total += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}
	return chunks
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
