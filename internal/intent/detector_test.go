package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Candidate
	}{
		{
			name: "aftn conversion request",
			text: "Convert HECAYFYX to X.400 format",
			want: []Candidate{{KindLegacyAddress, "HECAYFYX"}},
		},
		{
			name: "airport question",
			text: "Where is airport OJAA?",
			want: []Candidate{{KindAirportCode, "OJAA"}},
		},
		{
			name: "both kinds in order",
			text: "Route EGLLZTZX traffic via KJFK please",
			want: []Candidate{
				{KindLegacyAddress, "EGLLZTZX"},
				{KindAirportCode, "KJFK"},
			},
		},
		{
			name: "eight letters are not split",
			text: "HECAYFYX",
			want: []Candidate{{KindLegacyAddress, "HECAYFYX"}},
		},
		{
			name: "duplicates once",
			text: "EGLL, EGLL and again EGLL then LFPG",
			want: []Candidate{
				{KindAirportCode, "EGLL"},
				{KindAirportCode, "LFPG"},
			},
		},
		{
			name: "lowercase ignored",
			text: "lookup egll and hecayfyx",
			want: nil,
		},
		{
			name: "mixed case ignored",
			text: "Egll HecaYFYX",
			want: nil,
		},
		{
			name: "digits glue tokens",
			text: "EGLL1 and 2KJFK and HECA_YFYX",
			want: nil,
		},
		{
			name: "other lengths ignored",
			text: "AMHS AFTN ICAO are acronyms; ABCDE ABCDEFG ABCDEFGHI are not codes",
			want: []Candidate{
				{KindAirportCode, "AMHS"},
				{KindAirportCode, "AFTN"},
				{KindAirportCode, "ICAO"},
			},
		},
		{
			name: "accented letters glue tokens",
			text: "ÉHECA KJFKñ ÜHECAYFYX",
			want: nil,
		},
		{
			name: "non-ascii punctuation bounds",
			text: "«EGLL» → LFPG…",
			want: []Candidate{
				{KindAirportCode, "EGLL"},
				{KindAirportCode, "LFPG"},
			},
		},
		{
			name: "punctuation bounds",
			text: "(OMDB)/VHHH.",
			want: []Candidate{
				{KindAirportCode, "OMDB"},
				{KindAirportCode, "VHHH"},
			},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Detect(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestNeedsKnowledge(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"What are the procedures for flight planning?", true},
		{"Show me the AFTN MANUAL", true},
		{"Any new Directive?", true},
		{"Convert HECAYFYX", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := NeedsKnowledge(tt.text, nil); got != tt.want {
			t.Errorf("NeedsKnowledge(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	if !NeedsKnowledge("check the NOTAM", []string{"notam"}) {
		t.Error("custom keyword should trigger")
	}
	if NeedsKnowledge("procedure", []string{}) {
		t.Error("empty keyword list should never trigger")
	}
}
