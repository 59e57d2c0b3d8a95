// Package amhs converts AFTN addresses into AMHS X.400 O/R addresses.
//
// An AFTN address is eight uppercase letters:
//
//	HECA YFY X
//	|    |   `- department / filler letter (position 8)
//	|    `----- organization designator (positions 5-7)
//	`---------- ICAO location indicator (positions 1-4)
//
// The AMHS form used by the console is the XF-address layout:
//
//	/C=XX/A=ICAO/P=<PRMD>/O=<location>/OU1=<organization+department>/
//
// Conversion is a pure function of the input.
package amhs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned for input that is not exactly eight
// characters in A-Z.
var ErrInvalidFormat = errors.New("invalid AFTN address format")

// AddressLength is the fixed length of an AFTN address.
const AddressLength = 8

const (
	// Country is the fixed country attribute of ICAO XF-addresses.
	Country = "XX"
	// ADMD is the fixed administration management domain.
	ADMD = "ICAO"
	// UnknownPRMD is used when no nationality prefix matches.
	UnknownPRMD = "UNKNOWN"
)

// LegacyAddress is a validated AFTN address split into its positional fields.
type LegacyAddress struct {
	Location     string // positions 1-4
	Organization string // positions 5-7
	Department   string // position 8
}

// String reassembles the eight-letter form.
func (a LegacyAddress) String() string {
	return a.Location + a.Organization + a.Department
}

// StructuredAddress is the AMHS O/R address derived from a LegacyAddress.
type StructuredAddress struct {
	Country            string `json:"c"`
	ADMD               string `json:"a"`
	PRMD               string `json:"p"`
	Organization       string `json:"o"`
	OrganizationalUnit string `json:"ou1"`
}

// Attribute is one key=value pair of an O/R address.
type Attribute struct {
	Key   string
	Value string
}

// Attributes returns the address in hierarchical order.
func (s StructuredAddress) Attributes() []Attribute {
	return []Attribute{
		{"C", s.Country},
		{"A", s.ADMD},
		{"P", s.PRMD},
		{"O", s.Organization},
		{"OU1", s.OrganizationalUnit},
	}
}

// String renders the canonical slash-delimited form.
func (s StructuredAddress) String() string {
	var sb strings.Builder
	sb.WriteByte('/')
	for _, attr := range s.Attributes() {
		sb.WriteString(attr.Key)
		sb.WriteByte('=')
		sb.WriteString(attr.Value)
		sb.WriteByte('/')
	}
	return sb.String()
}

// ParseLegacy validates s and splits it into positional fields. It does not
// trim or upper-case; callers normalise first if they want to.
func ParseLegacy(s string) (LegacyAddress, error) {
	if len(s) != AddressLength {
		return LegacyAddress{}, fmt.Errorf("%w: want %d letters, got %d", ErrInvalidFormat, AddressLength, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return LegacyAddress{}, fmt.Errorf("%w: character %q at position %d is not A-Z", ErrInvalidFormat, s[i], i+1)
		}
	}
	return LegacyAddress{
		Location:     s[0:4],
		Organization: s[4:7],
		Department:   s[7:8],
	}, nil
}

// Convert maps an AFTN address to its AMHS form.
func Convert(s string) (StructuredAddress, error) {
	addr, err := ParseLegacy(s)
	if err != nil {
		return StructuredAddress{}, err
	}
	return FromLegacy(addr), nil
}

// FromLegacy builds the structured address for an already validated address.
func FromLegacy(a LegacyAddress) StructuredAddress {
	return StructuredAddress{
		Country:            Country,
		ADMD:               ADMD,
		PRMD:               PRMDFor(a.Location),
		Organization:       a.Location,
		OrganizationalUnit: a.Organization + a.Department,
	}
}
