// Package reference holds the ICAO location indicators the console can
// resolve without leaving the process.
//
// The table is loaded once at startup from the bundled airports.yaml and is
// never mutated afterwards; callers share it by pointer.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed airports.yaml
var bundledAirports []byte

// ErrReferenceDataUnavailable is returned when the airport table cannot be
// loaded. The resolver cannot function without it.
var ErrReferenceDataUnavailable = errors.New("reference data unavailable")

// AirportRecord is one known ICAO location indicator.
type AirportRecord struct {
	ICAO    string `yaml:"icao" json:"icao"`
	Name    string `yaml:"name" json:"name"`
	City    string `yaml:"city" json:"city"`
	Country string `yaml:"country" json:"country"`
}

// Describe renders the record the way operators read it: "Name, City (Country)".
func (r AirportRecord) Describe() string {
	if r.City == "" || r.City == r.Name {
		return fmt.Sprintf("%s (%s)", r.Name, r.Country)
	}
	return fmt.Sprintf("%s, %s (%s)", r.Name, r.City, r.Country)
}

type tableFile struct {
	Airports []AirportRecord `yaml:"airports"`
}

// Table is an immutable ICAO → AirportRecord mapping.
type Table struct {
	records map[string]AirportRecord
	codes   []string
}

// Default loads the table bundled into the binary.
func Default() (*Table, error) {
	return Load(bundledAirports)
}

// Load parses a YAML airport table. Every failure wraps
// ErrReferenceDataUnavailable.
func Load(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty airport table", ErrReferenceDataUnavailable)
	}

	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceDataUnavailable, err)
	}
	if len(tf.Airports) == 0 {
		return nil, fmt.Errorf("%w: no airports defined", ErrReferenceDataUnavailable)
	}

	t := &Table{records: make(map[string]AirportRecord, len(tf.Airports))}
	for i, rec := range tf.Airports {
		if !isCode(rec.ICAO) {
			return nil, fmt.Errorf("%w: entry %d: invalid ICAO code %q", ErrReferenceDataUnavailable, i, rec.ICAO)
		}
		if _, dup := t.records[rec.ICAO]; dup {
			return nil, fmt.Errorf("%w: duplicate ICAO code %s", ErrReferenceDataUnavailable, rec.ICAO)
		}
		t.records[rec.ICAO] = rec
		t.codes = append(t.codes, rec.ICAO)
	}
	sort.Strings(t.codes)

	return t, nil
}

// Resolve performs an exact lookup. The second return value is false on a
// miss; there is no fuzzy matching.
func (t *Table) Resolve(code string) (AirportRecord, bool) {
	rec, ok := t.records[code]
	return rec, ok
}

// Codes returns the known indicators in sorted order.
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

func isCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
