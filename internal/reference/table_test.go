package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableLoads(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 15, tbl.Len())
	assert.Len(t, tbl.Codes(), 15)
}

func TestResolveKnownCodes(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	for _, code := range tbl.Codes() {
		rec, ok := tbl.Resolve(code)
		require.True(t, ok, "code %s should resolve", code)
		assert.Equal(t, code, rec.ICAO)
		assert.NotEmpty(t, rec.Name)
	}

	rec, ok := tbl.Resolve("HECA")
	require.True(t, ok)
	assert.Equal(t, "Cairo International", rec.Name)
	assert.Equal(t, "Egypt", rec.Country)
}

func TestResolveMiss(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"OJAA", "ZZZZ", "heca", "HEC", "HECAA", ""} {
		rec, ok := tbl.Resolve(code)
		assert.False(t, ok, "code %q should miss", code)
		assert.Equal(t, AirportRecord{}, rec)
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not yaml", "airports: [::"},
		{"no airports", "airports: []"},
		{"bad code", "airports:\n  - icao: HEC1\n    name: X\n"},
		{"lowercase code", "airports:\n  - icao: heca\n    name: X\n"},
		{"duplicate", "airports:\n  - icao: HECA\n    name: A\n  - icao: HECA\n    name: B\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Load([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReferenceDataUnavailable)
			assert.Nil(t, tbl)
		})
	}
}

func TestCodesIsACopy(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	codes := tbl.Codes()
	codes[0] = "XXXX"
	assert.NotEqual(t, "XXXX", tbl.Codes()[0])
}

func TestDescribe(t *testing.T) {
	rec := AirportRecord{ICAO: "EGLL", Name: "London Heathrow", City: "London", Country: "United Kingdom"}
	assert.Equal(t, "London Heathrow, London (United Kingdom)", rec.Describe())

	rec = AirportRecord{ICAO: "OMDB", Name: "Dubai", City: "Dubai", Country: "UAE"}
	assert.Equal(t, "Dubai (UAE)", rec.Describe())
}
