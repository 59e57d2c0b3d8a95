package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nansc/internal/amhs"
	"nansc/internal/intent"
	"nansc/internal/reference"
)

func newCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	tbl, err := reference.Default()
	require.NoError(t, err)
	return New(tbl)
}

func TestDispatchConvertExample(t *testing.T) {
	c := newCoordinator(t)

	results := c.Dispatch("Convert HECAYFYX to X.400 format")
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, intent.KindLegacyAddress, got.Kind)
	assert.Equal(t, "HECAYFYX", got.Token)
	assert.Equal(t, OutcomeConverted, got.Outcome)
	require.NotNil(t, got.Address)
	assert.Equal(t, "/C=XX/A=ICAO/P=EGYPT/O=HECA/OU1=YFYX/", got.Address.String())
}

func TestDispatchMissExample(t *testing.T) {
	c := newCoordinator(t)

	results := c.Dispatch("Where is airport OJAA?")
	require.Len(t, results, 1)
	assert.Equal(t, intent.KindAirportCode, results[0].Kind)
	assert.Equal(t, "OJAA", results[0].Token)
	assert.Equal(t, OutcomeMiss, results[0].Outcome)
	assert.Nil(t, results[0].Record)
	assert.False(t, results[0].Failed())
}

func TestDispatchMixedOrder(t *testing.T) {
	c := newCoordinator(t)

	results := c.Dispatch("Lookup EGLL and convert EGLLZTZX, then ZZZZ")
	want := []Result{
		{Kind: intent.KindAirportCode, Token: "EGLL", Outcome: OutcomeResolved},
		{Kind: intent.KindLegacyAddress, Token: "EGLLZTZX", Outcome: OutcomeConverted},
		{Kind: intent.KindAirportCode, Token: "ZZZZ", Outcome: OutcomeMiss},
	}
	opts := cmpopts.IgnoreFields(Result{}, "Record", "Address", "Reason", "Err")
	if diff := cmp.Diff(want, results, opts); diff != "" {
		t.Errorf("Dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchCandidatesPartialFailure(t *testing.T) {
	c := newCoordinator(t)

	results := c.DispatchCandidates([]intent.Candidate{
		{Kind: intent.KindAirportCode, Token: "HECA"},
		{Kind: intent.KindLegacyAddress, Token: "HECA1FYX"},
		{Kind: intent.KindAirportCode, Token: "OJAA"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, OutcomeResolved, results[0].Outcome)
	assert.Equal(t, OutcomeError, results[1].Outcome)
	assert.ErrorIs(t, results[1].Err, amhs.ErrInvalidFormat)
	assert.Nil(t, results[1].Address)
	assert.Equal(t, OutcomeMiss, results[2].Outcome)
}

func TestDispatchUnknownKind(t *testing.T) {
	c := newCoordinator(t)

	results := c.DispatchCandidates([]intent.Candidate{{Kind: "route", Token: "ABC"}})
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
}

func TestDispatchNoCandidates(t *testing.T) {
	c := newCoordinator(t)
	assert.Empty(t, c.Dispatch("what is amhs?"))
}

func TestLookupRejectsMalformed(t *testing.T) {
	c := newCoordinator(t)

	for _, code := range []string{"", "HEC", "HECAA", "he1a"} {
		res := c.Lookup(code)
		assert.Equal(t, OutcomeError, res.Outcome, "code %q", code)
		assert.NotEmpty(t, res.Reason)
	}
}

func TestBatch(t *testing.T) {
	c := newCoordinator(t)

	results := c.Batch([]string{"hecayfyx", "", "  EGLLZTZX ", "KJFK"}, OpConvert)
	require.Len(t, results, 3)
	assert.Equal(t, OutcomeConverted, results[0].Outcome)
	assert.Equal(t, "HECAYFYX", results[0].Token)
	assert.Equal(t, OutcomeConverted, results[1].Outcome)
	assert.Equal(t, OutcomeError, results[2].Outcome)

	results = c.Batch([]string{"OJAA", "egll", "KJFK"}, OpLookup)
	require.Len(t, results, 3)
	assert.Equal(t, OutcomeMiss, results[0].Outcome)
	assert.Equal(t, OutcomeResolved, results[1].Outcome)
	assert.Equal(t, OutcomeResolved, results[2].Outcome)
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("Convert AFTN")
	require.NoError(t, err)
	assert.Equal(t, OpConvert, op)

	op, err = ParseOperation("lookup")
	require.NoError(t, err)
	assert.Equal(t, OpLookup, op)

	_, err = ParseOperation("delete")
	assert.Error(t, err)
}

func TestRenderAndAugment(t *testing.T) {
	c := newCoordinator(t)

	results := c.Dispatch("HECA HECAYFYX OJAA")
	rendered := Render(results)
	assert.Equal(t,
		"Tool Results:\n"+
			"ICAO Code HECA: Cairo International, Cairo (Egypt)\n"+
			"AFTN Code HECAYFYX: /C=XX/A=ICAO/P=EGYPT/O=HECA/OU1=YFYX/\n"+
			"ICAO Code OJAA: not found in local database",
		rendered)

	assert.Equal(t, rendered+"\n\nUser Message: hi", Augment("hi", results))
	assert.Equal(t, "hi", Augment("hi", nil))
	assert.Equal(t, []string{"OJAA"}, Misses(results))
}

func TestRenderWithSummary(t *testing.T) {
	c := newCoordinator(t)
	results := c.Dispatch("HECA OJAA")

	web := func(r Result) (string, bool) {
		if r.Outcome != OutcomeMiss {
			return "", false
		}
		return "Web search: Queen Alia area", true
	}
	want := "Tool Results:\n" +
		"ICAO Code HECA: Cairo International, Cairo (Egypt)\n" +
		"ICAO Code OJAA: Web search: Queen Alia area"
	assert.Equal(t, want, RenderWith(results, web))
	assert.Equal(t, want+"\n\nUser Message: where?", AugmentWith("where?", results, web))
	assert.Equal(t, Render(results), RenderWith(results, nil))
	assert.Equal(t, "AFTN Code HECAYFYX: pending", Convert("HECAYFYX").LineWith("pending"))
}
