package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const resultsPage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fen.wikipedia.org%2Fwiki%2FAmman_Civil_Airport&amp;rut=x">Amman Civil Airport - Wikipedia</a></h2>
  <a class="result__snippet" href="#">Amman Civil Airport <b>(OJAM)</b> is an airport in
  Marka, Amman, Jordan.</a>
</div>
<div class="result results_links web-result">
  <h2><a class="result__a" href="https://example.org/ojaa">OJAA airport code</a></h2>
</div>
<div class="result results_links web-result">
  <h2><a class="result__a" href="">no url</a></h2>
</div>
</body></html>`

func newServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{Endpoint: srv.URL + "/html/", HTTPClient: srv.Client(), Timeout: 5 * time.Second}), srv
}

func TestParseResults(t *testing.T) {
	results, err := parseResults(resultsPage, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Amman Civil Airport - Wikipedia", results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Amman_Civil_Airport", results[0].URL)
	assert.Equal(t, "Amman Civil Airport (OJAM) is an airport in Marka, Amman, Jordan.", results[0].Snippet)
	assert.Equal(t, "https://example.org/ojaa", results[1].URL)
	assert.Empty(t, results[1].Snippet)

	limited, err := parseResults(resultsPage, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestClientSearch(t *testing.T) {
	var gotQuery, gotAgent string
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, resultsPage)
	})

	results, err := c.Search(context.Background(), "ICAO OJAA")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "ICAO OJAA", gotQuery)
	assert.NotEmpty(t, gotAgent)

	_, err = c.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestClientSearchHTTPError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Search(context.Background(), "OJAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

type stubSearcher struct {
	results []Result
	err     error
	query   string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	s.query = query
	return s.results, s.err
}

func TestAirportFallbackFound(t *testing.T) {
	s := &stubSearcher{results: []Result{{Title: "Queen Alia", Snippet: strings.Repeat("a", 900)}}}

	fb := AirportFallback(context.Background(), s, "OJAA", 0)
	assert.Equal(t, FallbackFound, fb.Status)
	assert.Equal(t, "ICAO airport code OJAA location airport name", s.query)
	assert.True(t, strings.HasPrefix(fb.Message, "ICAO code 'OJAA' not found in local database.\nSearching online...\n\nFound result:\n"))

	quoted := strings.TrimPrefix(fb.Message, "ICAO code 'OJAA' not found in local database.\nSearching online...\n\nFound result:\n")
	assert.Len(t, quoted, DefaultMaxChars)
}

func TestAirportFallbackNotFound(t *testing.T) {
	fb := AirportFallback(context.Background(), &stubSearcher{results: []Result{{Title: "short"}}}, "ZZZZ", 800)
	assert.Equal(t, FallbackNotFound, fb.Status)
	assert.Contains(t, fb.Message, "did not return useful results")

	fb = AirportFallback(context.Background(), &stubSearcher{}, "ZZZZ", 800)
	assert.Equal(t, FallbackNotFound, fb.Status)
}

func TestAirportFallbackFailed(t *testing.T) {
	fb := AirportFallback(context.Background(), &stubSearcher{err: errors.New("dial tcp: timeout")}, "ZZZZ", 800)
	assert.Equal(t, FallbackFailed, fb.Status)
	assert.Error(t, fb.Err)
	assert.Contains(t, fb.Message, "Web search failed: dial tcp: timeout")
}

func TestFormatMarkdown(t *testing.T) {
	assert.Equal(t, "No results found for: x", FormatMarkdown("x", nil))

	md := FormatMarkdown("OJAA", []Result{{Title: "T", URL: "https://u", Snippet: "S"}})
	assert.Contains(t, md, "1. [T](https://u)\n   S\n")
}
