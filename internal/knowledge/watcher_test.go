package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// The store's connection opener lives until t.Cleanup closes it.
var ignoreSQL = goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener")

func TestWatcherReingestsWrittenDocuments(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreSQL)

	kb, st := newTestBase(t, &keywordEngine{})
	dir := t.TempDir()

	results := make(chan IngestResult, 4)
	w := NewWatcher(kb, dir, 50*time.Millisecond, func(res IngestResult, err error) {
		if err == nil {
			results <- res
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notam.txt"), []byte("AMHS outage notice."), 0644))

	select {
	case res := <-results:
		assert.Equal(t, "notam.txt", res.Source)
		assert.Equal(t, 1, res.Stored)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not ingest the document")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	sources, err := st.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "notam.txt", sources[0].Source)
}

func TestWatcherMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreSQL)

	kb, _ := newTestBase(t, nil)
	w := NewWatcher(kb, filepath.Join(t.TempDir(), "nope"), 0, nil)
	assert.Error(t, w.Run(context.Background()))
}
