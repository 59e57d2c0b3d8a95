package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"nansc/internal/logging"
)

// IngestFunc receives the outcome of every re-ingestion the watcher performs.
type IngestFunc func(res IngestResult, err error)

// Watcher re-ingests documents written into a directory. Bursts of events for
// the same file are coalesced.
type Watcher struct {
	base     *Base
	dir      string
	debounce time.Duration
	onIngest IngestFunc
}

// NewWatcher creates a watcher for dir. onIngest may be nil.
func NewWatcher(base *Base, dir string, debounce time.Duration, onIngest IngestFunc) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{base: base, dir: dir, debounce: debounce, onIngest: onIngest}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logging.Knowledge("Watching %s for documents", w.dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !Supported(ev.Name) {
				continue
			}
			logging.KnowledgeDebug("Watcher event %s on %s", ev.Op, ev.Name)
			pending[filepath.Clean(ev.Name)] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.KnowledgeWarn("Watcher error: %v", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			for _, p := range paths {
				res, err := w.base.Reingest(ctx, p)
				if err != nil {
					logging.KnowledgeWarn("Re-ingest %s failed: %v", p, err)
				}
				if w.onIngest != nil {
					w.onIngest(res, err)
				}
			}
		}
	}
}
