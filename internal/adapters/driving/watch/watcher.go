// Package watch keeps the fingerprint index in step with a directory of deck
// files. Filesystem events are translated into indexer hooks: a deck seen for
// the first time is re-indexed against the store, a saved deck is diffed
// against the version last indexed, and a removed or renamed deck is
// unindexed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pacer/internal/adapters/driven/deckfile"
	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Watcher maps deck file events in one directory onto indexer hooks.
type Watcher struct {
	indexer      driving.IndexerHooks
	dir          string
	defaultOwner string

	mu   sync.Mutex
	fw   *fsnotify.Watcher
	seen map[string]*domain.SourceDocument
}

// New creates a watcher for dir. Decks that name no owner are indexed
// under defaultOwner.
func New(indexer driving.IndexerHooks, dir, defaultOwner string) *Watcher {
	return &Watcher{
		indexer:      indexer,
		dir:          dir,
		defaultOwner: defaultOwner,
		seen:         make(map[string]*domain.SourceDocument),
	}
}

// Open registers the directory with the filesystem watcher. Call it before
// Sync so a deck saved during the initial scan still produces an event.
func (w *Watcher) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fw != nil {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.fw = fw
	return nil
}

// Close releases the filesystem watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fw == nil {
		return nil
	}
	err := w.fw.Close()
	w.fw = nil
	return err
}

// Sync indexes every deck currently in the directory. Unreadable decks are
// skipped with a warning.
func (w *Watcher) Sync(ctx context.Context) (domain.IndexStats, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("reading %s: %w", w.dir, err)
	}

	var total domain.IndexStats
	for _, entry := range entries {
		path := filepath.Join(w.dir, entry.Name())
		if !w.watched(path) || entry.IsDir() {
			continue
		}
		stats, err := w.index(ctx, path)
		if err != nil {
			if isDeckError(err) {
				logger.Warn("skipping %s: %v", path, err)
				continue
			}
			return total, err
		}
		total.Add(stats)
	}
	return total, nil
}

// Run watches the directory until ctx is cancelled, opening the watcher if
// Open was not called. Indexing failures are logged and do not stop it.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Open(); err != nil {
		return err
	}
	defer w.Close()

	w.mu.Lock()
	fw := w.fw
	w.mu.Unlock()
	logger.Info("Watching %s for deck changes", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, err := w.handleFsEvent(ctx, event); err != nil {
				logger.Warn("%s: %v", event.Name, err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error: %v", err)
		}
	}
}

// Tracked returns the deck files currently known to the watcher.
func (w *Watcher) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.seen))
	for p := range w.seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// handleFsEvent applies one filesystem event. It reports whether the event
// reached the indexer.
func (w *Watcher) handleFsEvent(ctx context.Context, event fsnotify.Event) (bool, error) {
	if !w.watched(event.Name) {
		return false, nil
	}

	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return w.unindex(ctx, event.Name)
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return false, nil
		}
		stats, err := w.index(ctx, event.Name)
		if err != nil {
			return false, err
		}
		logger.Debug("Indexed %s: +%d ~%d -%d", event.Name, stats.Inserted, stats.Updated, stats.Deleted)
		return true, nil
	default:
		return false, nil
	}
}

// index loads a deck and hands it to the indexer. A deck saved under the
// same identity is diffed against the version last indexed from path; one
// seen for the first time is diffed against the store. A deck whose id or
// owner changed is unindexed under its old identity first.
func (w *Watcher) index(ctx context.Context, path string) (domain.IndexStats, error) {
	doc, err := deckfile.Load(path, w.defaultOwner)
	if err != nil {
		return domain.IndexStats{}, err
	}

	w.mu.Lock()
	prev := w.seen[path]
	w.mu.Unlock()

	var total domain.IndexStats
	var stats domain.IndexStats
	switch {
	case prev != nil && prev.OwnerID == doc.OwnerID && prev.ID == doc.ID:
		stats, err = w.indexer.OnDocumentUpdated(ctx, *prev, *doc)
	case prev != nil:
		deleted, delErr := w.indexer.OnDocumentDeleted(ctx, prev.OwnerID, prev.ID)
		if delErr != nil {
			return domain.IndexStats{}, delErr
		}
		total.Add(deleted)
		stats, err = w.indexer.Reindex(ctx, *doc)
	default:
		stats, err = w.indexer.Reindex(ctx, *doc)
	}
	if err != nil {
		return total, err
	}
	total.Add(stats)

	w.mu.Lock()
	w.seen[path] = doc
	w.mu.Unlock()
	return total, nil
}

// unindex drops the document last indexed from path.
func (w *Watcher) unindex(ctx context.Context, path string) (bool, error) {
	w.mu.Lock()
	prev := w.seen[path]
	w.mu.Unlock()
	if prev == nil {
		return false, nil
	}

	stats, err := w.indexer.OnDocumentDeleted(ctx, prev.OwnerID, prev.ID)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()

	logger.Debug("Unindexed %s: -%d", path, stats.Deleted)
	return true, nil
}

// watched reports whether path is a visible deck file.
func (w *Watcher) watched(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".") && deckfile.IsDeckFile(path)
}

// isDeckError reports whether err came from a malformed deck rather than
// the indexer.
func isDeckError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, deckfile.ErrMalformedDeck) ||
		errors.Is(err, os.ErrNotExist)
}
