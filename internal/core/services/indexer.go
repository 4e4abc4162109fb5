package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Ensure Indexer implements the interfaces.
var (
	_ driving.IndexerHooks = (*Indexer)(nil)
	_ DriftRepairer        = (*Indexer)(nil)
)

// Indexer keeps the fingerprint store synchronised with the document store.
//
// Every hook runs inside one store transaction, so a failed hook leaves the
// index exactly as it was. Hooks for the same (owner, document) are
// serialised; different documents index in parallel.
type Indexer struct {
	store driven.FingerprintStore
	locks *documentLocks

	now   func() time.Time
	newID func() string
}

// NewIndexer creates a new indexer writing to store.
func NewIndexer(store driven.FingerprintStore) *Indexer {
	return &Indexer{
		store: store,
		locks: newDocumentLocks(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// OnDocumentCreated inserts one fingerprint per timed slide.
func (i *Indexer) OnDocumentCreated(ctx context.Context, doc domain.SourceDocument) (domain.IndexStats, error) {
	if err := doc.Validate(); err != nil {
		return domain.IndexStats{}, err
	}

	var stats domain.IndexStats
	err := i.atomic(ctx, doc.OwnerID, doc.ID, func(tx driven.FingerprintTx) error {
		stats = domain.IndexStats{}
		now := i.now()
		for _, slide := range doc.TimedSlides() {
			fp := domain.NewFingerprint(doc.OwnerID, doc.ID, slide)
			fp.ID = i.newID()
			fp.CreatedAt = now
			fp.UpdatedAt = now
			if err := tx.Insert(fp); err != nil {
				return fmt.Errorf("insert slide %s: %w", slide.ID, err)
			}
			stats.Inserted++
		}
		return nil
	})
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index new document %s: %w", doc.ID, err)
	}

	logger.Debug("Indexed new document %s: %d fingerprints", doc.ID, stats.Inserted)
	return stats, nil
}

// OnDocumentUpdated diffs previous against current by slide id and writes
// only what changed. Unchanged canonical (title, content, duration) tuples
// are skipped without touching the store.
func (i *Indexer) OnDocumentUpdated(
	ctx context.Context,
	previous, current domain.SourceDocument,
) (domain.IndexStats, error) {
	if err := current.Validate(); err != nil {
		return domain.IndexStats{}, err
	}
	if previous.ID != current.ID {
		return domain.IndexStats{}, fmt.Errorf("%w: document id changed from %q to %q",
			domain.ErrValidation, previous.ID, current.ID)
	}
	if previous.OwnerID != "" && previous.OwnerID != current.OwnerID {
		return domain.IndexStats{}, fmt.Errorf("%w: document %s moved from %s to %s",
			domain.ErrOwnerMismatch, current.ID, previous.OwnerID, current.OwnerID)
	}

	baseline := make(map[string]domain.CanonicalSlide)
	for _, slide := range previous.TimedSlides() {
		baseline[slide.ID] = slide.Canonical()
	}

	stats, err := i.applyDiff(ctx, current, baseline, false)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index updated document %s: %w", current.ID, err)
	}
	return stats, nil
}

// OnDocumentDeleted removes every fingerprint of the document.
func (i *Indexer) OnDocumentDeleted(ctx context.Context, ownerID, documentID string) (domain.IndexStats, error) {
	if ownerID == "" || documentID == "" {
		return domain.IndexStats{}, fmt.Errorf("%w: owner and document id are required", domain.ErrValidation)
	}

	var stats domain.IndexStats
	err := i.atomic(ctx, ownerID, documentID, func(tx driven.FingerprintTx) error {
		n, err := tx.DeleteAll()
		if err != nil {
			return err
		}
		stats = domain.IndexStats{Deleted: n}
		return nil
	})
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("unindex document %s: %w", documentID, err)
	}

	logger.Debug("Removed document %s: %d fingerprints", documentID, stats.Deleted)
	return stats, nil
}

// Reindex diffs doc against what the store currently holds for it. Rows
// whose normalised fields drifted from their raw fields are rewritten even
// when the raw fields are unchanged.
func (i *Indexer) Reindex(ctx context.Context, doc domain.SourceDocument) (domain.IndexStats, error) {
	if err := doc.Validate(); err != nil {
		return domain.IndexStats{}, err
	}

	stats, err := i.applyDiff(ctx, doc, nil, true)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("reindex document %s: %w", doc.ID, err)
	}
	return stats, nil
}

// RepairDrift rewrites the normalised fields of the document's drifted
// fingerprints. Rows are re-read inside the transaction under the document
// lock, so only rows that are still drifted are touched and a write
// committed after the caller's scan survives.
func (i *Indexer) RepairDrift(ctx context.Context, ownerID, documentID string) (int, error) {
	repaired := 0
	err := i.atomic(ctx, ownerID, documentID, func(tx driven.FingerprintTx) error {
		repaired = 0
		stored, err := tx.List()
		if err != nil {
			return fmt.Errorf("list fingerprints: %w", err)
		}
		now := i.now()
		for _, fp := range stored {
			if !fp.HasDrift() {
				continue
			}
			fp.Renormalise()
			fp.UpdatedAt = now
			if err := tx.Upsert(fp); err != nil {
				return fmt.Errorf("rewrite fingerprint %s: %w", fp.ID, err)
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return repaired, nil
}

// applyDiff brings the stored fingerprints of doc in line with its timed
// slides. A nil baseline means "diff against the store".
func (i *Indexer) applyDiff(
	ctx context.Context,
	doc domain.SourceDocument,
	baseline map[string]domain.CanonicalSlide,
	repairDrift bool,
) (domain.IndexStats, error) {
	var stats domain.IndexStats

	err := i.atomic(ctx, doc.OwnerID, doc.ID, func(tx driven.FingerprintTx) error {
		stats = domain.IndexStats{}

		stored, err := tx.List()
		if err != nil {
			return fmt.Errorf("list fingerprints: %w", err)
		}
		existing := make(map[string]domain.SlideFingerprint, len(stored))
		for _, fp := range stored {
			existing[fp.SourceSlideID] = fp
		}

		base := baseline
		if base == nil {
			base = make(map[string]domain.CanonicalSlide, len(existing))
			for id, fp := range existing {
				base[id] = fp.Canonical()
			}
		}

		now := i.now()
		current := make(map[string]struct{})
		for _, slide := range doc.TimedSlides() {
			current[slide.ID] = struct{}{}

			prev, known := base[slide.ID]
			ex, inStore := existing[slide.ID]

			changed := !known || prev != slide.Canonical()
			if repairDrift && inStore && ex.HasDrift() {
				logger.Error("integrity fault: %v", fmt.Errorf("%w: document %s slide %s",
					domain.ErrIndexDrift, doc.ID, slide.ID))
				changed = true
			}
			if !changed {
				stats.Unchanged++
				continue
			}

			fp := domain.NewFingerprint(doc.OwnerID, doc.ID, slide)
			fp.UpdatedAt = now
			if inStore {
				fp.ID = ex.ID
				fp.CreatedAt = ex.CreatedAt
				if err := tx.Upsert(fp); err != nil {
					return fmt.Errorf("update slide %s: %w", slide.ID, err)
				}
				stats.Updated++
				continue
			}

			fp.ID = i.newID()
			fp.CreatedAt = now
			if err := tx.Insert(fp); err != nil {
				return fmt.Errorf("insert slide %s: %w", slide.ID, err)
			}
			stats.Inserted++
		}

		removed := make([]string, 0)
		for id := range base {
			if _, still := current[id]; !still {
				removed = append(removed, id)
			}
		}
		sort.Strings(removed)
		for _, id := range removed {
			if _, inStore := existing[id]; !inStore {
				continue
			}
			if err := tx.Delete(id); err != nil {
				return fmt.Errorf("delete slide %s: %w", id, err)
			}
			stats.Deleted++
		}
		return nil
	})
	if err != nil {
		return domain.IndexStats{}, err
	}

	logger.Debug("Indexed document %s: +%d ~%d -%d =%d",
		doc.ID, stats.Inserted, stats.Updated, stats.Deleted, stats.Unchanged)
	return stats, nil
}

// atomic serialises on the document lock and runs fn in a store transaction.
func (i *Indexer) atomic(
	ctx context.Context,
	ownerID, documentID string,
	fn func(tx driven.FingerprintTx) error,
) error {
	unlock := i.locks.lock(ownerID, documentID)
	defer unlock()
	return i.store.Atomic(ctx, ownerID, documentID, fn)
}

// documentLocks hands out one mutex per (owner, document). Entries are
// reference counted and dropped once the last holder releases them.
type documentLocks struct {
	mu    sync.Mutex
	locks map[string]*documentLock
}

type documentLock struct {
	mu   sync.Mutex
	refs int
}

func newDocumentLocks() *documentLocks {
	return &documentLocks{locks: make(map[string]*documentLock)}
}

func (d *documentLocks) lock(ownerID, documentID string) func() {
	key := ownerID + "\x00" + documentID

	d.mu.Lock()
	l, ok := d.locks[key]
	if !ok {
		l = &documentLock{}
		d.locks[key] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, key)
		}
		d.mu.Unlock()
	}
}
