package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
)

// Ensure FingerprintStore implements the interfaces.
var (
	_ driven.FingerprintStore = (*FingerprintStore)(nil)
	_ driven.OwnerDirectory   = (*FingerprintStore)(nil)
)

// FingerprintStore is an in-memory implementation of driven.FingerprintStore.
// Similarity queries scan the owner's fingerprints linearly.
type FingerprintStore struct {
	mu sync.RWMutex

	// documents maps document ID to its fingerprints keyed by slide ID.
	documents map[string]map[string]domain.SlideFingerprint
	docOwner  map[string]string
	owners    map[string]struct{}

	writes int
}

// NewFingerprintStore creates a new in-memory fingerprint store.
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{
		documents: make(map[string]map[string]domain.SlideFingerprint),
		docOwner:  make(map[string]string),
		owners:    make(map[string]struct{}),
	}
}

// RegisterOwner makes an owner known before anything is indexed for it.
func (s *FingerprintStore) RegisterOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[ownerID] = struct{}{}
}

// Writes returns the number of committed row writes.
func (s *FingerprintStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Atomic runs fn against a staged copy of the document and applies it only
// when fn returns nil.
func (s *FingerprintStore) Atomic(
	ctx context.Context,
	ownerID, documentID string,
	fn func(tx driven.FingerprintTx) error,
) error {
	if ownerID == "" || documentID == "" {
		return fmt.Errorf("%w: owner and document id are required", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fingerprintTx{
		ownerID:       ownerID,
		documentID:    documentID,
		existingOwner: s.docOwner[documentID],
		rows:          make(map[string]domain.SlideFingerprint),
	}
	for id, fp := range s.documents[documentID] {
		tx.rows[id] = fp
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(tx.rows) == 0 {
		delete(s.documents, documentID)
		delete(s.docOwner, documentID)
	} else {
		s.documents[documentID] = tx.rows
		s.docOwner[documentID] = ownerID
		s.owners[ownerID] = struct{}{}
	}
	s.writes += tx.writes
	return nil
}

// FindSimilar returns the owner's fingerprints scoring strictly above
// threshold on field, best first.
func (s *FingerprintStore) FindSimilar(
	ctx context.Context,
	ownerID string,
	field domain.Field,
	normalised string,
	threshold float64,
) ([]domain.ScoredFingerprint, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrValidation, field)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := domain.Trigrams(normalised)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []domain.ScoredFingerprint
	for docID, rows := range s.documents {
		if s.docOwner[docID] != ownerID {
			continue
		}
		for _, fp := range rows {
			score := query.Jaccard(domain.Trigrams(field.Value(&fp)))
			if score > threshold {
				hits = append(hits, domain.ScoredFingerprint{Fingerprint: fp, Score: score})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Fingerprint.ID < hits[j].Fingerprint.ID
	})
	return hits, nil
}

// ListByOwner returns every fingerprint of an owner ordered by document and slide.
func (s *FingerprintStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.SlideFingerprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SlideFingerprint
	for docID, rows := range s.documents {
		if s.docOwner[docID] != ownerID {
			continue
		}
		for _, fp := range rows {
			out = append(out, fp)
		}
	}
	sortFingerprints(out)
	return out, nil
}

// Owners returns every owner that currently has fingerprints.
func (s *FingerprintStore) Owners(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, owner := range s.docOwner {
		seen[owner] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for owner := range seen {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether the owner was ever registered or indexed.
func (s *FingerprintStore) Exists(ctx context.Context, ownerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[ownerID]
	return ok, nil
}

// fingerprintTx stages the writes of one document.
type fingerprintTx struct {
	ownerID       string
	documentID    string
	existingOwner string
	rows          map[string]domain.SlideFingerprint
	writes        int
}

func (t *fingerprintTx) checkDocument() error {
	if t.existingOwner != "" && t.existingOwner != t.ownerID {
		return fmt.Errorf("%w: document %s belongs to another owner", domain.ErrOwnerMismatch, t.documentID)
	}
	return nil
}

func (t *fingerprintTx) checkWrite(fp *domain.SlideFingerprint) error {
	if err := t.checkDocument(); err != nil {
		return err
	}
	if fp.OwnerID != t.ownerID {
		return fmt.Errorf("%w: fingerprint owner %q, transaction owner %q",
			domain.ErrOwnerMismatch, fp.OwnerID, t.ownerID)
	}
	if fp.SourceDocumentID != t.documentID {
		return fmt.Errorf("%w: fingerprint document %q outside transaction document %q",
			domain.ErrValidation, fp.SourceDocumentID, t.documentID)
	}
	return fp.Validate()
}

func (t *fingerprintTx) List() ([]domain.SlideFingerprint, error) {
	if err := t.checkDocument(); err != nil {
		return nil, err
	}
	out := make([]domain.SlideFingerprint, 0, len(t.rows))
	for _, fp := range t.rows {
		out = append(out, fp)
	}
	sortFingerprints(out)
	return out, nil
}

func (t *fingerprintTx) Insert(fp domain.SlideFingerprint) error {
	if err := t.checkWrite(&fp); err != nil {
		return err
	}
	if _, ok := t.rows[fp.SourceSlideID]; ok {
		return fmt.Errorf("%w: slide %s of document %s is already indexed",
			domain.ErrValidation, fp.SourceSlideID, fp.SourceDocumentID)
	}
	t.rows[fp.SourceSlideID] = fp
	t.writes++
	return nil
}

func (t *fingerprintTx) Upsert(fp domain.SlideFingerprint) error {
	if err := t.checkWrite(&fp); err != nil {
		return err
	}
	t.rows[fp.SourceSlideID] = fp
	t.writes++
	return nil
}

func (t *fingerprintTx) Delete(slideID string) error {
	if err := t.checkDocument(); err != nil {
		return err
	}
	if _, ok := t.rows[slideID]; !ok {
		return fmt.Errorf("slide %s: %w", slideID, domain.ErrNotFound)
	}
	delete(t.rows, slideID)
	t.writes++
	return nil
}

func (t *fingerprintTx) DeleteAll() (int, error) {
	if err := t.checkDocument(); err != nil {
		return 0, err
	}
	n := len(t.rows)
	t.rows = make(map[string]domain.SlideFingerprint)
	t.writes += n
	return n, nil
}

func sortFingerprints(fps []domain.SlideFingerprint) {
	sort.Slice(fps, func(i, j int) bool {
		if fps[i].SourceDocumentID != fps[j].SourceDocumentID {
			return fps[i].SourceDocumentID < fps[j].SourceDocumentID
		}
		return fps[i].SourceSlideID < fps[j].SourceSlideID
	})
}
