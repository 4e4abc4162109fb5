package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
)

var errStoreDown = errors.New("store down")

// mockFingerprintStore returns canned similarity hits and records queries.
type mockFingerprintStore struct {
	mu sync.Mutex

	hits    map[domain.Field][]domain.ScoredFingerprint
	findErr error
	queries []mockQuery
}

type mockQuery struct {
	ownerID    string
	field      domain.Field
	normalised string
	threshold  float64
}

func (m *mockFingerprintStore) Atomic(
	_ context.Context, _, _ string, _ func(tx driven.FingerprintTx) error,
) error {
	return errors.New("not implemented")
}

func (m *mockFingerprintStore) FindSimilar(
	_ context.Context, ownerID string, field domain.Field, normalised string, threshold float64,
) ([]domain.ScoredFingerprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, mockQuery{ownerID, field, normalised, threshold})
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.hits[field], nil
}

func (m *mockFingerprintStore) ListByOwner(_ context.Context, _ string) ([]domain.SlideFingerprint, error) {
	return nil, nil
}

func (m *mockFingerprintStore) Owners(_ context.Context) ([]string, error) {
	return nil, nil
}

// mockOwnerDirectory resolves a fixed set of owners.
type mockOwnerDirectory struct {
	known map[string]bool
	err   error
}

func (m *mockOwnerDirectory) Exists(_ context.Context, ownerID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.known[ownerID], nil
}

// failingStore wraps a store and fails the nth write inside a transaction.
type failingStore struct {
	driven.FingerprintStore
	failAt int
}

func (f *failingStore) Atomic(
	ctx context.Context, ownerID, documentID string, fn func(tx driven.FingerprintTx) error,
) error {
	return f.FingerprintStore.Atomic(ctx, ownerID, documentID, func(tx driven.FingerprintTx) error {
		return fn(&failingTx{FingerprintTx: tx, failAt: f.failAt})
	})
}

type failingTx struct {
	driven.FingerprintTx
	failAt int
	writes int
}

func (t *failingTx) step() error {
	t.writes++
	if t.writes == t.failAt {
		return errStoreDown
	}
	return nil
}

func (t *failingTx) Insert(fp domain.SlideFingerprint) error {
	if err := t.step(); err != nil {
		return err
	}
	return t.FingerprintTx.Insert(fp)
}

func (t *failingTx) Upsert(fp domain.SlideFingerprint) error {
	if err := t.step(); err != nil {
		return err
	}
	return t.FingerprintTx.Upsert(fp)
}

func (t *failingTx) Delete(slideID string) error {
	if err := t.step(); err != nil {
		return err
	}
	return t.FingerprintTx.Delete(slideID)
}
