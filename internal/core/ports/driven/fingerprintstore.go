package driven

import (
	"context"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// FingerprintStore persists slide fingerprints scoped per owner and answers
// similarity queries over the normalised title and content fields.
// Backed by SQLite in production and by memory in tests.
type FingerprintStore interface {
	// Atomic runs fn inside one transaction bound to (ownerID, documentID).
	// The transaction commits when fn returns nil and rolls back otherwise,
	// so a reader never observes a half-applied document write.
	Atomic(ctx context.Context, ownerID, documentID string, fn func(tx FingerprintTx) error) error

	// FindSimilar returns the owner's fingerprints whose normalised field has
	// trigram similarity strictly greater than threshold with normalised.
	FindSimilar(
		ctx context.Context,
		ownerID string,
		field domain.Field,
		normalised string,
		threshold float64,
	) ([]domain.ScoredFingerprint, error)

	// ListByOwner returns every fingerprint of an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.SlideFingerprint, error)

	// Owners returns every owner with at least one fingerprint.
	Owners(ctx context.Context) ([]string, error)
}

// FingerprintTx is the write view of one document inside a transaction.
// All writes fail closed with domain.ErrOwnerMismatch when the fingerprint,
// or the document's existing fingerprints, belong to another owner.
type FingerprintTx interface {
	// List returns the document's stored fingerprints.
	List() ([]domain.SlideFingerprint, error)

	// Insert adds a new fingerprint.
	Insert(fp domain.SlideFingerprint) error

	// Upsert inserts or replaces the fingerprint for fp.SourceSlideID.
	Upsert(fp domain.SlideFingerprint) error

	// Delete removes the fingerprint of one slide.
	Delete(slideID string) error

	// DeleteAll removes every fingerprint of the document and returns how
	// many were removed.
	DeleteAll() (int, error)
}

// OwnerDirectory resolves owner identifiers.
type OwnerDirectory interface {
	// Exists reports whether ownerID is a known owner.
	Exists(ctx context.Context, ownerID string) (bool, error)
}
