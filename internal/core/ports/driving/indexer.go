package driving

import (
	"context"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// IndexerHooks keep the fingerprint store in step with the document store.
// The document store calls them on every committed write.
type IndexerHooks interface {
	// OnDocumentCreated indexes every timed slide of a new document.
	OnDocumentCreated(ctx context.Context, doc domain.SourceDocument) (domain.IndexStats, error)

	// OnDocumentUpdated applies the diff between two versions of a document.
	OnDocumentUpdated(ctx context.Context, previous, current domain.SourceDocument) (domain.IndexStats, error)

	// OnDocumentDeleted removes every fingerprint of a document.
	OnDocumentDeleted(ctx context.Context, ownerID, documentID string) (domain.IndexStats, error)

	// Reindex diffs a document against its stored fingerprints, rewriting
	// anything stale. Used for forced re-indexing and drift repair.
	Reindex(ctx context.Context, doc domain.SourceDocument) (domain.IndexStats, error)
}
