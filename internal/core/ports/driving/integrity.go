package driving

import (
	"context"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// IntegrityService detects and repairs index drift.
type IntegrityService interface {
	// Verify recomputes normalised fields for an owner's fingerprints, or
	// every owner's when ownerID is empty. Drifted fingerprints are
	// rewritten when repair is true.
	Verify(ctx context.Context, ownerID string, repair bool) (*domain.DriftReport, error)
}

// IntegritySweeper repairs drift in the background of long-running commands.
type IntegritySweeper interface {
	// Start sweeps until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop ends a running Start.
	Stop() error
}
