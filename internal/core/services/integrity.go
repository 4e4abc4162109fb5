package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Ensure IntegrityService implements the interface.
var _ driving.IntegrityService = (*IntegrityService)(nil)

// DriftRepairer rewrites a document's drifted fingerprints. *Indexer
// implements it under the same document lock as its hooks.
type DriftRepairer interface {
	RepairDrift(ctx context.Context, ownerID, documentID string) (int, error)
}

// IntegrityService checks stored fingerprints against their raw fields.
type IntegrityService struct {
	store    driven.FingerprintStore
	repairer DriftRepairer
}

// NewIntegrityService creates a new integrity service. Repairs go through
// repairer so they serialise with indexer writes to the same document.
func NewIntegrityService(store driven.FingerprintStore, repairer DriftRepairer) *IntegrityService {
	return &IntegrityService{
		store:    store,
		repairer: repairer,
	}
}

// Verify recomputes normalised fields and reports every mismatch as an
// integrity fault. With repair set, drifted fingerprints are re-indexed
// from their raw fields, one transaction per document. The scan is only a
// hint: repair re-reads each document inside its transaction.
func (s *IntegrityService) Verify(ctx context.Context, ownerID string, repair bool) (*domain.DriftReport, error) {
	logger.Section("Integrity Check")

	if repair && s.repairer == nil {
		return nil, fmt.Errorf("%w: repair requires an indexer", domain.ErrValidation)
	}

	owners := []string{ownerID}
	if ownerID == "" {
		var err error
		owners, err = s.store.Owners(ctx)
		if err != nil {
			return nil, fmt.Errorf("list owners: %w", err)
		}
	}

	report := &domain.DriftReport{}
	for _, owner := range owners {
		fps, err := s.store.ListByOwner(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("list fingerprints for %s: %w", owner, err)
		}

		seen := make(map[string]struct{})
		var documents []string
		for _, fp := range fps {
			report.Checked++
			if !fp.HasDrift() {
				continue
			}
			logger.Error("integrity fault: %v", fmt.Errorf("%w: fingerprint %s (document %s, slide %s)",
				domain.ErrIndexDrift, fp.ID, fp.SourceDocumentID, fp.SourceSlideID))
			report.Drifted = append(report.Drifted, fp)
			if _, ok := seen[fp.SourceDocumentID]; !ok {
				seen[fp.SourceDocumentID] = struct{}{}
				documents = append(documents, fp.SourceDocumentID)
			}
		}

		if !repair {
			continue
		}
		for _, docID := range documents {
			n, err := s.repairer.RepairDrift(ctx, owner, docID)
			if err != nil {
				return report, fmt.Errorf("repair document %s: %w", docID, err)
			}
			report.Repaired += n
		}
	}

	logger.Info("Checked %d fingerprints: %d drifted, %d repaired",
		report.Checked, len(report.Drifted), report.Repaired)
	return report, nil
}
