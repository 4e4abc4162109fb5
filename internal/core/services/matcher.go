package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Matcher finds an owner's fingerprints that resemble a slide.
//
// Matching is two-tier and always in this order: a strict title search
// against the store's title index shrinks the candidate set, then content
// similarity is computed for the survivors only. There is no fallback to a
// looser search when the title tier comes back empty.
type Matcher struct {
	store driven.FingerprintStore
}

// NewMatcher creates a matcher over a fingerprint store.
func NewMatcher(store driven.FingerprintStore) *Matcher {
	return &Matcher{store: store}
}

// Match returns candidates whose title similarity exceeds titleThreshold
// and whose content similarity exceeds contentThreshold.
// Store failures are wrapped with domain.ErrStoreUnavailable.
func (m *Matcher) Match(
	ctx context.Context,
	ownerID, title string,
	content []string,
	titleThreshold, contentThreshold float64,
) ([]domain.SimilarityCandidate, error) {
	titleNorm := domain.NormaliseText(title)
	if titleNorm == "" {
		logger.Debug("Title normalises to empty, nothing to match")
		return nil, nil
	}

	// Tier 1: title
	hits, err := m.store.FindSimilar(ctx, ownerID, domain.FieldTitle, titleNorm, titleThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: title search: %w", domain.ErrStoreUnavailable, err)
	}
	logger.Debug("Tier 1: %d title matches above %.2f", len(hits), titleThreshold)
	if len(hits) == 0 {
		return nil, nil
	}

	// Tier 2: content
	contentGrams := domain.Trigrams(domain.NormaliseText(domain.FlattenContent(content)))
	candidates := make([]domain.SimilarityCandidate, 0, len(hits))
	for i := range hits {
		fp := hits[i].Fingerprint
		if fp.OwnerID != ownerID || hits[i].Score <= titleThreshold {
			continue
		}
		contentSim := contentGrams.Jaccard(domain.Trigrams(fp.ContentNormalized))
		if contentSim <= contentThreshold {
			continue
		}
		candidates = append(candidates, domain.SimilarityCandidate{
			Fingerprint:       fp,
			TitleSimilarity:   hits[i].Score,
			ContentSimilarity: contentSim,
		})
	}
	logger.Debug("Tier 2: %d content matches above %.2f", len(candidates), contentThreshold)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].TitleSimilarity != candidates[j].TitleSimilarity {
			return candidates[i].TitleSimilarity > candidates[j].TitleSimilarity
		}
		if candidates[i].ContentSimilarity != candidates[j].ContentSimilarity {
			return candidates[i].ContentSimilarity > candidates[j].ContentSimilarity
		}
		return candidates[i].Fingerprint.ID < candidates[j].Fingerprint.ID
	})

	return candidates, nil
}
