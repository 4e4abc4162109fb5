package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// SuggestionService turns a slide into a duration suggestion.
// It holds no per-request state; the store is the only shared resource.
type SuggestionService struct {
	matcher  *Matcher
	owners   driven.OwnerDirectory
	settings domain.SuggestionSettings
}

// NewSuggestionService creates a new suggestion service.
// The owners parameter is optional (can be nil), in which case every
// non-empty owner id is accepted.
func NewSuggestionService(
	store driven.FingerprintStore,
	owners driven.OwnerDirectory,
	settings domain.SuggestionSettings,
) *SuggestionService {
	return &SuggestionService{
		matcher:  NewMatcher(store),
		owners:   owners,
		settings: settings,
	}
}

// Suggest runs match -> outlier filter -> aggregate -> confidence.
//
// Returns (nil, nil) when there is no suggestion, including when the store
// is unavailable. Validation failures wrap domain.ErrValidation and
// unresolved owners wrap domain.ErrUnknownOwner.
func (s *SuggestionService) Suggest(
	ctx context.Context,
	req domain.SuggestionRequest,
) (*domain.DurationSuggestion, error) {
	logger.Section("Duration Suggestion")

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.owners != nil {
		known, err := s.owners.Exists(ctx, req.OwnerID)
		if err != nil {
			logger.Warn("Owner lookup failed, no suggestion: %v", err)
			return nil, nil
		}
		if !known {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOwner, req.OwnerID)
		}
	}

	candidates, err := s.matcher.Match(ctx, req.OwnerID, req.Title, req.Content,
		s.settings.TitleThreshold, s.settings.ContentThreshold)
	if err != nil {
		logger.Warn("No suggestion: %v", err)
		return nil, nil
	}
	if len(candidates) == 0 {
		logger.Debug("No similar slides for %q", req.Title)
		return nil, nil
	}

	kept, durations := filterCandidates(candidates)
	logger.Debug("Outlier filter kept %d of %d", len(kept), len(candidates))

	suggestion := Aggregate(durations, kept)
	if suggestion != nil {
		logger.Info("Suggested %.1f min (n=%d, cv=%.2f, %s)",
			suggestion.AverageDuration, suggestion.SampleSize,
			suggestion.CoefficientOfVariation, suggestion.Confidence)
	}
	return suggestion, nil
}
