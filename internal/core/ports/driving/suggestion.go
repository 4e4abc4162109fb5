package driving

import (
	"context"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// SuggestionService answers duration queries.
type SuggestionService interface {
	// Suggest returns a duration suggestion, or nil when there is none.
	// Only validation and unknown-owner failures are returned as errors;
	// everything else degrades to no suggestion.
	Suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.DurationSuggestion, error)
}
