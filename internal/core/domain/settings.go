package domain

import (
	"fmt"
	"time"
)

// Default suggestion thresholds. Tier 1 only narrows the candidate set.
const (
	DefaultTitleThreshold   = 0.95
	DefaultContentThreshold = 0.90
)

// Default per-owner request limits for the MCP surface.
const (
	DefaultRateLimit = 5.0
	DefaultBurst     = 10
)

// DefaultIntegrityInterval is how often long-running commands sweep for drift.
const DefaultIntegrityInterval = time.Hour

// Settings holds the tunable parts of the suggestion pipeline.
type Settings struct {
	Suggestion SuggestionSettings
	MCP        MCPSettings
	Storage    StorageSettings
	Watch      WatchSettings
	Integrity  IntegritySettings
}

// SuggestionSettings configures the two matching tiers.
type SuggestionSettings struct {
	TitleThreshold   float64
	ContentThreshold float64
}

// MCPSettings configures caller-side rate limiting.
type MCPSettings struct {
	// RateLimit is requests per second allowed per owner.
	RateLimit float64

	// Burst is the largest burst allowed per owner.
	Burst int
}

// StorageSettings configures where the fingerprint database lives.
type StorageSettings struct {
	// DataDir holds pacer.db. Empty means ~/.pacer/data.
	DataDir string
}

// WatchSettings configures the deck directory watcher.
type WatchSettings struct {
	// Owner is assigned to watched decks that name no owner.
	Owner string
}

// IntegritySettings configures the background drift sweep.
type IntegritySettings struct {
	// Interval between sweeps. Zero disables sweeping.
	Interval time.Duration
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		Suggestion: SuggestionSettings{
			TitleThreshold:   DefaultTitleThreshold,
			ContentThreshold: DefaultContentThreshold,
		},
		MCP: MCPSettings{
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Integrity: IntegritySettings{
			Interval: DefaultIntegrityInterval,
		},
	}
}

// Validate checks that thresholds lie in [0, 1), limits are positive and the
// sweep interval is not negative.
func (s *Settings) Validate() error {
	if err := validThreshold("title", s.Suggestion.TitleThreshold); err != nil {
		return err
	}
	if err := validThreshold("content", s.Suggestion.ContentThreshold); err != nil {
		return err
	}
	if s.MCP.RateLimit <= 0 {
		return fmt.Errorf("%w: mcp rate limit must be positive", ErrValidation)
	}
	if s.MCP.Burst <= 0 {
		return fmt.Errorf("%w: mcp burst must be positive", ErrValidation)
	}
	if s.Integrity.Interval < 0 {
		return fmt.Errorf("%w: integrity interval must not be negative", ErrValidation)
	}
	return nil
}

// validThreshold rejects 1.0 and above: similarity must strictly exceed the
// threshold, so 1.0 could never match.
func validThreshold(name string, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("%w: %s threshold must be in [0, 1), got %v", ErrValidation, name, v)
	}
	return nil
}
