package mcp

import (
	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Suggestion answers duration queries.
	Suggestion driving.SuggestionService

	// Indexer receives decks pushed through the index_deck tool.
	// Optional: the tool is not registered without it.
	Indexer driving.IndexerHooks

	// Settings backs the settings resource. Optional.
	Settings driving.SettingsService

	// Limits bounds requests per owner. Zero values fall back to defaults.
	Limits domain.MCPSettings
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Suggestion == nil {
		return ErrMissingSuggestionService
	}
	return nil
}

func (p *Ports) limits() domain.MCPSettings {
	l := p.Limits
	if l.RateLimit <= 0 {
		l.RateLimit = domain.DefaultRateLimit
	}
	if l.Burst <= 0 {
		l.Burst = domain.DefaultBurst
	}
	return l
}
