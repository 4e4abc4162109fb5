package mcp

import (
	"context"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// mockSuggestionService is a mock implementation of driving.SuggestionService.
type mockSuggestionService struct {
	suggestion *domain.DurationSuggestion
	err        error
	requests   []domain.SuggestionRequest
}

func (m *mockSuggestionService) Suggest(
	_ context.Context,
	req domain.SuggestionRequest,
) (*domain.DurationSuggestion, error) {
	m.requests = append(m.requests, req)
	return m.suggestion, m.err
}

// mockIndexer is a mock implementation of driving.IndexerHooks.
type mockIndexer struct {
	stats   domain.IndexStats
	err     error
	indexed []domain.SourceDocument
}

func (m *mockIndexer) OnDocumentCreated(_ context.Context, doc domain.SourceDocument) (domain.IndexStats, error) {
	m.indexed = append(m.indexed, doc)
	return m.stats, m.err
}

func (m *mockIndexer) OnDocumentUpdated(
	_ context.Context,
	_, current domain.SourceDocument,
) (domain.IndexStats, error) {
	m.indexed = append(m.indexed, current)
	return m.stats, m.err
}

func (m *mockIndexer) OnDocumentDeleted(_ context.Context, _, _ string) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexer) Reindex(_ context.Context, doc domain.SourceDocument) (domain.IndexStats, error) {
	m.indexed = append(m.indexed, doc)
	return m.stats, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.Settings
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(_, _ string) error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}
