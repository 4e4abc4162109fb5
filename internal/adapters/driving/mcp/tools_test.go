package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

func sampleSuggestion() *domain.DurationSuggestion {
	return &domain.DurationSuggestion{
		AverageDuration:        13.125,
		MedianDuration:         14,
		P25:                    11.25,
		P75:                    14.75,
		SampleSize:             8,
		CoefficientOfVariation: 0.145,
		Confidence:             domain.ConfidenceHigh,
		AvgTitleSimilarity:     1,
		AvgContentSimilarity:   0.97,
	}
}

func TestServer_handleSuggest(t *testing.T) {
	ctx := context.Background()

	t.Run("returns rounded and raw statistics", func(t *testing.T) {
		mock := &mockSuggestionService{suggestion: sampleSuggestion()}
		server, err := NewServer(&Ports{Suggestion: mock})
		require.NoError(t, err)

		input := SuggestInput{Owner: "alice", Title: "Gradient Descent", Content: []string{"step size"}}
		_, output, err := server.handleSuggest(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, output.Found)
		require.NotNil(t, output.Rounded)
		assert.Equal(t, 13, output.Rounded.AverageDuration)
		assert.Equal(t, 14, output.Rounded.MedianDuration)
		assert.Equal(t, 11, output.Rounded.P25)
		assert.Equal(t, 15, output.Rounded.P75)
		assert.Equal(t, domain.ConfidenceHigh, output.Rounded.Confidence)
		require.NotNil(t, output.Statistics)
		assert.InDelta(t, 13.125, output.Statistics.AverageDuration, 1e-9)

		require.Len(t, mock.requests, 1)
		assert.Equal(t, "alice", mock.requests[0].OwnerID)
		assert.Equal(t, "Gradient Descent", mock.requests[0].Title)
		assert.Equal(t, []string{"step size"}, mock.requests[0].Content)
	})

	t.Run("no suggestion reports not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Suggestion: &mockSuggestionService{}})
		require.NoError(t, err)

		_, output, err := server.handleSuggest(ctx, nil, SuggestInput{Owner: "alice", Title: "x"})

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Nil(t, output.Rounded)
		assert.Nil(t, output.Statistics)
	})

	t.Run("missing content becomes an empty sequence", func(t *testing.T) {
		mock := &mockSuggestionService{}
		server, err := NewServer(&Ports{Suggestion: mock})
		require.NoError(t, err)

		_, _, err = server.handleSuggest(ctx, nil, SuggestInput{Owner: "alice", Title: "Intro"})

		require.NoError(t, err)
		require.Len(t, mock.requests, 1)
		assert.NotNil(t, mock.requests[0].Content)
		assert.Empty(t, mock.requests[0].Content)
	})

	t.Run("unknown owner maps to not authorised", func(t *testing.T) {
		mock := &mockSuggestionService{err: domain.ErrUnknownOwner}
		server, err := NewServer(&Ports{Suggestion: mock})
		require.NoError(t, err)

		_, _, err = server.handleSuggest(ctx, nil, SuggestInput{Owner: "mallory", Title: "x"})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotAuthorised)
		assert.Contains(t, err.Error(), "mallory")
	})

	t.Run("validation error is returned", func(t *testing.T) {
		mock := &mockSuggestionService{err: domain.ErrValidation}
		server, err := NewServer(&Ports{Suggestion: mock})
		require.NoError(t, err)

		_, _, err = server.handleSuggest(ctx, nil, SuggestInput{Owner: "alice"})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rate limit rejects excess requests", func(t *testing.T) {
		mock := &mockSuggestionService{}
		ports := &Ports{
			Suggestion: mock,
			Limits:     domain.MCPSettings{RateLimit: 0.001, Burst: 2},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SuggestInput{Owner: "alice", Title: "Intro"}
		for i := 0; i < 2; i++ {
			_, _, err = server.handleSuggest(ctx, nil, input)
			require.NoError(t, err)
		}

		_, _, err = server.handleSuggest(ctx, nil, input)
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Len(t, mock.requests, 2, "rejected request never reaches the service")

		_, _, err = server.handleSuggest(ctx, nil, SuggestInput{Owner: "bob", Title: "Intro"})
		assert.NoError(t, err)
	})
}

func TestServer_handleIndexDeck(t *testing.T) {
	ctx := context.Background()

	t.Run("reindexes the deck", func(t *testing.T) {
		indexer := &mockIndexer{stats: domain.IndexStats{Inserted: 2, Unchanged: 1}}
		server, err := NewServer(&Ports{Suggestion: &mockSuggestionService{}, Indexer: indexer})
		require.NoError(t, err)

		input := IndexDeckInput{
			Owner: "alice",
			ID:    "ml-101",
			Slides: []domain.Slide{
				{ID: "s1", Title: "Intro", Content: []string{"hello"}, DurationMinutes: 3},
			},
		}
		_, output, err := server.handleIndexDeck(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, IndexDeckOutput{Inserted: 2, Unchanged: 1}, output)
		require.Len(t, indexer.indexed, 1)
		assert.Equal(t, "ml-101", indexer.indexed[0].ID)
		assert.Equal(t, "alice", indexer.indexed[0].OwnerID)
		assert.Len(t, indexer.indexed[0].Slides, 1)
	})

	t.Run("owner mismatch maps to not authorised", func(t *testing.T) {
		indexer := &mockIndexer{err: domain.ErrOwnerMismatch}
		server, err := NewServer(&Ports{Suggestion: &mockSuggestionService{}, Indexer: indexer})
		require.NoError(t, err)

		_, _, err = server.handleIndexDeck(ctx, nil, IndexDeckInput{Owner: "bob", ID: "ml-101"})

		assert.ErrorIs(t, err, ErrNotAuthorised)
	})

	t.Run("indexer error is returned", func(t *testing.T) {
		boom := errors.New("disk full")
		indexer := &mockIndexer{err: boom}
		server, err := NewServer(&Ports{Suggestion: &mockSuggestionService{}, Indexer: indexer})
		require.NoError(t, err)

		_, _, err = server.handleIndexDeck(ctx, nil, IndexDeckInput{Owner: "alice", ID: "ml-101"})

		assert.ErrorIs(t, err, boom)
	})
}

func TestMapError(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "unknown owner", err: domain.ErrUnknownOwner, target: ErrNotAuthorised},
		{name: "owner mismatch", err: domain.ErrOwnerMismatch, target: ErrNotAuthorised},
		{name: "validation passes through", err: domain.ErrValidation, target: domain.ErrValidation},
		{name: "other passes through", err: boom, target: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("alice", tt.err), tt.target)
		})
	}
}
