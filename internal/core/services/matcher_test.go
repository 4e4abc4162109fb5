package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

func scored(id, owner, title string, content []string, minutes, score float64) domain.ScoredFingerprint {
	fp := domain.NewFingerprint(owner, "deck-"+id, domain.Slide{
		ID: id, Title: title, Content: content, DurationMinutes: minutes,
	})
	fp.ID = id
	return domain.ScoredFingerprint{Fingerprint: fp, Score: score}
}

func TestMatcher_TwoTiers(t *testing.T) {
	content := []string{"supervised learning", "unsupervised learning"}
	store := &mockFingerprintStore{hits: map[domain.Field][]domain.ScoredFingerprint{
		domain.FieldTitle: {
			scored("a", "alice", "Introduction to ML", content, 10, 0.96),
			scored("b", "alice", "Introduction to ML", []string{"totally different words"}, 12, 0.97),
			scored("c", "alice", "Introduction to ML!", content, 14, 1.0),
		},
	}}
	m := NewMatcher(store)

	got, err := m.Match(context.Background(), "alice", "Introduction to ML", content, 0.95, 0.90)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Fingerprint.ID, "best title score first")
	assert.Equal(t, "a", got[1].Fingerprint.ID)
	assert.InDelta(t, 1.0, got[1].ContentSimilarity, 1e-9)

	require.Len(t, store.queries, 1, "content is never searched through the store")
	q := store.queries[0]
	assert.Equal(t, domain.FieldTitle, q.field)
	assert.Equal(t, "introduction to ml", q.normalised)
	assert.Equal(t, 0.95, q.threshold)
}

func TestMatcher_NoTitleHits(t *testing.T) {
	store := &mockFingerprintStore{}
	m := NewMatcher(store)

	got, err := m.Match(context.Background(), "alice", "Unseen", []string{"x"}, 0.95, 0.0)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, store.queries, 1, "no looser retry")
}

func TestMatcher_EmptyNormalisedTitle(t *testing.T) {
	store := &mockFingerprintStore{}
	m := NewMatcher(store)

	got, err := m.Match(context.Background(), "alice", "?!...", []string{}, 0.95, 0.90)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.queries)
}

func TestMatcher_DropsForeignAndWeakHits(t *testing.T) {
	content := []string{"same"}
	store := &mockFingerprintStore{hits: map[domain.Field][]domain.ScoredFingerprint{
		domain.FieldTitle: {
			scored("mine", "alice", "Budget", content, 3, 1.0),
			scored("theirs", "bob", "Budget", content, 30, 1.0),
			scored("weak", "alice", "Budget", content, 5, 0.95),
		},
	}}
	m := NewMatcher(store)

	got, err := m.Match(context.Background(), "alice", "Budget", content, 0.95, 0.90)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].Fingerprint.ID)
}

func TestMatcher_StoreError(t *testing.T) {
	m := NewMatcher(&mockFingerprintStore{findErr: errStoreDown})

	_, err := m.Match(context.Background(), "alice", "Budget", nil, 0.95, 0.90)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestMatcher_ThresholdMonotonicity(t *testing.T) {
	content := []string{"gradient descent", "loss functions"}
	hits := []domain.ScoredFingerprint{
		scored("a", "alice", "Training", content, 10, 0.99),
		scored("b", "alice", "Training", []string{"gradient descent", "loss"}, 11, 0.97),
		scored("c", "alice", "Training", []string{"gradient", "loss functions"}, 12, 0.96),
		scored("d", "alice", "Training", []string{"something else"}, 13, 0.98),
	}
	ctx := context.Background()

	count := func(titleThr, contentThr float64) int {
		var filtered []domain.ScoredFingerprint
		for _, h := range hits {
			if h.Score > titleThr {
				filtered = append(filtered, h)
			}
		}
		store := &mockFingerprintStore{hits: map[domain.Field][]domain.ScoredFingerprint{domain.FieldTitle: filtered}}
		got, err := NewMatcher(store).Match(ctx, "alice", "Training", content, titleThr, contentThr)
		require.NoError(t, err)
		return len(got)
	}

	prev := -1
	for _, thr := range []float64{0.99, 0.9, 0.7, 0.5, 0.3, 0.1, 0.0} {
		n := count(0.95, thr)
		assert.GreaterOrEqual(t, n, prev, "lowering the content threshold never shrinks results")
		prev = n
	}

	prev = -1
	for _, thr := range []float64{0.985, 0.975, 0.965, 0.955} {
		n := count(thr, 0.0)
		assert.GreaterOrEqual(t, n, prev, "lowering the title threshold never shrinks results")
		prev = n
	}
}
