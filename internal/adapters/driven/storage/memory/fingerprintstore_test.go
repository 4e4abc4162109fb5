package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
)

func newFP(owner, doc, slide, title string, minutes float64, content ...string) domain.SlideFingerprint {
	fp := domain.NewFingerprint(owner, doc, domain.Slide{
		ID:              slide,
		Title:           title,
		Content:         content,
		DurationMinutes: minutes,
	})
	fp.ID = doc + "/" + slide
	return fp
}

func insertAll(t *testing.T, s *FingerprintStore, owner, doc string, fps ...domain.SlideFingerprint) {
	t.Helper()
	err := s.Atomic(context.Background(), owner, doc, func(tx driven.FingerprintTx) error {
		for _, fp := range fps {
			if err := tx.Insert(fp); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestFingerprintStore_AtomicCommit(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()

	insertAll(t, s, "alice", "deck1",
		newFP("alice", "deck1", "s1", "Intro", 5),
		newFP("alice", "deck1", "s2", "Agenda", 2),
	)

	fps, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, fps, 2)
	assert.Equal(t, "s1", fps[0].SourceSlideID)
	assert.Equal(t, 2, s.Writes())

	owners, err := s.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, owners)

	ok, err := s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFingerprintStore_AtomicRollback(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()
	insertAll(t, s, "alice", "deck1", newFP("alice", "deck1", "s1", "Intro", 5))

	boom := errors.New("boom")
	err := s.Atomic(ctx, "alice", "deck1", func(tx driven.FingerprintTx) error {
		require.NoError(t, tx.Insert(newFP("alice", "deck1", "s2", "Agenda", 2)))
		require.NoError(t, tx.Delete("s1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	fps, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, fps, 1)
	assert.Equal(t, "s1", fps[0].SourceSlideID)
	assert.Equal(t, 1, s.Writes())
}

func TestFingerprintStore_OwnerMismatch(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()
	insertAll(t, s, "alice", "deck1", newFP("alice", "deck1", "s1", "Intro", 5))

	t.Run("fingerprint owner differs from transaction", func(t *testing.T) {
		err := s.Atomic(ctx, "alice", "deck2", func(tx driven.FingerprintTx) error {
			return tx.Insert(newFP("bob", "deck2", "s1", "Intro", 5))
		})
		assert.ErrorIs(t, err, domain.ErrOwnerMismatch)
	})

	t.Run("document belongs to another owner", func(t *testing.T) {
		err := s.Atomic(ctx, "bob", "deck1", func(tx driven.FingerprintTx) error {
			return tx.Upsert(newFP("bob", "deck1", "s1", "Intro", 5))
		})
		assert.ErrorIs(t, err, domain.ErrOwnerMismatch)
	})

	t.Run("delete of another owner's document", func(t *testing.T) {
		err := s.Atomic(ctx, "bob", "deck1", func(tx driven.FingerprintTx) error {
			_, err := tx.DeleteAll()
			return err
		})
		assert.ErrorIs(t, err, domain.ErrOwnerMismatch)
	})

	fps, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, fps, 1)
}

func TestFingerprintStore_InsertRejects(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()
	insertAll(t, s, "alice", "deck1", newFP("alice", "deck1", "s1", "Intro", 5))

	tests := []struct {
		name string
		fp   domain.SlideFingerprint
	}{
		{name: "duplicate slide", fp: newFP("alice", "deck1", "s1", "Intro again", 3)},
		{name: "zero duration", fp: newFP("alice", "deck1", "s2", "Empty", 0)},
		{name: "foreign document", fp: newFP("alice", "deck9", "s2", "Other", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Atomic(ctx, "alice", "deck1", func(tx driven.FingerprintTx) error {
				return tx.Insert(tt.fp)
			})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFingerprintStore_DeleteAllRemovesDocument(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()
	insertAll(t, s, "alice", "deck1",
		newFP("alice", "deck1", "s1", "Intro", 5),
		newFP("alice", "deck1", "s2", "Agenda", 2),
	)

	var removed int
	err := s.Atomic(ctx, "alice", "deck1", func(tx driven.FingerprintTx) error {
		var err error
		removed, err = tx.DeleteAll()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	owners, err := s.Owners(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)

	// Known owners stay resolvable after their last deck is removed.
	ok, err := s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	// The document can now be claimed by another owner.
	insertAll(t, s, "bob", "deck1", newFP("bob", "deck1", "s1", "Intro", 4))
}

func TestFingerprintStore_DeleteMissing(t *testing.T) {
	s := NewFingerprintStore()
	err := s.Atomic(context.Background(), "alice", "deck1", func(tx driven.FingerprintTx) error {
		return tx.Delete("nope")
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFingerprintStore_FindSimilar(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()
	insertAll(t, s, "alice", "deck1",
		newFP("alice", "deck1", "s1", "Introduction to Machine Learning", 10, "what is ml"),
		newFP("alice", "deck1", "s2", "Quarterly Revenue", 4, "numbers"),
	)
	insertAll(t, s, "bob", "deck2",
		newFP("bob", "deck2", "s1", "Introduction to Machine Learning", 20, "what is ml"),
	)

	query := domain.NormaliseText("Introduction to Machine Learning!")
	hits, err := s.FindSimilar(ctx, "alice", domain.FieldTitle, query, 0.95)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alice", hits[0].Fingerprint.OwnerID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)

	t.Run("threshold is strict", func(t *testing.T) {
		hits, err := s.FindSimilar(ctx, "alice", domain.FieldTitle, query, 1.0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("content field", func(t *testing.T) {
		hits, err := s.FindSimilar(ctx, "bob", domain.FieldContent, "what is ml", 0.9)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "deck2", hits[0].Fingerprint.SourceDocumentID)
	})

	t.Run("invalid field", func(t *testing.T) {
		_, err := s.FindSimilar(ctx, "alice", domain.Field("body"), query, 0.5)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestFingerprintStore_RegisterOwner(t *testing.T) {
	s := NewFingerprintStore()
	ctx := context.Background()

	ok, err := s.Exists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	s.RegisterOwner("carol")
	ok, err = s.Exists(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFingerprintStore_CancelledContext(t *testing.T) {
	s := NewFingerprintStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Atomic(ctx, "alice", "deck1", func(driven.FingerprintTx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.FindSimilar(ctx, "alice", domain.FieldTitle, "x", 0.5)
	assert.ErrorIs(t, err, context.Canceled)
}
