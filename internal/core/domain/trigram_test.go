package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrigrams(t *testing.T) {
	t.Run("sliding window", func(t *testing.T) {
		got := Trigrams("abcd")
		assert.Len(t, got, 2)
		assert.Contains(t, got, "abc")
		assert.Contains(t, got, "bcd")
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		assert.Len(t, Trigrams("aaaa"), 1)
	})

	t.Run("short string is a single gram", func(t *testing.T) {
		got := Trigrams("ml")
		assert.Len(t, got, 1)
		assert.Contains(t, got, "ml")
	})

	t.Run("empty has no grams", func(t *testing.T) {
		assert.Empty(t, Trigrams(""))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		got := Trigrams("café")
		assert.Len(t, got, 2)
		assert.Contains(t, got, "afé")
	})
}

func TestTrigramSimilarity(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, TrigramSimilarity("introduction to machine learning", "introduction to machine learning"))
	})

	t.Run("disjoint strings", func(t *testing.T) {
		assert.Equal(t, 0.0, TrigramSimilarity("abc", "xyz"))
	})

	t.Run("both empty are identical", func(t *testing.T) {
		assert.Equal(t, 1.0, TrigramSimilarity("", ""))
	})

	t.Run("one empty scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, TrigramSimilarity("", "abc"))
		assert.Equal(t, 0.0, TrigramSimilarity("abc", ""))
	})

	t.Run("partial overlap", func(t *testing.T) {
		// abcd -> {abc, bcd}; bcde -> {bcd, cde}; shared 1, union 3
		assert.InDelta(t, 1.0/3.0, TrigramSimilarity("abcd", "bcde"), 1e-9)
	})

	t.Run("symmetric and bounded", func(t *testing.T) {
		pairs := [][2]string{
			{"introduction to ml", "introduction to machine learning"},
			{"quarterly review", "quarterly results review"},
			{"a", "ab"},
		}
		for _, p := range pairs {
			ab := TrigramSimilarity(p[0], p[1])
			ba := TrigramSimilarity(p[1], p[0])
			assert.Equal(t, ab, ba)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	})
}

func TestJaccardFromCounts_MatchesSetJaccard(t *testing.T) {
	pairs := [][2]string{
		{"abcd", "bcde"},
		{"introduction to ml", "introduction to machine learning"},
		{"", ""},
		{"", "abc"},
		{"same", "same"},
	}

	for _, p := range pairs {
		a, b := Trigrams(p[0]), Trigrams(p[1])
		shared := 0
		for g := range a {
			if _, ok := b[g]; ok {
				shared++
			}
		}
		assert.InDelta(t, a.Jaccard(b), JaccardFromCounts(len(a), len(b), shared), 1e-12, "pair %q", p)
	}
}
