package domain

// TrigramSet is the set of 3-rune substrings of a normalised string.
type TrigramSet map[string]struct{}

// Trigrams returns the trigram set of s. Strings shorter than three runes
// contribute themselves as a single gram; the empty string has no grams.
func Trigrams(s string) TrigramSet {
	runes := []rune(s)
	set := make(TrigramSet)
	if len(runes) == 0 {
		return set
	}
	if len(runes) < 3 {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

// Slice returns the grams in unspecified order.
func (t TrigramSet) Slice() []string {
	out := make([]string, 0, len(t))
	for g := range t {
		out = append(out, g)
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b|.
// Two empty sets are identical (1.0); one empty set scores 0.
func (t TrigramSet) Jaccard(other TrigramSet) float64 {
	if len(t) == 0 && len(other) == 0 {
		return 1.0
	}
	if len(t) == 0 || len(other) == 0 {
		return 0.0
	}

	small, large := t, other
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for g := range small {
		if _, ok := large[g]; ok {
			shared++
		}
	}

	union := len(t) + len(other) - shared
	return float64(shared) / float64(union)
}

// TrigramSimilarity compares two already-normalised strings.
func TrigramSimilarity(a, b string) float64 {
	return Trigrams(a).Jaccard(Trigrams(b))
}

// JaccardFromCounts computes the Jaccard index from set sizes and the size
// of their intersection. Storage adapters that keep an inverted trigram
// index use it so their scores match TrigramSimilarity exactly.
func JaccardFromCounts(sizeA, sizeB, shared int) float64 {
	if sizeA == 0 && sizeB == 0 {
		return 1.0
	}
	union := sizeA + sizeB - shared
	if union <= 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}
