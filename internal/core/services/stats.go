package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

// iqrMultiplier widens the interquartile range into the outlier fence.
const iqrMultiplier = 1.5

// quantile returns the p-quantile of an ascending slice by linear
// interpolation between order statistics at the 1-based rank p*(n+1).
// Ranks outside [1, n] clamp to the smallest or largest value.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := p * float64(n+1)
	if rank <= 1 {
		return sorted[0]
	}
	if rank >= float64(n) {
		return sorted[n-1]
	}
	lower := int(math.Floor(rank))
	frac := rank - float64(lower)
	return sorted[lower-1] + frac*(sorted[lower]-sorted[lower-1])
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Quartiles returns Q1 and Q3 of durations.
func Quartiles(durations []float64) (q1, q3 float64) {
	sorted := sortedCopy(durations)
	return quantile(sorted, 0.25), quantile(sorted, 0.75)
}

// OutlierBounds returns the inclusive fence [Q1-1.5*IQR, Q3+1.5*IQR].
// ok is false for an empty input.
func OutlierBounds(durations []float64) (lower, upper float64, ok bool) {
	if len(durations) == 0 {
		return 0, 0, false
	}
	q1, q3 := Quartiles(durations)
	iqr := q3 - q1
	return q1 - iqrMultiplier*iqr, q3 + iqrMultiplier*iqr, true
}

// FilterOutliers drops durations outside the IQR fence, preserving input
// order. Below four samples the fence is so wide it rarely removes
// anything; confidence scoring already penalises such samples.
func FilterOutliers(durations []float64) []float64 {
	lower, upper, ok := OutlierBounds(durations)
	if !ok {
		return []float64{}
	}
	kept := make([]float64, 0, len(durations))
	for _, d := range durations {
		if d >= lower && d <= upper {
			kept = append(kept, d)
		}
	}
	return kept
}

// filterCandidates applies the IQR fence to candidates by their durations
// and returns the survivors alongside their durations.
func filterCandidates(candidates []domain.SimilarityCandidate) ([]domain.SimilarityCandidate, []float64) {
	durations := make([]float64, len(candidates))
	for i := range candidates {
		durations[i] = candidates[i].Fingerprint.DurationMinutes
	}
	lower, upper, ok := OutlierBounds(durations)
	if !ok {
		return nil, nil
	}

	kept := make([]domain.SimilarityCandidate, 0, len(candidates))
	keptDurations := make([]float64, 0, len(candidates))
	for i, d := range durations {
		if d >= lower && d <= upper {
			kept = append(kept, candidates[i])
			keptDurations = append(keptDurations, d)
		}
	}
	return kept, keptDurations
}

// Aggregate summarises filtered durations into a suggestion.
//
// Returns nil for an empty input: a suggestion with SampleSize 0 is never
// produced. The median is the upper middle order statistic, quartiles use
// the same interpolation as the outlier filter, and the coefficient of
// variation uses the population standard deviation.
func Aggregate(filtered []float64, candidates []domain.SimilarityCandidate) *domain.DurationSuggestion {
	n := len(filtered)
	if n == 0 {
		return nil
	}

	sorted := sortedCopy(filtered)

	sum := 0.0
	for _, d := range filtered {
		sum += d
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, d := range filtered {
		diff := d - mean
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(n))

	cv := 0.0
	if mean > 0 {
		cv = stdDev / mean
	}

	var titleSum, contentSum float64
	for i := range candidates {
		titleSum += candidates[i].TitleSimilarity
		contentSum += candidates[i].ContentSimilarity
	}
	var avgTitle, avgContent float64
	if len(candidates) > 0 {
		avgTitle = titleSum / float64(len(candidates))
		avgContent = contentSum / float64(len(candidates))
	}

	return &domain.DurationSuggestion{
		AverageDuration:        mean,
		MedianDuration:         sorted[n/2],
		P25:                    quantile(sorted, 0.25),
		P75:                    quantile(sorted, 0.75),
		SampleSize:             n,
		CoefficientOfVariation: cv,
		Confidence:             domain.ClassifyConfidence(n, cv),
		AvgTitleSimilarity:     avgTitle,
		AvgContentSimilarity:   avgContent,
	}
}
