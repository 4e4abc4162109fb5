package domain

import (
	"fmt"
	"math"
	"strings"
)

// SuggestionRequest is one duration query from a caller.
type SuggestionRequest struct {
	// OwnerID scopes the search to the author's own fingerprints.
	OwnerID string

	// Title of the slide being timed.
	Title string

	// Content fragments of the slide being timed.
	Content []string
}

// Validate rejects malformed requests before any normalisation happens.
func (r *SuggestionRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if r.Content == nil {
		return fmt.Errorf("%w: content must be a sequence of strings", ErrValidation)
	}
	return nil
}

// SimilarityCandidate is a fingerprint that survived both matching tiers.
type SimilarityCandidate struct {
	Fingerprint       SlideFingerprint
	TitleSimilarity   float64
	ContentSimilarity float64
}

// Confidence grades how far a suggestion can be trusted.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// String returns the string representation.
func (c Confidence) String() string {
	return string(c)
}

// Confidence gates. Both the sample size and the dispersion must pass.
const (
	HighConfidenceMinSamples   = 5
	HighConfidenceMaxCV        = 0.3
	MediumConfidenceMinSamples = 3
	MediumConfidenceMaxCV      = 0.5
)

// ClassifyConfidence grades a result by sample size and coefficient of
// variation. Neither a large sample nor a low variance alone is enough.
func ClassifyConfidence(sampleSize int, cv float64) Confidence {
	switch {
	case sampleSize >= HighConfidenceMinSamples && cv < HighConfidenceMaxCV:
		return ConfidenceHigh
	case sampleSize >= MediumConfidenceMinSamples && cv < MediumConfidenceMaxCV:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// DurationSuggestion is the aggregated answer to a suggestion query.
// It is never persisted, and never produced with SampleSize 0.
type DurationSuggestion struct {
	AverageDuration        float64    `json:"average_duration"`
	MedianDuration         float64    `json:"median_duration"`
	P25                    float64    `json:"p25"`
	P75                    float64    `json:"p75"`
	SampleSize             int        `json:"sample_size"`
	CoefficientOfVariation float64    `json:"coefficient_of_variation"`
	Confidence             Confidence `json:"confidence"`
	AvgTitleSimilarity     float64    `json:"avg_title_similarity"`
	AvgContentSimilarity   float64    `json:"avg_content_similarity"`
}

// RoundedSuggestion is the presentation form with whole-minute durations.
type RoundedSuggestion struct {
	AverageDuration int        `json:"average_duration"`
	MedianDuration  int        `json:"median_duration"`
	P25             int        `json:"p25"`
	P75             int        `json:"p75"`
	SampleSize      int        `json:"sample_size"`
	Confidence      Confidence `json:"confidence"`
}

// Rounded converts durations to whole minutes for display.
func (s *DurationSuggestion) Rounded() RoundedSuggestion {
	return RoundedSuggestion{
		AverageDuration: int(math.Round(s.AverageDuration)),
		MedianDuration:  int(math.Round(s.MedianDuration)),
		P25:             int(math.Round(s.P25)),
		P75:             int(math.Round(s.P75)),
		SampleSize:      s.SampleSize,
		Confidence:      s.Confidence,
	}
}

// DriftReport summarises an integrity check over stored fingerprints.
type DriftReport struct {
	// Checked is the number of fingerprints examined.
	Checked int

	// Drifted lists the fingerprints whose normalised fields were stale.
	Drifted []SlideFingerprint

	// Repaired is the number of drifted fingerprints rewritten.
	Repaired int
}

// Clean reports whether no drift was found.
func (r *DriftReport) Clean() bool {
	return len(r.Drifted) == 0
}
