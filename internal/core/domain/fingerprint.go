package domain

import (
	"fmt"
	"strings"
	"time"
)

// SlideFingerprint is the indexed form of one timed slide.
// It is owned exclusively by OwnerID and never shared across owners.
type SlideFingerprint struct {
	// ID is the unique identifier for the fingerprint.
	ID string

	// OwnerID is the author whose timings this fingerprint records.
	OwnerID string

	// SourceDocumentID and SourceSlideID locate the slide in the
	// authoritative document store. Together they are unique.
	SourceDocumentID string
	SourceSlideID    string

	// Title is the raw slide title.
	Title string

	// ContentText is the slide content flattened with FlattenContent.
	ContentText string

	// DurationMinutes is the committed duration. Always > 0.
	DurationMinutes float64

	// TitleNormalized and ContentNormalized are NormaliseText of the raw fields.
	TitleNormalized   string
	ContentNormalized string

	// CreatedAt is when the fingerprint was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the fingerprint was last rewritten.
	UpdatedAt time.Time
}

// NewFingerprint builds a fingerprint for a slide of a document,
// deriving the normalised fields.
func NewFingerprint(ownerID, documentID string, slide Slide) SlideFingerprint {
	fp := SlideFingerprint{
		OwnerID:          ownerID,
		SourceDocumentID: documentID,
		SourceSlideID:    slide.ID,
		Title:            slide.Title,
		ContentText:      slide.ContentText(),
		DurationMinutes:  slide.DurationMinutes,
	}
	fp.Renormalise()
	return fp
}

// Renormalise recomputes the normalised fields from the raw fields.
func (f *SlideFingerprint) Renormalise() {
	f.TitleNormalized = NormaliseText(f.Title)
	f.ContentNormalized = NormaliseText(f.ContentText)
}

// HasDrift reports whether the stored normalised fields differ from a
// fresh recomputation.
func (f *SlideFingerprint) HasDrift() bool {
	return f.TitleNormalized != NormaliseText(f.Title) ||
		f.ContentNormalized != NormaliseText(f.ContentText)
}

// Validate checks the persisted invariants.
func (f *SlideFingerprint) Validate() error {
	if strings.TrimSpace(f.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if f.SourceDocumentID == "" || f.SourceSlideID == "" {
		return fmt.Errorf("%w: source document and slide ids are required", ErrValidation)
	}
	if !finite(f.DurationMinutes) || f.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrValidation, f.DurationMinutes)
	}
	return nil
}

// Canonical returns the tuple used for change detection.
func (f *SlideFingerprint) Canonical() CanonicalSlide {
	return CanonicalSlide{
		Title:           f.Title,
		ContentText:     f.ContentText,
		DurationMinutes: f.DurationMinutes,
	}
}

// ScoredFingerprint is a store hit with its similarity on the queried field.
type ScoredFingerprint struct {
	Fingerprint SlideFingerprint
	Score       float64
}

// Field selects one of the two similarity indexes.
type Field string

// Indexed fields.
const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// IsValid returns true if the field is indexed.
func (f Field) IsValid() bool {
	return f == FieldTitle || f == FieldContent
}

// Value returns the normalised text of the field on a fingerprint.
func (f Field) Value(fp *SlideFingerprint) string {
	if f == FieldContent {
		return fp.ContentNormalized
	}
	return fp.TitleNormalized
}
