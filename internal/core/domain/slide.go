package domain

import (
	"fmt"
	"math"
	"strings"
)

// Slide is one slide as supplied by the source document store.
type Slide struct {
	// ID is the slide's identifier within its document.
	ID string `json:"id" yaml:"id"`

	// Title is the slide heading.
	Title string `json:"title" yaml:"title"`

	// Content is the ordered sequence of text fragments on the slide.
	Content []string `json:"content" yaml:"content"`

	// DurationMinutes is the committed duration; 0 means untimed.
	DurationMinutes float64 `json:"duration_minutes" yaml:"duration_minutes"`
}

// ContentText returns the canonical flattened content.
func (s Slide) ContentText() string {
	return FlattenContent(s.Content)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Timed reports whether the slide carries a timing signal.
// Section headers and other zero-duration slides do not.
func (s Slide) Timed() bool {
	return s.DurationMinutes > 0 && finite(s.DurationMinutes)
}

// Canonical returns the tuple used for change detection.
func (s Slide) Canonical() CanonicalSlide {
	return CanonicalSlide{
		Title:           s.Title,
		ContentText:     s.ContentText(),
		DurationMinutes: s.DurationMinutes,
	}
}

// CanonicalSlide is the (title, content, duration) tuple after canonical
// serialisation. Two slides are unchanged iff their tuples are equal.
type CanonicalSlide struct {
	Title           string
	ContentText     string
	DurationMinutes float64
}

// SourceDocument is a deck as committed by the document store.
type SourceDocument struct {
	// ID identifies the document.
	ID string `json:"id" yaml:"id"`

	// OwnerID is the author of the document.
	OwnerID string `json:"owner" yaml:"owner"`

	// Slides is the ordered slide list.
	Slides []Slide `json:"slides" yaml:"slides"`
}

// Validate checks the document can be indexed.
func (d *SourceDocument) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is required", ErrValidation)
	}
	if strings.TrimSpace(d.OwnerID) == "" {
		return fmt.Errorf("%w: document owner is required", ErrValidation)
	}
	seen := make(map[string]struct{}, len(d.Slides))
	for i, s := range d.Slides {
		if s.ID == "" {
			return fmt.Errorf("%w: slide %d has no id", ErrValidation, i)
		}
		if !finite(s.DurationMinutes) {
			return fmt.Errorf("%w: slide %s has non-finite duration", ErrValidation, s.ID)
		}
		if s.DurationMinutes < 0 {
			return fmt.Errorf("%w: slide %s has negative duration", ErrValidation, s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate slide id %s", ErrValidation, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// TimedSlides returns the slides with a positive duration, in order.
func (d *SourceDocument) TimedSlides() []Slide {
	out := make([]Slide, 0, len(d.Slides))
	for _, s := range d.Slides {
		if s.Timed() {
			out = append(out, s)
		}
	}
	return out
}

// IndexStats counts the store writes made by one indexer hook.
type IndexStats struct {
	Inserted  int
	Updated   int
	Deleted   int
	Unchanged int
}

// Writes returns the number of store writes.
func (s IndexStats) Writes() int {
	return s.Inserted + s.Updated + s.Deleted
}

// Add accumulates other into s.
func (s *IndexStats) Add(other IndexStats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Deleted += other.Deleted
	s.Unchanged += other.Unchanged
}
