// Package deckfile reads slide decks from JSON, YAML and Markdown files.
//
// A deck file holds one source document:
//
//	id: quarterly-review
//	owner: alice
//	slides:
//	  - id: s1
//	    title: Introduction
//	    content: [Welcome, Agenda]
//	    duration_minutes: 3
//
// The document id defaults to the file name without its extension.
// Markdown decks are described in markdown.go.
package deckfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

var (
	// ErrUnsupportedFormat indicates a file extension no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported deck format")

	// ErrMalformedDeck indicates a deck file that does not decode.
	ErrMalformedDeck = errors.New("malformed deck")
)

// Format is a deck file encoding.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// FormatOf returns the format implied by a file's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// IsDeckFile reports whether path has a deck extension.
func IsDeckFile(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// DefaultID derives a document id from a deck path.
func DefaultID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and decodes the deck at path. defaultOwner fills in a deck
// that names no owner.
func Load(path, defaultOwner string) (*domain.SourceDocument, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck %s: %w", path, err)
	}

	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMalformedDeck, path, err)
	}

	if doc.ID == "" {
		doc.ID = DefaultID(path)
	}
	if doc.OwnerID == "" {
		doc.OwnerID = defaultOwner
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("deck %s: %w", path, err)
	}
	return doc, nil
}

// Decode decodes one deck. Unknown fields are rejected so a misspelt
// duration key cannot silently index an untimed deck.
func Decode(r io.Reader, format Format) (*domain.SourceDocument, error) {
	var doc domain.SourceDocument

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return &doc, nil
			}
			return nil, err
		}
	case FormatMarkdown:
		return decodeMarkdown(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return &doc, nil
}
