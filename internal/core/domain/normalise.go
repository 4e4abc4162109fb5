package domain

import (
	"strings"
	"unicode"
)

// ContentSeparator joins content fragments into one canonical string.
// Normalisation collapses it to a single space, so fragment boundaries
// survive in the raw text but not in the comparable form.
const ContentSeparator = "\n"

// NormaliseText canonicalises text for stable comparison.
//
// Steps, in order: trim, lowercase, strip every rune that is neither a word
// rune (letter, digit, mark, underscore) nor whitespace, collapse whitespace
// runs to a single space. The collapse also removes edge whitespace left
// behind by stripping, which keeps the function idempotent.
func NormaliseText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// FlattenContent produces the canonical textual representation of slide
// content. Fragment order is preserved.
func FlattenContent(fragments []string) string {
	return strings.Join(fragments, ContentSeparator)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
