// Package domain defines the core business entities for pacer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SlideFingerprint: A normalised, indexable slide plus its recorded duration
//   - SourceDocument: A deck as supplied by the document store
//   - SimilarityCandidate: A fingerprint scored against a query
//   - DurationSuggestion: The aggregated answer to a suggestion query
//
// Text normalisation and trigram similarity live here too. Both are pure
// functions that every layer must share, so there is exactly one copy.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
