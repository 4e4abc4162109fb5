// Package sqlite provides the SQLite-backed fingerprint store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database connection pool serves:
//
//   - FingerprintStore: slide fingerprints and their trigram index
//   - OwnerDirectory: owners seen by the indexer
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// Similarity is answered from an inverted trigram index: one row per distinct
// trigram per field per fingerprint, plus per-field trigram counts on the
// fingerprint row. The Jaccard index is computed in SQL as
// shared / (|query| + |row| - shared).
//
// # Data Location
//
// By default, the database is stored at ~/.pacer/data/pacer.db
//
// # Thread Safety
//
// All operations are thread-safe. Write transactions take the database lock
// up front (immediate mode) and readers proceed concurrently under WAL.
package sqlite
