// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The suggestion pipeline is Matcher -> outlier filter -> Aggregate ->
// confidence. The Indexer keeps the fingerprint store in step with the
// document store.
package services
