package domain

import "time"

// SweepResult is the outcome of one background drift sweep.
type SweepResult struct {
	// StartedAt is when the sweep started.
	StartedAt time.Time

	// EndedAt is when the sweep completed.
	EndedAt time.Time

	// Checked is the number of fingerprints examined.
	Checked int

	// Drifted is the number of fingerprints found stale.
	Drifted int

	// Repaired is the number of stale fingerprints rewritten.
	Repaired int

	// Error contains the error message if the sweep failed.
	Error string
}

// Success reports whether the sweep completed without error.
func (r SweepResult) Success() bool {
	return r.Error == ""
}
