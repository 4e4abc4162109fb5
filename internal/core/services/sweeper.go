package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

// Ensure IntegritySweeper implements the interface.
var _ driving.IntegritySweeper = (*IntegritySweeper)(nil)

// IntegritySweeper repairs drift across every owner on a fixed interval.
// Long-running commands run it next to their main loop.
type IntegritySweeper struct {
	integrity driving.IntegrityService
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	last    *domain.SweepResult
}

// NewIntegritySweeper creates a sweeper. A zero interval disables it.
func NewIntegritySweeper(integrity driving.IntegrityService, interval time.Duration) *IntegritySweeper {
	return &IntegritySweeper{
		integrity: integrity,
		interval:  interval,
		now:       time.Now,
	}
}

// Start sweeps once, then every interval. It blocks until ctx is cancelled
// or Stop is called, and returns at once when the sweeper is disabled.
func (s *IntegritySweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop ends a running Start.
func (s *IntegritySweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// Last returns the most recent sweep result, if any sweep has run.
func (s *IntegritySweeper) Last() (domain.SweepResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return domain.SweepResult{}, false
	}
	return *s.last, true
}

// sweep verifies and repairs every owner once.
func (s *IntegritySweeper) sweep(ctx context.Context) {
	result := domain.SweepResult{StartedAt: s.now()}

	report, err := s.integrity.Verify(ctx, "", true)
	result.EndedAt = s.now()
	switch {
	case err != nil:
		result.Error = err.Error()
		logger.Warn("integrity sweep failed: %v", err)
	case report.Clean():
		result.Checked = report.Checked
		logger.Debug("integrity sweep: %d fingerprints clean", report.Checked)
	default:
		result.Checked = report.Checked
		result.Drifted = len(report.Drifted)
		result.Repaired = report.Repaired
		logger.Info("integrity sweep: repaired %d of %d drifted fingerprints",
			report.Repaired, len(report.Drifted))
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()
}
