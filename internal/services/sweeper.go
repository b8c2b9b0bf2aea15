package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically expires stale reservations. Only one sweep runs at a
// time; a tick that arrives while the previous sweep is still running is
// skipped. The sweep itself is idempotent, so overlap avoidance is purely a
// load concern.
type Sweeper struct {
	reservations *ReservationService
	interval     time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewSweeper(reservations *ReservationService, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		reservations: reservations,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs the sweep loop until ctx is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reservation sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// RunOnce triggers a single sweep, used by the manual expire endpoint
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	return s.reservations.ExpireStale(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous sweep still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	expired, err := s.reservations.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("reservation sweep failed", "error", err)
		return
	}
	if expired > 0 {
		s.logger.Info("reservation sweep finished", "expired", expired)
	}
}
