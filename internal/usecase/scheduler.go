package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	applogger "CoinPulse/pkg/logger"
)

// CycleRunner runs one evaluation pass.
type CycleRunner interface {
	Run(ctx context.Context) (*models.Snapshot, error)
}

// Scheduler runs the signal cycle on a fixed cadence and on demand.
type Scheduler struct {
	cycle    CycleRunner
	interval time.Duration
	l        *applogger.Logger

	trigger chan struct{}
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler. A non-positive interval means 60s.
func NewScheduler(cycle CycleRunner, interval time.Duration, l *applogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Scheduler{
		cycle:    cycle,
		interval: interval,
		l:        l,
		trigger:  make(chan struct{}, 1),
	}
}

// IsRunning reports whether the loop was started and not yet stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start runs one cycle immediately and then one per interval until Stop or
// ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true
	go s.loop(ctx)
	s.l.Info("scheduler started", applogger.Duration("interval", s.interval))
	return nil
}

// Trigger requests an extra cycle. Requests made while one is pending are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
			t.Reset(s.interval)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.cycle.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		s.l.Debug("cycle skipped, lock held elsewhere")
	case errors.Is(err, context.Canceled):
	default:
		s.l.Error("cycle failed", applogger.Error(err))
	}
}

// Stop cancels the loop and waits for the running cycle to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		s.l.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
