// Package scheduler runs the daily exchange-rate refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
)

// Options configures the refresh job.
type Options struct {
	AnchorCurrency string
	// TimeOfDay is "HH:MM" in Location.
	TimeOfDay    string
	Location     *time.Location
	MaxRetries   int
	RetryDelay   time.Duration
	RunOnStartup bool
}

// RefreshScheduler fires a forced anchor refresh once a day at a fixed wall-clock time.
// At most one job runs at a time; a tick that lands on a running job is dropped.
type RefreshScheduler struct {
	updater portssvc.RateUpdaterSvc
	opts    Options
	hour    int
	minute  int
	logger  *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	running atomic.Bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// New validates opts and builds a scheduler. Call Start to begin.
func New(updater portssvc.RateUpdaterSvc, opts Options, logger *slog.Logger) (*RefreshScheduler, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(opts.TimeOfDay, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid refresh time %q: %w", opts.TimeOfDay, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid refresh time %q", opts.TimeOfDay)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		updater: updater,
		opts:    opts,
		hour:    hour,
		minute:  minute,
		logger:  logger.With(slog.String("component", "rate_scheduler")),
		now:     time.Now,
		after:   time.After,
	}, nil
}

// NextRun returns the first hour:minute in loc strictly after now.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// Start launches the timer loop. It returns immediately.
func (s *RefreshScheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Stop cancels the loop and waits for a running job to return.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *RefreshScheduler) loop(ctx context.Context) {
	if s.opts.RunOnStartup {
		s.Trigger(ctx, false)
	}

	for {
		now := s.now()
		next := NextRun(now, s.hour, s.minute, s.opts.Location)
		s.logger.Info("Next exchange rate refresh scheduled", slog.Time("at", next))

		select {
		case <-ctx.Done():
			s.logger.Info("Rate scheduler stopped")
			return
		case <-s.after(next.Sub(now)):
			s.Trigger(ctx, true)
		}
	}
}

// Trigger starts one refresh job in the background. It returns false, without
// queueing anything, when a job is already running.
func (s *RefreshScheduler) Trigger(ctx context.Context, force bool) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous rate refresh still running, skipping this run")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.runWithRetries(ctx, force)
	}()
	return true
}

// runWithRetries makes 1+MaxRetries attempts separated by a fixed RetryDelay.
func (s *RefreshScheduler) runWithRetries(ctx context.Context, force bool) {
	attempts := s.opts.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if s.updater.Refresh(ctx, s.opts.AnchorCurrency, force) {
			s.logger.Info("Scheduled rate refresh succeeded", slog.Int("attempt", attempt), slog.Bool("forced", force))
			return
		}
		if attempt == attempts {
			break
		}

		s.logger.Warn("Scheduled rate refresh failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", s.opts.RetryDelay))
		select {
		case <-ctx.Done():
			s.logger.Info("Rate refresh retries abandoned on shutdown")
			return
		case <-s.after(s.opts.RetryDelay):
		}
	}
	s.logger.Error("Scheduled rate refresh gave up until next run", slog.Int("attempts", attempts))
}
