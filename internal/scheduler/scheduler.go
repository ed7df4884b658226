package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"parcel-code-relay-go/internal/config"
	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/scanner"
)

// CycleRunner runs one full mailbox scan cycle
type CycleRunner interface {
	ScanAll(ctx context.Context) scanner.CycleStats
}

// Scheduler manages periodic mailbox scan cycles. The cron trigger and
// the on-demand trigger share one run token, so two cycles can never
// overlap: whichever trigger loses the token is a no-op.
type Scheduler struct {
	cron        *cron.Cron
	entryID     cron.EntryID
	cfg         *config.ScannerConfig
	runner      CycleRunner
	metrics     *metrics.Metrics
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	cycleActive atomic.Bool
	isRunning   bool
	mu          sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.ScannerConfig, runner CycleRunner, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		cfg:     cfg,
		runner:  runner,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.cfg.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, func() { s.runCycle() })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scan scheduler started with interval: %d minutes", s.cfg.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()
	s.cron.Remove(s.entryID)

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Scan scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scan scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runCycle runs one scan cycle under the shared run token. It reports
// whether the cycle actually ran.
func (s *Scheduler) runCycle() bool {
	if !s.cycleActive.CompareAndSwap(false, true) {
		logrus.Info("Scan cycle already in flight, skipping trigger")
		return false
	}
	defer s.cycleActive.Store(false)

	s.wg.Add(1)
	defer s.wg.Done()

	logrus.Info("Starting mailbox scan cycle")
	start := time.Now()
	s.metrics.CycleCount.Inc()

	stats := s.runner.ScanAll(s.ctx)

	duration := time.Since(start)
	s.metrics.CycleDuration.Observe(duration.Seconds())

	logrus.Infof("Scan cycle completed in %v: %d accounts (%d failed), %d messages, %d settled",
		duration, stats.Accounts, stats.FailedAccounts, stats.Messages, stats.Settled)
	return true
}

// RunOnce triggers a scan cycle immediately, for the on-demand refresh
// endpoint. It returns false when a cycle is already in flight.
func (s *Scheduler) RunOnce() bool {
	return s.runCycle()
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last scheduled run
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Wait waits for any in-flight cycle to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
