package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-code-relay-go/internal/config"
	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/scanner"
)

// blockingRunner counts cycles and holds each one open until released
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	cycles  atomic.Int32
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) ScanAll(ctx context.Context) scanner.CycleStats {
	r.cycles.Add(1)
	r.started <- struct{}{}
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return scanner.CycleStats{Accounts: 1}
}

func newTestScheduler(runner CycleRunner) *Scheduler {
	cfg := &config.ScannerConfig{IntervalMinutes: 5}
	return NewScheduler(cfg, runner, metrics.NewMetrics(prometheus.NewRegistry()))
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler(newBlockingRunner())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	// Starting twice is an error
	assert.Error(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())

	// Stopping twice is a no-op
	require.NoError(t, s.Stop())
}

func TestSchedulerRestart(t *testing.T) {
	s := newTestScheduler(newBlockingRunner())

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	// The context is recreated on restart so cycles after a restart are
	// not born cancelled.
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.NoError(t, s.ctx.Err())
	require.NoError(t, s.Stop())
}

func TestRunOnceRejectsOverlappingCycle(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(runner)

	done := make(chan bool)
	go func() { done <- s.RunOnce() }()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never started")
	}

	// While the first cycle is in flight, another trigger loses the run
	// token and does nothing.
	assert.False(t, s.RunOnce())
	assert.Equal(t, int32(1), runner.cycles.Load())

	close(runner.release)
	assert.True(t, <-done)
	s.Wait()

	// With the token released the next trigger runs again.
	assert.True(t, s.RunOnce())
	assert.Equal(t, int32(2), runner.cycles.Load())
}

func TestStopCancelsInFlightCycle(t *testing.T) {
	runner := newBlockingRunner()
	s := newTestScheduler(runner)

	require.NoError(t, s.Start())

	done := make(chan bool)
	go func() { done <- s.RunOnce() }()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never started")
	}

	// Stop cancels the scheduler context, which unblocks the runner
	// without touching the release channel.
	require.NoError(t, s.Stop())

	select {
	case ran := <-done:
		assert.True(t, ran)
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not unblock on stop")
	}
	s.Wait()
}
