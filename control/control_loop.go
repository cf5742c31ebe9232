// Package control runs a function at a fixed rate and keeps statistics on how long each
// run took.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// MaxFrequency is the fastest rate a loop may run at, in Hz.
const MaxFrequency = 1000.0

// A CycleFunc is called once per tick with the tick time.
type CycleFunc func(ctx context.Context, tick time.Time) error

// Loop calls a CycleFunc on every tick of a fixed rate ticker.
type Loop struct {
	clk       clock.Clock
	logger    golog.Logger
	frequency float64
	dt        time.Duration
	cycle     CycleFunc
	ticker    *clock.Ticker
	stop      chan struct{}

	stats *cycleStats

	activeBackgroundWorkers sync.WaitGroup
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	mu                      sync.Mutex
	running                 bool
}

// NewLoop constructs a loop calling cycle at frequency Hz.
func NewLoop(logger golog.Logger, clk clock.Clock, frequency float64, cycle CycleFunc) (*Loop, error) {
	if frequency <= 0 || frequency > MaxFrequency {
		return nil, errors.Errorf("loop frequency must be in (0, %.0f] Hz, got %v", MaxFrequency, frequency)
	}
	if cycle == nil {
		return nil, errors.New("loop needs a cycle function")
	}
	if clk == nil {
		clk = clock.New()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		clk:       clk,
		logger:    logger,
		frequency: frequency,
		dt:        time.Duration(float64(time.Second) * (1.0 / frequency)),
		cycle:     cycle,
		stats:     newCycleStats(defaultStatsWindow),
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// Frequency returns the loop's frequency.
func (l *Loop) Frequency() float64 {
	return l.frequency
}

// Period returns the time between ticks.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Start runs the loop in the background until Stop is called.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("loop already running")
	}
	if l.cancelCtx.Err() != nil {
		return errors.New("cannot restart a stopped loop")
	}
	l.logger.Infof("running loop at %1.1f Hz (%v)", l.frequency, l.dt)
	l.ticker = l.clk.Ticker(l.dt)
	l.stop = make(chan struct{})

	waitCh := make(chan struct{})
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		ticker := l.ticker
		stop := l.stop
		close(waitCh)
		for {
			if l.cancelCtx.Err() != nil {
				return
			}
			select {
			case t := <-ticker.C:
				//nolint:errcheck
				_ = l.Step(l.cancelCtx, t)
			case <-stop:
				return
			case <-l.cancelCtx.Done():
				return
			}
		}
	}, l.activeBackgroundWorkers.Done)
	<-waitCh
	l.running = true
	return nil
}

// Step runs one cycle synchronously and records how long it took.
func (l *Loop) Step(ctx context.Context, tick time.Time) error {
	start := l.clk.Now()
	err := l.cycle(ctx, tick)
	took := l.clk.Since(start)
	l.stats.record(took, took > l.dt, err != nil)
	if err != nil {
		l.logger.Debugw("cycle failed", "error", err)
	}
	return err
}

// Run calls the cycle n times back to back, without waiting for ticks, and returns the
// number of cycles that failed.
func (l *Loop) Run(ctx context.Context, n int) int {
	failed := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := l.Step(ctx, l.clk.Now()); err != nil {
			failed++
		}
	}
	return failed
}

// Stop stops the loop and waits for the running cycle to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel()
	if l.running {
		l.logger.Debug("closing loop")
		l.ticker.Stop()
		close(l.stop)
		l.activeBackgroundWorkers.Wait()
		l.running = false
	}
}

// Stats summarizes the recorded cycles.
func (l *Loop) Stats() Stats {
	return l.stats.summary()
}
