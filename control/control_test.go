package control

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewLoopValidation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	noop := func(context.Context, time.Time) error { return nil }
	for _, f := range []float64{0, -1, 1001} {
		_, err := NewLoop(logger, clock.NewMock(), f, noop)
		test.That(t, err, test.ShouldNotBeNil)
	}
	_, err := NewLoop(logger, clock.NewMock(), 100, nil)
	test.That(t, err, test.ShouldNotBeNil)

	l, err := NewLoop(logger, clock.NewMock(), 100, noop)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Period(), test.ShouldEqual, 10*time.Millisecond)
	test.That(t, l.Frequency(), test.ShouldEqual, 100.0)
}

func TestLoopTicks(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	ran := make(chan time.Time, 1)
	l, err := NewLoop(logger, clk, 50, func(ctx context.Context, tick time.Time) error {
		ran <- tick
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldNotBeNil)

	for i := 1; i <= 5; i++ {
		clk.Add(20 * time.Millisecond)
		select {
		case tick := <-ran:
			test.That(t, tick.Equal(time.Unix(0, 0).Add(time.Duration(i)*20*time.Millisecond)), test.ShouldBeTrue)
		case <-time.After(5 * time.Second):
			t.Fatalf("cycle %d did not run", i)
		}
	}
	l.Stop()
	l.Stop()
	test.That(t, l.Stats().Cycles, test.ShouldEqual, 5)
	test.That(t, l.Start(), test.ShouldNotBeNil)
}

func TestLoopStats(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	i := 0
	l, err := NewLoop(logger, clk, 100, func(ctx context.Context, tick time.Time) error {
		i++
		// every tenth cycle overruns its 10ms budget
		if i%10 == 0 {
			clk.Add(15 * time.Millisecond)
			return errors.New("slow")
		}
		clk.Add(time.Millisecond)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, l.WriteHistogram(&buf, 5), test.ShouldNotBeNil)

	failed := l.Run(context.Background(), 100)
	test.That(t, failed, test.ShouldEqual, 10)

	s := l.Stats()
	test.That(t, s.Cycles, test.ShouldEqual, 100)
	test.That(t, s.Errors, test.ShouldEqual, 10)
	test.That(t, s.Overruns, test.ShouldEqual, 10)
	test.That(t, s.Max, test.ShouldEqual, 15*time.Millisecond)
	test.That(t, s.Mean.Seconds(), test.ShouldAlmostEqual, 0.0024, 1e-9)
	test.That(t, s.P99, test.ShouldEqual, 15*time.Millisecond)
	test.That(t, s.String(), test.ShouldContainSubstring, "overruns=10")

	test.That(t, l.WriteHistogram(&buf, 5), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "over 100 cycles")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, l.Run(ctx, 10), test.ShouldEqual, 0)
	test.That(t, l.Stats().Cycles, test.ShouldEqual, 100)
}

func TestStatsWindow(t *testing.T) {
	cs := newCycleStats(3)
	for i := 1; i <= 5; i++ {
		cs.record(time.Duration(i)*time.Millisecond, false, false)
	}
	test.That(t, len(cs.window()), test.ShouldEqual, 3)
	s := cs.summary()
	test.That(t, s.Cycles, test.ShouldEqual, 5)
	test.That(t, s.Max, test.ShouldEqual, 5*time.Millisecond)
	test.That(t, s.Mean.Seconds(), test.ShouldAlmostEqual, 0.004, 1e-9)
}
