package gait

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/quadruped/leg"
)

// ErrInvalidTiming is returned for durations or offsets the scheduler cannot run with.
var ErrInvalidTiming = errors.New("invalid gait timing")

// Scheduler is a free running phase clock for all four legs.
type Scheduler struct {
	clk    clock.Clock
	logger golog.Logger

	stance  time.Duration
	swing   time.Duration
	offsets Offsets

	origin  time.Time
	started bool

	// elapsed time of the first schedule after Start, and of the two most recent
	// distinct scheduling instants
	first     time.Duration
	last      time.Duration
	prev      time.Duration
	scheduled bool
}

// NewScheduler returns a scheduler for the given stance and swing durations and offsets.
func NewScheduler(clk clock.Clock, stance, swing time.Duration, offsets Offsets, logger golog.Logger) (*Scheduler, error) {
	if stance <= 0 || swing <= 0 {
		return nil, errors.Wrapf(ErrInvalidTiming, "stance (%v) and swing (%v) must be positive", stance, swing)
	}
	if err := offsets.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clk:     clk,
		logger:  logger,
		stance:  stance,
		swing:   swing,
		offsets: offsets,
	}, nil
}

// Start records the time origin. The leg with offset 0 is at phase 0 now.
func (s *Scheduler) Start() {
	s.origin = s.clk.Now()
	s.started = true
	s.scheduled = false
}

// StanceDuration returns the stance duration.
func (s *Scheduler) StanceDuration() time.Duration {
	return s.stance
}

// SwingDuration returns the swing duration.
func (s *Scheduler) SwingDuration() time.Duration {
	return s.swing
}

// Period returns stance plus swing.
func (s *Scheduler) Period() time.Duration {
	return s.stance + s.swing
}

// StanceFraction returns the part of the period spent in stance, in (0, 1).
func (s *Scheduler) StanceFraction() float64 {
	return float64(s.stance) / float64(s.Period())
}

// Offsets returns the configured phase offsets.
func (s *Scheduler) Offsets() Offsets {
	return s.offsets
}

// Elapsed returns the time since Start.
func (s *Scheduler) Elapsed() time.Duration {
	return s.clk.Now().Sub(s.origin)
}

// Schedule returns every leg's state and phase for the current time. Liftoff is set for
// legs whose swing began after the previous scheduling instant; on the first schedule
// after Start every leg already in swing counts as lifting off. Calling Schedule again
// at the same instant returns the same map.
func (s *Scheduler) Schedule() Map {
	if !s.started {
		s.logger.Debug("gait scheduler used before Start; starting now")
		s.Start()
	}
	elapsed := s.Elapsed()
	if !s.scheduled {
		s.first, s.prev, s.last = elapsed, elapsed, elapsed
		s.scheduled = true
	} else if elapsed != s.last {
		s.prev, s.last = s.last, elapsed
	}

	m := s.At(elapsed)
	for _, id := range leg.All {
		if m[id].State != Swing {
			continue
		}
		if elapsed == s.first {
			m[id].Liftoff = true
			continue
		}
		m[id].Liftoff = s.step(id, s.prev) < m[id].Step
	}
	return m
}

// At computes states and phases for an arbitrary elapsed time without touching the
// liftoff bookkeeping. Liftoff is always false in its result.
func (s *Scheduler) At(elapsed time.Duration) Map {
	var m Map
	for _, id := range leg.All {
		n, into := s.cycle(id, elapsed)
		lp := LegPhase{
			State: Stance,
			Phase: float64(into) / float64(s.Period()),
			Step:  n - 1,
		}
		if into >= s.stance {
			lp.State = Swing
			lp.Step = n
		}
		m[id] = lp
	}
	return m
}

// cycle splits a leg's unwrapped clock into the cycle count and the time into the
// current cycle. Everything stays in integer nanoseconds so cycle boundaries are exact.
func (s *Scheduler) cycle(id leg.ID, elapsed time.Duration) (int64, time.Duration) {
	period := s.Period()
	whole, rem := elapsed/period, elapsed%period
	if rem < 0 {
		whole--
		rem += period
	}
	u := rem + time.Duration(math.Round(s.offsets[id]*float64(period)))
	return int64(whole) + int64(u/period), u % period
}

// step numbers the most recent swing the leg has started by elapsed.
func (s *Scheduler) step(id leg.ID, elapsed time.Duration) int64 {
	n, into := s.cycle(id, elapsed)
	if into >= s.stance {
		return n
	}
	return n - 1
}
