// Package trajectory generates and caches the path each foot follows while it swings.
package trajectory

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
)

// FootState is a reference position and velocity for one foot, in the world frame.
type FootState struct {
	Position r3.Vector
	Velocity r3.Vector
}

// Swing is a smooth path from a liftoff point to a touchdown point. Horizontally the foot
// follows a cosine blend; vertically a raised cosine bump of the configured height is
// added on top of the blend between the two end heights. Position and velocity are
// continuous and the velocity is zero at both ends.
type Swing struct {
	start    r3.Vector
	end      r3.Vector
	height   float64
	duration time.Duration
}

// NewSwing returns a swing path between start and end taking duration.
func NewSwing(start, end r3.Vector, height float64, duration time.Duration) *Swing {
	return &Swing{start: start, end: end, height: height, duration: duration}
}

// Start returns the liftoff point.
func (s *Swing) Start() r3.Vector {
	return s.start
}

// End returns the touchdown point.
func (s *Swing) End() r3.Vector {
	return s.end
}

// Sample evaluates the path at swing progress p, clamped to [0, 1].
func (s *Swing) Sample(p float64) FootState {
	switch {
	case p <= 0:
		return FootState{Position: s.start}
	case p >= 1:
		return FootState{Position: s.end}
	}

	blend := (1 - math.Cos(math.Pi*p)) / 2
	dblend := math.Pi * math.Sin(math.Pi*p) / 2
	bump := s.height * (1 - math.Cos(2*math.Pi*p)) / 2
	dbump := s.height * math.Pi * math.Sin(2*math.Pi*p)

	delta := s.end.Sub(s.start)
	pos := s.start.Add(delta.Mul(blend))
	pos.Z += bump

	vel := delta.Mul(dblend)
	vel.Z += dbump
	if secs := s.duration.Seconds(); secs > 0 {
		vel = vel.Mul(1 / secs)
	}
	return FootState{Position: pos, Velocity: vel}
}

// Path samples the position at steps+1 evenly spaced progress values, both ends included.
func (s *Swing) Path(steps int) []r3.Vector {
	if steps < 1 {
		steps = 1
	}
	out := make([]r3.Vector, 0, steps+1)
	for i := 0; i <= steps; i++ {
		out = append(out, s.Sample(float64(i)/float64(steps)).Position)
	}
	return out
}
