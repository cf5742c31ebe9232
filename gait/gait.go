// Package gait schedules the stance and swing phases of every leg from one shared clock.
//
// The scheduler itself knows nothing about trot or pace: a gait is entirely the vector
// of per-leg phase offsets it is given.
package gait

import (
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/quadruped/leg"
)

// LegState says whether a foot is on the ground.
type LegState int

const (
	// Stance means the foot is planted and bearing load.
	Stance LegState = iota
	// Swing means the foot is lifted and travelling to its next foothold.
	Swing
)

func (s LegState) String() string {
	switch s {
	case Stance:
		return "stance"
	case Swing:
		return "swing"
	default:
		return "unknown"
	}
}

// LegPhase is the scheduled state of one leg.
type LegPhase struct {
	State LegState
	// Phase is the leg's position in its gait cycle, in [0, 1). Stance occupies
	// [0, stance fraction) and swing the rest.
	Phase float64
	// Liftoff is set on the first schedule that sees this leg in a new swing.
	Liftoff bool
	// Step numbers the leg's swings since Start: the swing in progress, or the last one
	// finished while in stance. It is -1 before the first swing.
	Step int64
}

// Map is a snapshot of every leg's phase, indexed by leg.ID. It is a value: each
// schedule produces a fresh one.
type Map [leg.Count]LegPhase

// Get returns the phase of one leg, failing for an unknown leg.
func (m Map) Get(id leg.ID) (LegPhase, error) {
	if !id.Valid() {
		return LegPhase{}, leg.NewNotFoundError(id)
	}
	return m[id], nil
}

// LiftingOff reports whether any leg just entered swing.
func (m Map) LiftingOff() bool {
	for _, lp := range m {
		if lp.State == Swing && lp.Liftoff {
			return true
		}
	}
	return false
}

// Offsets shifts each leg's clock by a fraction of the period, indexed by leg.ID.
type Offsets [leg.Count]float64

// Validate checks every offset is in [0, 1).
func (o Offsets) Validate() error {
	for _, id := range leg.All {
		if o[id] < 0 || o[id] >= 1 {
			return errors.Wrapf(ErrInvalidTiming, "offset for leg %s is %v, must be in [0, 1)", id, o[id])
		}
	}
	return nil
}

// Named gaits, offsets in RL, FL, RR, FR order.
var (
	// Trot moves diagonal pairs together.
	Trot = Offsets{0, 0.5, 0.5, 0}
	// Pace moves the legs on one side together.
	Pace = Offsets{0, 0, 0.5, 0.5}
	// Bound moves the front pair and the rear pair together.
	Bound = Offsets{0, 0.5, 0, 0.5}
	// Walk lifts one leg at a time.
	Walk = Offsets{0, 0.25, 0.5, 0.75}
)

// PresetOffsets looks up a named gait.
func PresetOffsets(name string) (Offsets, error) {
	switch strings.ToLower(name) {
	case "trot":
		return Trot, nil
	case "pace":
		return Pace, nil
	case "bound":
		return Bound, nil
	case "walk":
		return Walk, nil
	default:
		return Offsets{}, errors.Errorf("unknown gait %q", name)
	}
}
