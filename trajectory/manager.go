package trajectory

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/utils"
)

// Bounds are the end points of one swing, in the world frame.
type Bounds struct {
	Start r3.Vector
	End   r3.Vector
}

// BoundsMap holds new swing bounds for some subset of the legs.
type BoundsMap struct {
	Set    [leg.Count]bool
	Bounds [leg.Count]Bounds
}

// Put records bounds for a leg.
func (b *BoundsMap) Put(id leg.ID, bounds Bounds) {
	b.Set[id] = true
	b.Bounds[id] = bounds
}

// Get returns the bounds for a leg, if any.
func (b BoundsMap) Get(id leg.ID) (Bounds, bool) {
	if !id.Valid() || !b.Set[id] {
		return Bounds{}, false
	}
	return b.Bounds[id], true
}

// Empty reports whether no leg has bounds.
func (b BoundsMap) Empty() bool {
	for _, set := range b.Set {
		if set {
			return false
		}
	}
	return true
}

// A Manager owns one swing path per leg and turns a gait map into reference foot states.
// It is not safe for concurrent use; the control loop is its only caller.
type Manager struct {
	height float64
	swing  time.Duration
	stance time.Duration

	initial [leg.Count]r3.Vector
	// last swing planned for each leg and the gait step it was planned for; kept after
	// touchdown until the next swing replaces it
	swings [leg.Count]*Swing
	steps  [leg.Count]int64

	logger golog.Logger
}

// NewManager returns a Manager whose stance feet start at the given world positions.
func NewManager(
	height float64,
	swing, stance time.Duration,
	initial [leg.Count]r3.Vector,
	logger golog.Logger,
) (*Manager, error) {
	if swing <= 0 || stance <= 0 {
		return nil, errors.Wrapf(gait.ErrInvalidTiming, "stance (%v) and swing (%v) must be positive", stance, swing)
	}
	return &Manager{
		height:  height,
		swing:   swing,
		stance:  stance,
		initial: initial,
		logger:  logger,
	}, nil
}

// Reset drops every stored swing and places the feet at the given positions.
func (m *Manager) Reset(initial [leg.Count]r3.Vector) {
	m.initial = initial
	m.swings = [leg.Count]*Swing{}
	m.steps = [leg.Count]int64{}
}

// Held returns where a leg's foot comes to rest: the end of its last planned swing, or its
// initial position before the first one. It is the start of the leg's next swing, also
// when no stance was sampled between two swings.
func (m *Manager) Held(id leg.ID) r3.Vector {
	if s := m.swings[id]; s != nil {
		return s.End()
	}
	return m.initial[id]
}

// StanceFraction is the share of the gait period spent in stance.
func (m *Manager) StanceFraction() float64 {
	return float64(m.stance) / float64(m.stance+m.swing)
}

// Progress maps a gait phase in the swing part of the cycle to swing progress in [0, 1].
func (m *Manager) Progress(phase float64) float64 {
	sf := m.StanceFraction()
	return utils.Clamp((phase-sf)/(1-sf), 0, 1)
}

// ReferenceStatesWithBounds stores new swings for the legs in bounds that are lifting off
// this cycle and then returns the reference state of every leg. Bounds for a leg that is
// not lifting off are ignored: a swing is never replaced part way through. A swing is
// planned once per gait step, so bounds repeated for the same step are dropped too.
func (m *Manager) ReferenceStatesWithBounds(gm gait.Map, bounds BoundsMap) ([leg.Count]FootState, error) {
	for _, id := range leg.All {
		b, ok := bounds.Get(id)
		if !ok {
			continue
		}
		if gm[id].State != gait.Swing || !gm[id].Liftoff {
			m.logger.Warnw("ignoring swing bounds for leg that is not lifting off",
				"leg", id, "state", gm[id].State, "phase", gm[id].Phase)
			continue
		}
		if m.current(id, gm[id]) {
			m.logger.Debugw("swing already planned", "leg", id, "step", gm[id].Step)
			continue
		}
		m.swings[id] = NewSwing(b.Start, b.End, m.height, m.swing)
		m.steps[id] = gm[id].Step
	}
	return m.ReferenceStates(gm)
}

// ReferenceStates returns the reference state of every leg. Stance legs hold their foot
// still. Swing legs sample the path planned for their current step; a swing leg without
// one gets its held position and contributes to the returned error.
func (m *Manager) ReferenceStates(gm gait.Map) ([leg.Count]FootState, error) {
	var states [leg.Count]FootState
	var errs error
	for _, id := range leg.All {
		if gm[id].State == gait.Stance {
			states[id] = FootState{Position: m.Held(id)}
			continue
		}
		if !m.current(id, gm[id]) {
			states[id] = FootState{Position: m.Held(id)}
			errs = multierr.Combine(errs, newNoTrajectoryError(id))
			continue
		}
		states[id] = m.swings[id].Sample(m.Progress(gm[id].Phase))
	}
	return states, errs
}

// current reports whether the stored swing of a leg was planned for the step lp is in.
func (m *Manager) current(id leg.ID, lp gait.LegPhase) bool {
	return m.swings[id] != nil && m.steps[id] == lp.Step
}

// ReferenceState samples a leg's most recent swing at progress p. The swing stays
// available after touchdown until the next one replaces it.
func (m *Manager) ReferenceState(id leg.ID, p float64) (FootState, error) {
	if !id.Valid() {
		return FootState{}, leg.NewNotFoundError(id)
	}
	s := m.swings[id]
	if s == nil {
		return FootState{}, newNoTrajectoryError(id)
	}
	return s.Sample(p), nil
}

// Path samples the most recent swing of a leg for display.
func (m *Manager) Path(id leg.ID, steps int) ([]r3.Vector, error) {
	if !id.Valid() {
		return nil, leg.NewNotFoundError(id)
	}
	s := m.swings[id]
	if s == nil {
		return nil, newNoTrajectoryError(id)
	}
	return s.Path(steps), nil
}

func newNoTrajectoryError(id leg.ID) error {
	return errors.Wrapf(leg.ErrNotFound, "no trajectory for leg %s", id)
}
