// Package footplanner picks where each swinging foot should touch down.
package footplanner

import (
	"math"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/kinematics"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/spatialmath"
)

// Gravity is standard gravity in m/s^2.
const Gravity = 9.81

// FootholdMap holds touchdown points, in the world frame, for the legs that just lifted off.
type FootholdMap struct {
	Set      [leg.Count]bool
	Position [leg.Count]r3.Vector
}

// Get returns the foothold of a leg, if one was planned.
func (f FootholdMap) Get(id leg.ID) (r3.Vector, bool) {
	if !id.Valid() || !f.Set[id] {
		return r3.Vector{}, false
	}
	return f.Position[id], true
}

// Empty reports whether no foothold was planned.
func (f FootholdMap) Empty() bool {
	for _, set := range f.Set {
		if set {
			return false
		}
	}
	return true
}

// Len returns the number of planned footholds.
func (f FootholdMap) Len() int {
	n := 0
	for _, set := range f.Set {
		if set {
			n++
		}
	}
	return n
}

// Planner implements the Raibert foothold heuristic: land under the hip, shifted by half a
// stance of travel, a velocity error correction and a turning term.
type Planner struct {
	geometry     kinematics.Geometry
	groundHeight float64
	gain         float64
}

// New returns a planner placing feet at groundHeight (world z). A feedbackGain of zero or
// less selects the capture point gain sqrt(h/g) from the hip height above the ground.
func New(geometry kinematics.Geometry, groundHeight, feedbackGain float64) *Planner {
	return &Planner{geometry: geometry, groundHeight: groundHeight, gain: feedbackGain}
}

// GroundHeight returns the world z every foothold is placed at.
func (p *Planner) GroundHeight() float64 {
	return p.groundHeight
}

// Gain returns the velocity feedback gain used for a hip at the given world height.
func (p *Planner) Gain(hipHeight float64) float64 {
	if p.gain > 0 {
		return p.gain
	}
	h := hipHeight - p.groundHeight
	if h <= 0 {
		return 0
	}
	return math.Sqrt(h / Gravity)
}

// Positions returns a foothold for every leg that is swinging and lifted off this cycle.
// rot and pos are the body orientation and position in the world, vel the measured body
// velocity and desiredVel, desiredAngVel the commanded twist, all in the world frame.
func (p *Planner) Positions(
	stance time.Duration,
	rot spatialmath.RotationMatrix,
	pos, vel, desiredVel, desiredAngVel r3.Vector,
	m gait.Map,
) FootholdMap {
	var out FootholdMap
	half := stance.Seconds() / 2
	for _, id := range leg.All {
		if m[id].State != gait.Swing || !m[id].Liftoff {
			continue
		}
		hip := rot.Rotate(p.geometry.NominalHip(id)).Add(pos)
		offset := rot.Rotate(p.geometry[id].HipOffset)

		foot := r3.Vector{X: hip.X, Y: hip.Y}.
			Add(vel.Mul(half)).
			Add(vel.Sub(desiredVel).Mul(p.Gain(hip.Z))).
			Add(desiredAngVel.Cross(offset).Mul(half))
		foot.Z = p.groundHeight

		out.Set[id] = true
		out.Position[id] = foot
	}
	return out
}
