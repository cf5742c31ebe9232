package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/quadruped/leg"
)

// NumJoints is the length of a joint vector.
const NumJoints = leg.Count * leg.JointsPerLeg

// JointVector holds three joints per leg, legs in leg.ID order, radians.
type JointVector [NumJoints]float64

// JointVectorFromSlice copies s into a JointVector, failing unless it has exactly NumJoints entries.
func JointVectorFromSlice(s []float64) (JointVector, error) {
	var q JointVector
	if len(s) != NumJoints {
		return q, NewDimensionMismatchError("joint vector", len(s), NumJoints)
	}
	copy(q[:], s)
	return q, nil
}

// Leg returns the joint triple of one leg.
func (q JointVector) Leg(id leg.ID) [3]float64 {
	i := id.JointIndex(0)
	return [3]float64{q[i], q[i+1], q[i+2]}
}

// SetLeg overwrites the joint triple of one leg.
func (q *JointVector) SetLeg(id leg.ID, joints [3]float64) {
	copy(q[id.JointIndex(0):], joints[:])
}

// Slice returns the joints as a new slice.
func (q JointVector) Slice() []float64 {
	return append([]float64(nil), q[:]...)
}

// ForwardPosition returns the body frame foot position of one leg. id must be one of
// leg.All; any other value panics with an index out of range, as ForwardAll never passes
// one. Use LegInverseKinematics or leg.Parse to check untrusted ids.
func (g Geometry) ForwardPosition(id leg.ID, joints [3]float64) r3.Vector {
	return ForwardPosition(g[id].HipOffset, g[id].Links, joints)
}

// ForwardAll returns the body frame foot position of every leg.
func (g Geometry) ForwardAll(q JointVector) [leg.Count]r3.Vector {
	var feet [leg.Count]r3.Vector
	for _, id := range leg.All {
		feet[id] = g.ForwardPosition(id, q.Leg(id))
	}
	return feet
}

// LegInverseKinematics returns the joint angles placing the foot of leg id at a body
// frame target. It fails with ErrUnreachable outside the workspace and with
// leg.ErrNotFound for an unknown leg.
func (g Geometry) LegInverseKinematics(id leg.ID, target r3.Vector) ([3]float64, error) {
	if !id.Valid() {
		return [3]float64{}, leg.NewNotFoundError(id)
	}
	return legInverseKinematics(id, g[id], target)
}

// Jacobians returns the Jacobian of every leg at q.
func (g Geometry) Jacobians(q JointVector) [leg.Count]*mat.Dense {
	var jacs [leg.Count]*mat.Dense
	for _, id := range leg.All {
		jacs[id] = Jacobian(g[id].Links, q.Leg(id))
	}
	return jacs
}

// ForceToTorque maps foot forces to joint torques, J^T * f per leg. Static only, no
// gravity or dynamics terms.
func (g Geometry) ForceToTorque(q, force JointVector) JointVector {
	var tau JointVector
	jacs := g.Jacobians(q)
	for _, id := range leg.All {
		f := force.Leg(id)

		var legTau mat.VecDense
		legTau.MulVec(jacs[id].T(), mat.NewVecDense(3, f[:]))
		tau.SetLeg(id, [3]float64{legTau.AtVec(0), legTau.AtVec(1), legTau.AtVec(2)})
	}
	return tau
}

// ForceToTorqueSlices is ForceToTorque for callers holding plain slices; it reports a
// dimension mismatch instead of truncating.
func (g Geometry) ForceToTorqueSlices(q, force []float64) ([]float64, error) {
	qv, err := JointVectorFromSlice(q)
	if err != nil {
		return nil, err
	}
	fv, err := JointVectorFromSlice(force)
	if err != nil {
		return nil, err
	}
	tau := g.ForceToTorque(qv, fv)
	return tau.Slice(), nil
}
