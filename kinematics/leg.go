package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/utils"
)

// KneeBackward fixes the inverse kinematics branch: the knee angle t3 is always <= 0.
// Forward kinematics accepts either sign; a round trip through inverse kinematics only
// reproduces joint triples on this branch.
const KneeBackward = true

// ForwardPosition returns the foot position relative to the body given the hip offset,
// signed links and joint angles (t1 abduction, t2 hip pitch, t3 knee).
func ForwardPosition(offset r3.Vector, links, joints [3]float64) r3.Vector {
	l1, l2, l3 := links[0], links[1], links[2]
	s1, c1 := math.Sincos(joints[0])
	s2, c2 := math.Sincos(joints[1])
	s23, c23 := math.Sincos(joints[1] + joints[2])

	return r3.Vector{
		X: l2*s2 + l3*s23 + offset.X,
		Y: l1*c1 - l2*s1*c2 - l3*s1*c23 + offset.Y,
		Z: l1*s1 + l2*c1*c2 + l3*c1*c23 + offset.Z,
	}
}

// Jacobian returns d(x,y,z)/d(t1,t2,t3) of ForwardPosition as a 3x3 matrix.
func Jacobian(links, joints [3]float64) *mat.Dense {
	l1, l2, l3 := links[0], links[1], links[2]
	s1, c1 := math.Sincos(joints[0])
	s2, c2 := math.Sincos(joints[1])
	s23, c23 := math.Sincos(joints[1] + joints[2])

	// reach in the pitch plane and its derivative
	r := l2*c2 + l3*c23
	dr := l2*s2 + l3*s23

	return mat.NewDense(3, 3, []float64{
		0, l2*c2 + l3*c23, l3 * c23,
		-l1*s1 - c1*r, s1 * dr, l3 * s1 * s23,
		l1*c1 - s1*r, -c1 * dr, -l3 * c1 * s23,
	})
}

// legInverseKinematics solves one leg geometrically. The y-z components of the target
// relative to the hip are the vector (l1, r) rotated by t1, which gives the signed pitch
// plane reach r and then t1; (r, x) is a planar two link arm solved with the law of
// cosines for t3 and t2.
func legInverseKinematics(id leg.ID, g LegGeometry, target r3.Vector) ([3]float64, error) {
	l1, l2, l3 := g.Links[0], g.Links[1], g.Links[2]
	p := target.Sub(g.HipOffset)

	rSq := p.Y*p.Y + p.Z*p.Z - l1*l1
	if rSq < 0 {
		return [3]float64{}, NewUnreachableError(id, target, "inside the abduction offset")
	}
	// the foot stays on the side of the hip the thigh points to
	r := math.Copysign(math.Sqrt(rSq), l2)
	t1 := math.Atan2(p.Z, p.Y) - math.Atan2(r, l1)

	d := math.Hypot(r, p.X)
	a2, a3 := math.Abs(l2), math.Abs(l3)
	maxReach, minReach := a2+a3, math.Abs(a2-a3)
	if d > maxReach || d < minReach {
		return [3]float64{}, NewUnreachableError(id, target,
			fmt.Sprintf("pitch plane distance %.4f outside [%.4f, %.4f]", d, minReach, maxReach))
	}

	// rounding can still land a hair outside [-1, 1] at full extension
	c3 := utils.Clamp((d*d-l2*l2-l3*l3)/(2*l2*l3), -1, 1)
	t3 := math.Acos(c3)
	if KneeBackward {
		t3 = -t3
	}
	s3 := math.Sin(t3)
	t2 := math.Atan2(p.X, r) - math.Atan2(l3*s3, l2+l3*c3)

	return [3]float64{utils.WrapAngle(t1), utils.WrapAngle(t2), utils.WrapAngle(t3)}, nil
}
