package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestZeroValueIsIdentity(t *testing.T) {
	var rm RotationMatrix
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, rm.Rotate(v), test.ShouldResemble, v)
	test.That(t, rm.AlmostEqual(NewRotationFromQuaternion(0, 0, 0, 1), 1e-12), test.ShouldBeTrue)
	test.That(t, rm.AlmostEqual(NewRotationFromQuaternion(0, 0, 0, 0), 1e-12), test.ShouldBeTrue)
}

func TestQuaternionMatchesRPY(t *testing.T) {
	yaw := math.Pi / 3
	q := NewRotationFromQuaternion(0, 0, math.Sin(yaw/2), math.Cos(yaw/2))
	rpy := NewRotationFromRPY(0, 0, yaw)
	test.That(t, q.AlmostEqual(rpy, 1e-9), test.ShouldBeTrue)
	test.That(t, q.Yaw(), test.ShouldAlmostEqual, yaw, 1e-9)

	rotated := rpy.Rotate(r3.Vector{X: 1})
	test.That(t, rotated.X, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, rotated.Y, test.ShouldAlmostEqual, math.Sqrt(3)/2, 1e-9)
}

func TestTransposeInverts(t *testing.T) {
	rm := NewRotationFromRPY(0.1, -0.4, 2.2)
	v := r3.Vector{X: 0.3, Y: -1.2, Z: 0.8}
	back := rm.Transpose().Rotate(rm.Rotate(v))
	test.That(t, back.Sub(v).Norm(), test.ShouldBeLessThan, 1e-12)
	test.That(t, rm.Compose(rm.Transpose()).AlmostEqual(IdentityRotation(), 1e-12), test.ShouldBeTrue)
}

func TestPoseRoundTrip(t *testing.T) {
	pose := NewPose(NewRotationFromRPY(0.05, 0.02, 0.7), r3.Vector{X: 1, Y: -2, Z: 0.3})
	body := r3.Vector{X: 0.196, Y: 0.05, Z: -0.3}
	world := pose.ToWorld(body)
	test.That(t, pose.ToBody(world).Sub(body).Norm(), test.ShouldBeLessThan, 1e-12)

	zero := NewZeroPose()
	test.That(t, zero.ToWorld(body), test.ShouldResemble, body)
}
