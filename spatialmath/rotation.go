// Package spatialmath defines the rotation and pose types used to move foot positions
// between the body frame and the world frame.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/quadruped/utils"
)

// RotationMatrix is a 3x3 rotation taking body frame vectors into the world frame.
// The zero value is the identity rotation.
type RotationMatrix struct {
	mat mgl64.Mat3
	set bool
}

// NewRotationMatrix wraps an mgl64 matrix. The caller is responsible for it being orthonormal.
func NewRotationMatrix(m mgl64.Mat3) RotationMatrix {
	return RotationMatrix{mat: m, set: true}
}

// NewRotationMatrixFromRows builds a rotation from row-major entries.
func NewRotationMatrixFromRows(rows [3][3]float64) RotationMatrix {
	return NewRotationMatrix(mgl64.Mat3FromRows(
		mgl64.Vec3{rows[0][0], rows[0][1], rows[0][2]},
		mgl64.Vec3{rows[1][0], rows[1][1], rows[1][2]},
		mgl64.Vec3{rows[2][0], rows[2][1], rows[2][2]},
	))
}

// IdentityRotation returns the rotation that leaves vectors unchanged.
func IdentityRotation() RotationMatrix {
	return RotationMatrix{}
}

// NewRotationFromQuaternion converts an (x, y, z, w) quaternion, normalizing it first.
// A zero quaternion yields the identity.
func NewRotationFromQuaternion(x, y, z, w float64) RotationMatrix {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
	if q.Len() == 0 {
		return IdentityRotation()
	}
	return NewRotationMatrix(q.Normalize().Mat4().Mat3())
}

// NewRotationFromRPY returns Rz(yaw) * Ry(pitch) * Rx(roll).
func NewRotationFromRPY(roll, pitch, yaw float64) RotationMatrix {
	return NewRotationMatrix(mgl64.Rotate3DZ(yaw).Mul3(mgl64.Rotate3DY(pitch)).Mul3(mgl64.Rotate3DX(roll)))
}

func (rm RotationMatrix) matrix() mgl64.Mat3 {
	if !rm.set {
		return mgl64.Ident3()
	}
	return rm.mat
}

// Mat3 returns the underlying matrix.
func (rm RotationMatrix) Mat3() mgl64.Mat3 {
	return rm.matrix()
}

// At returns the entry at row, col.
func (rm RotationMatrix) At(row, col int) float64 {
	return rm.matrix().At(row, col)
}

// Rotate applies the rotation to v.
func (rm RotationMatrix) Rotate(v r3.Vector) r3.Vector {
	return fromVec3(rm.matrix().Mul3x1(toVec3(v)))
}

// Transpose returns the inverse rotation.
func (rm RotationMatrix) Transpose() RotationMatrix {
	return NewRotationMatrix(rm.matrix().Transpose())
}

// Compose returns rm * other, i.e. other is applied first.
func (rm RotationMatrix) Compose(other RotationMatrix) RotationMatrix {
	return NewRotationMatrix(rm.matrix().Mul3(other.matrix()))
}

// Yaw returns the heading of the rotation about the world z axis.
func (rm RotationMatrix) Yaw() float64 {
	m := rm.matrix()
	return math.Atan2(m.At(1, 0), m.At(0, 0))
}

// AlmostEqual compares entry by entry.
func (rm RotationMatrix) AlmostEqual(other RotationMatrix, epsilon float64) bool {
	a, b := rm.matrix(), other.matrix()
	for i := range a {
		if !utils.Float64AlmostEqual(a[i], b[i], epsilon) {
			return false
		}
	}
	return true
}

func (rm RotationMatrix) String() string {
	m := rm.matrix()
	return fmt.Sprintf("[%.4f %.4f %.4f; %.4f %.4f %.4f; %.4f %.4f %.4f]",
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2))
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
