package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose is the body frame expressed in the world frame: a rotation and the position of
// the body origin.
type Pose struct {
	Rotation RotationMatrix
	Point    r3.Vector
}

// NewPose returns a pose from a rotation and a position.
func NewPose(rot RotationMatrix, point r3.Vector) Pose {
	return Pose{Rotation: rot, Point: point}
}

// NewZeroPose returns the pose that coincides with the world frame.
func NewZeroPose() Pose {
	return Pose{}
}

// ToWorld maps a body frame position into the world frame: R*v + p.
func (p Pose) ToWorld(v r3.Vector) r3.Vector {
	return p.Rotation.Rotate(v).Add(p.Point)
}

// ToBody maps a world frame position into the body frame: R^T*(v - p).
func (p Pose) ToBody(v r3.Vector) r3.Vector {
	return p.Rotation.Transpose().Rotate(v.Sub(p.Point))
}

// DirectionToWorld rotates a body frame direction (velocity, offset) into the world frame.
func (p Pose) DirectionToWorld(v r3.Vector) r3.Vector {
	return p.Rotation.Rotate(v)
}

func (p Pose) String() string {
	return fmt.Sprintf("{point: %v, rotation: %v}", p.Point, p.Rotation)
}
