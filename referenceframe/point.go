// Package referenceframe tags foot positions with the frame they are expressed in and
// converts them between the body frame and the world frame.
package referenceframe

import (
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/quadruped/spatialmath"
)

// Name identifies a reference frame.
type Name string

const (
	// World is the fixed frame footholds and swing trajectories live in.
	World Name = "world"
	// Body is the frame attached to the trunk; leg kinematics work here.
	Body Name = "body"
)

// Point is a position that carries the frame it is expressed in.
type Point struct {
	Frame  Name
	Vector r3.Vector
}

// NewWorldPoint tags v as a world frame position.
func NewWorldPoint(v r3.Vector) Point {
	return Point{Frame: World, Vector: v}
}

// NewBodyPoint tags v as a body frame position.
func NewBodyPoint(v r3.Vector) Point {
	return Point{Frame: Body, Vector: v}
}

// In expresses the point in frame `to`, using pose as the body's placement in the world.
func (p Point) In(to Name, pose spatialmath.Pose) (Point, error) {
	if err := checkFrame(p.Frame); err != nil {
		return Point{}, err
	}
	if err := checkFrame(to); err != nil {
		return Point{}, err
	}
	switch {
	case p.Frame == to:
		return p, nil
	case to == World:
		return NewWorldPoint(pose.ToWorld(p.Vector)), nil
	default:
		return NewBodyPoint(pose.ToBody(p.Vector)), nil
	}
}

func (p Point) String() string {
	return fmt.Sprintf("%s(%.4f, %.4f, %.4f)", p.Frame, p.Vector.X, p.Vector.Y, p.Vector.Z)
}

func checkFrame(n Name) error {
	if n != World && n != Body {
		return NewUnknownFrameError(n)
	}
	return nil
}
