package quadruped

import (
	"github.com/golang/geo/r3"
	"go.uber.org/atomic"

	"go.viam.com/quadruped/referenceframe"
	"go.viam.com/quadruped/spatialmath"
)

// Twist is a commanded body velocity. Frame says whether Linear and Angular are in the
// world frame or the body frame; empty means world.
type Twist struct {
	Linear  r3.Vector
	Angular r3.Vector
	Frame   referenceframe.Name
}

// InWorld returns the twist expressed in the world frame.
func (t Twist) InWorld(pose spatialmath.Pose) (Twist, error) {
	switch t.Frame {
	case "", referenceframe.World:
		return Twist{Linear: t.Linear, Angular: t.Angular, Frame: referenceframe.World}, nil
	case referenceframe.Body:
		return Twist{
			Linear:  pose.DirectionToWorld(t.Linear),
			Angular: pose.DirectionToWorld(t.Angular),
			Frame:   referenceframe.World,
		}, nil
	default:
		return Twist{}, referenceframe.NewUnknownFrameError(t.Frame)
	}
}

// TwistSlot hands the latest commanded twist from a listener goroutine to the control
// loop. Only the most recent Store is kept.
type TwistSlot struct {
	v atomic.Pointer[Twist]
}

// Store replaces the held twist. Safe to call from any goroutine.
func (s *TwistSlot) Store(t Twist) {
	s.v.Store(&t)
}

// Load returns the held twist and whether one was ever stored.
func (s *TwistSlot) Load() (Twist, bool) {
	t := s.v.Load()
	if t == nil {
		return Twist{}, false
	}
	return *t, true
}

// LoadOr returns the held twist, or def if nothing was stored yet.
func (s *TwistSlot) LoadOr(def Twist) Twist {
	if t, ok := s.Load(); ok {
		return t
	}
	return def
}
