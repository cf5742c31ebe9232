package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/quadruped/leg"
)

// ErrUnreachable is returned when no joint angles place the foot at a target.
var ErrUnreachable = errors.New("unreachable")

// ErrDimensionMismatch is returned when a vector does not have one entry per joint.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// NewUnreachableError describes an inverse kinematics target outside the leg's workspace.
func NewUnreachableError(id leg.ID, target r3.Vector, reason string) error {
	return errors.Wrapf(ErrUnreachable, "leg %s target (%.4f, %.4f, %.4f): %s", id, target.X, target.Y, target.Z, reason)
}

// NewDimensionMismatchError reports a vector of the wrong length.
func NewDimensionMismatchError(what string, got, want int) error {
	return errors.Wrapf(ErrDimensionMismatch, "%s has %d entries, expected %d", what, got, want)
}
