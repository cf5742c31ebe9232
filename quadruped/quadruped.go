// Package quadruped ties the kinematics, gait scheduler, foothold planner and swing
// trajectories together into one control cycle that turns a commanded body twist into
// joint targets for all four legs.
package quadruped

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/kinematics"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/spatialmath"
)

// Joint name suffixes, in the order of the joints within a leg.
var jointSuffixes = [leg.JointsPerLeg]string{"hip_joint", "thigh_joint", "calf_joint"}

// DefaultJointNames returns names like "FL_thigh_joint" in joint vector order.
func DefaultJointNames() [kinematics.NumJoints]string {
	var names [kinematics.NumJoints]string
	for _, id := range leg.All {
		for j, suffix := range jointSuffixes {
			names[id.JointIndex(j)] = fmt.Sprintf("%s_%s", id, suffix)
		}
	}
	return names
}

// ControllerConfig is everything a Controller needs, already typed and checked.
type ControllerConfig struct {
	Geometry      kinematics.Geometry
	JointNames    [kinematics.NumJoints]string
	InitialJoints kinematics.JointVector
	InitialPose   spatialmath.Pose

	Stance      time.Duration
	Swing       time.Duration
	Offsets     gait.Offsets
	SwingHeight float64

	// FeedbackGain scales the foothold velocity correction; zero or less picks the
	// capture point gain.
	FeedbackGain float64
}

// DefaultControllerConfig returns a trot on the reference robot standing at 0.35 m.
func DefaultControllerConfig() ControllerConfig {
	var q kinematics.JointVector
	for _, id := range leg.All {
		q.SetLeg(id, [3]float64{0, 0.67, -1.3})
	}
	return ControllerConfig{
		Geometry:      kinematics.DefaultGeometry(),
		JointNames:    DefaultJointNames(),
		InitialJoints: q,
		InitialPose:   spatialmath.NewPose(spatialmath.IdentityRotation(), r3.Vector{Z: 0.35}),
		Stance:        600 * time.Millisecond,
		Swing:         400 * time.Millisecond,
		Offsets:       gait.Trot,
		SwingHeight:   0.08,
	}
}

// Validate returns every problem found with the config.
func (cfg ControllerConfig) Validate() error {
	var errs error
	if err := cfg.Geometry.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cfg.Stance <= 0 || cfg.Swing <= 0 {
		errs = multierr.Append(errs, errors.Wrapf(gait.ErrInvalidTiming,
			"stance (%v) and swing (%v) must be positive", cfg.Stance, cfg.Swing))
	}
	if err := cfg.Offsets.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cfg.SwingHeight < 0 {
		errs = multierr.Append(errs, errors.Errorf("swing height must not be negative, got %v", cfg.SwingHeight))
	}
	for i, name := range cfg.JointNames {
		if name == "" {
			errs = multierr.Append(errs, errors.Errorf("joint %d has no name", i))
		}
	}
	return errs
}
