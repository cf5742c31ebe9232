// Package config defines the quadruped configuration file and its validation.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/kinematics"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/quadruped"
	"go.viam.com/quadruped/referenceframe"
	"go.viam.com/quadruped/spatialmath"
)

// MaxFrequencyHz is the fastest control rate a config may ask for.
const MaxFrequencyHz = 1000

// A Config describes the robot, its gait and how fast to run the control loop.
type Config struct {
	BaseLink   string           `json:"base_link"`
	Legs       LegsConfig       `json:"legs"`
	Joints     JointsConfig     `json:"joints"`
	Geometry   GeometryConfig   `json:"geometry"`
	Gait       GaitConfig       `json:"gait"`
	Planner    PlannerConfig    `json:"planner"`
	RobotState RobotStateConfig `json:"robot_state"`
	RobotCmd   RobotCmdConfig   `json:"robot_cmd"`
	Control    ControlConfig    `json:"control"`

	ConfigFilePath string `json:"-"`
}

// LegsConfig names the legs. The names must be RL, FL, RR, FR in that order.
type LegsConfig struct {
	LegNames []string `json:"leg_names"`
}

// JointsConfig names the joints and gives their starting angles, in joint vector order.
type JointsConfig struct {
	NumJoints          int       `json:"num_joints"`
	JointNames         []string  `json:"joint_names"`
	InitJointPositions []float64 `json:"init_joint_positions"`
}

// GeometryConfig gives the leg dimensions. HipOffset and Links are unsigned magnitudes
// mirrored onto every corner; Legs overrides single legs with signed values.
type GeometryConfig struct {
	HipOffset []float64                    `json:"hip_offset,omitempty"`
	Links     []float64                    `json:"links,omitempty"`
	Legs      map[string]LegGeometryConfig `json:"legs,omitempty"`
}

// LegGeometryConfig is the signed geometry of a single leg.
type LegGeometryConfig struct {
	HipOffset []float64 `json:"hip_offset"`
	Links     []float64 `json:"links"`
}

// GaitConfig gives the gait timing in seconds. Exactly one of GaitOffsetPhases and Preset is set.
type GaitConfig struct {
	TStance          float64   `json:"t_stance"`
	TSwing           float64   `json:"t_swing"`
	Height           float64   `json:"height"`
	GaitOffsetPhases []float64 `json:"gait_offset_phases,omitempty"`
	Preset           string    `json:"preset,omitempty"`
}

// PlannerConfig tunes the foothold planner.
type PlannerConfig struct {
	FeedbackGain float64 `json:"feedback_gain"`
}

// RobotStateConfig is the body state the controller starts from. Orientation is a
// quaternion in x, y, z, w order.
type RobotStateConfig struct {
	Position       []float64 `json:"position"`
	Orientation    []float64 `json:"orientation"`
	LinearVelocity []float64 `json:"linear_velocity"`
}

// RobotCmdConfig is the twist commanded until something else is received.
type RobotCmdConfig struct {
	LinearVelocity  []float64 `json:"linear_velocity"`
	AngularVelocity []float64 `json:"angular_velocity"`
	Frame           string    `json:"frame,omitempty"`
}

// ControlConfig sets the loop rate and how many points a swing preview has.
type ControlConfig struct {
	FrequencyHz  float64 `json:"frequency_hz"`
	PreviewSteps int     `json:"preview_steps"`
}

// Validate returns every problem found in the config, each tagged with its path.
func (c *Config) Validate() error {
	var errs error
	if c.BaseLink == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError("", "base_link"))
	}
	errs = multierr.Combine(
		errs,
		c.Legs.Validate("legs"),
		c.Joints.Validate("joints"),
		c.Geometry.Validate("geometry"),
		c.Gait.Validate("gait"),
		c.RobotState.Validate("robot_state"),
		c.RobotCmd.Validate("robot_cmd"),
		c.Control.Validate("control"),
	)
	return errs
}

// Validate ensures the legs are named in joint vector order.
func (c *LegsConfig) Validate(path string) error {
	if len(c.LegNames) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "leg_names")
	}
	want := leg.Names()
	if len(c.LegNames) != len(want) {
		return utils.NewConfigValidationError(path, kinematics.NewDimensionMismatchError("leg_names", len(c.LegNames), len(want)))
	}
	for i, name := range c.LegNames {
		if !strings.EqualFold(name, want[i]) {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.%s.%d", path, "leg_names", i),
				errors.Errorf("expected leg %q, got %q", want[i], name))
		}
	}
	return nil
}

// Validate ensures there is one name and one initial position per joint.
func (c *JointsConfig) Validate(path string) error {
	if c.NumJoints != kinematics.NumJoints {
		return utils.NewConfigValidationError(path, kinematics.NewDimensionMismatchError("num_joints", c.NumJoints, kinematics.NumJoints))
	}
	var errs error
	if len(c.JointNames) != c.NumJoints {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			kinematics.NewDimensionMismatchError("joint_names", len(c.JointNames), c.NumJoints)))
	}
	for i, name := range c.JointNames {
		if name == "" {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(fmt.Sprintf("%s.%s", path, "joint_names"), fmt.Sprint(i)))
		}
	}
	if len(c.InitJointPositions) != c.NumJoints {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			kinematics.NewDimensionMismatchError("init_joint_positions", len(c.InitJointPositions), c.NumJoints)))
	}
	return errs
}

// Validate checks vector lengths and that the resulting geometry is solvable.
func (c *GeometryConfig) Validate(path string) error {
	var errs error
	if len(c.HipOffset) != 0 {
		errs = multierr.Append(errs, validateVector(path, "hip_offset", c.HipOffset, 3))
	}
	if len(c.Links) != 0 {
		errs = multierr.Append(errs, validateVector(path, "links", c.Links, 3))
		for i, l := range c.Links {
			if l <= 0 {
				errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s.%d", path, "links", i),
					errors.Errorf("link length must be positive, got %v", l)))
			}
		}
	}
	for name, lc := range c.Legs {
		legPath := fmt.Sprintf("%s.%s.%s", path, "legs", name)
		if _, err := leg.Parse(name); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(legPath, err))
			continue
		}
		errs = multierr.Combine(errs,
			validateVector(legPath, "hip_offset", lc.HipOffset, 3),
			validateVector(legPath, "links", lc.Links, 3))
	}
	if errs != nil {
		return errs
	}
	if err := c.Build().Validate(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Build returns the geometry described, falling back to the reference robot's dimensions.
func (c *GeometryConfig) Build() kinematics.Geometry {
	hip := r3.Vector{X: kinematics.DefaultHipX, Y: kinematics.DefaultHipY}
	if len(c.HipOffset) == 3 {
		hip = toVector(c.HipOffset)
	}
	l1, l2, l3 := kinematics.DefaultL1, kinematics.DefaultL2, kinematics.DefaultL3
	if len(c.Links) == 3 {
		l1, l2, l3 = c.Links[0], c.Links[1], c.Links[2]
	}
	g := kinematics.NewSymmetricGeometry(hip, l1, l2, l3)
	for name, lc := range c.Legs {
		id, err := leg.Parse(name)
		if err != nil || len(lc.HipOffset) != 3 || len(lc.Links) != 3 {
			continue
		}
		g[id] = kinematics.LegGeometry{
			HipOffset: toVector(lc.HipOffset),
			Links:     [3]float64{lc.Links[0], lc.Links[1], lc.Links[2]},
		}
	}
	return g
}

// Validate checks the gait timing and offsets.
func (c *GaitConfig) Validate(path string) error {
	var errs error
	if c.TStance <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Wrapf(gait.ErrInvalidTiming, "t_stance must be positive, got %v", c.TStance)))
	}
	if c.TSwing <= 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Wrapf(gait.ErrInvalidTiming, "t_swing must be positive, got %v", c.TSwing)))
	}
	if c.Height < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("height must not be negative, got %v", c.Height)))
	}
	switch {
	case c.Preset != "" && len(c.GaitOffsetPhases) != 0:
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.New("only one of gait_offset_phases and preset may be set")))
	case c.Preset != "":
		if _, err := gait.PresetOffsets(c.Preset); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "preset"), err))
		}
	default:
		if err := validateVector(path, "gait_offset_phases", c.GaitOffsetPhases, leg.Count); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		if err := c.offsets().Validate(); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "gait_offset_phases"), err))
		}
	}
	return errs
}

func (c *GaitConfig) offsets() gait.Offsets {
	if c.Preset != "" {
		//nolint:errcheck
		o, _ := gait.PresetOffsets(c.Preset)
		return o
	}
	var o gait.Offsets
	copy(o[:], c.GaitOffsetPhases)
	return o
}

// Validate checks vector lengths and that the orientation is a usable quaternion.
func (c *RobotStateConfig) Validate(path string) error {
	errs := multierr.Combine(
		validateOptionalVector(path, "position", c.Position, 3),
		validateOptionalVector(path, "linear_velocity", c.LinearVelocity, 3),
		validateOptionalVector(path, "orientation", c.Orientation, 4),
	)
	if len(c.Orientation) == 4 {
		var n float64
		for _, v := range c.Orientation {
			n += v * v
		}
		if n == 0 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "orientation"),
				errors.New("quaternion has zero length")))
		}
	}
	return errs
}

// Validate checks vector lengths and the frame name.
func (c *RobotCmdConfig) Validate(path string) error {
	errs := multierr.Combine(
		validateOptionalVector(path, "linear_velocity", c.LinearVelocity, 3),
		validateOptionalVector(path, "angular_velocity", c.AngularVelocity, 3),
	)
	switch referenceframe.Name(c.Frame) {
	case "", referenceframe.World, referenceframe.Body:
	default:
		errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, "frame"),
			referenceframe.NewUnknownFrameError(referenceframe.Name(c.Frame))))
	}
	return errs
}

// Validate checks the loop rate.
func (c *ControlConfig) Validate(path string) error {
	var errs error
	if c.FrequencyHz <= 0 || c.FrequencyHz > MaxFrequencyHz || math.IsNaN(c.FrequencyHz) {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("frequency_hz must be in (0, %d], got %v", MaxFrequencyHz, c.FrequencyHz)))
	}
	if c.PreviewSteps < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("preview_steps must not be negative, got %d", c.PreviewSteps)))
	}
	return errs
}

// Period returns the time between control cycles.
func (c *ControlConfig) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.FrequencyHz)
}

// ControllerConfig converts a validated config into the controller's typed config.
func (c *Config) ControllerConfig() (quadruped.ControllerConfig, error) {
	joints, err := kinematics.JointVectorFromSlice(c.Joints.InitJointPositions)
	if err != nil {
		return quadruped.ControllerConfig{}, err
	}
	if len(c.Joints.JointNames) != kinematics.NumJoints {
		return quadruped.ControllerConfig{}, kinematics.NewDimensionMismatchError("joint_names", len(c.Joints.JointNames), kinematics.NumJoints)
	}
	var names [kinematics.NumJoints]string
	copy(names[:], c.Joints.JointNames)

	return quadruped.ControllerConfig{
		Geometry:      c.Geometry.Build(),
		JointNames:    names,
		InitialJoints: joints,
		InitialPose:   c.RobotState.Pose(),
		Stance:        seconds(c.Gait.TStance),
		Swing:         seconds(c.Gait.TSwing),
		Offsets:       c.Gait.offsets(),
		SwingHeight:   c.Gait.Height,
		FeedbackGain:  c.Planner.FeedbackGain,
	}, nil
}

// Pose returns the initial body pose.
func (c *RobotStateConfig) Pose() spatialmath.Pose {
	rot := spatialmath.IdentityRotation()
	if len(c.Orientation) == 4 {
		rot = spatialmath.NewRotationFromQuaternion(c.Orientation[0], c.Orientation[1], c.Orientation[2], c.Orientation[3])
	}
	return spatialmath.NewPose(rot, toVector(c.Position))
}

// Inputs returns the initial controller inputs: the configured body state and command.
func (c *Config) Inputs() quadruped.Inputs {
	return quadruped.Inputs{
		Pose:     c.RobotState.Pose(),
		Velocity: toVector(c.RobotState.LinearVelocity),
		Twist: quadruped.Twist{
			Linear:  toVector(c.RobotCmd.LinearVelocity),
			Angular: toVector(c.RobotCmd.AngularVelocity),
			Frame:   referenceframe.Name(c.RobotCmd.Frame),
		},
	}
}

// String renders one row per leg with its geometry, gait offset and initial joints.
func (c *Config) String() string {
	g := c.Geometry.Build()
	offsets := c.Gait.offsets()
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (stance %.3fs, swing %.3fs, %.0f Hz)", c.BaseLink, c.Gait.TStance, c.Gait.TSwing, c.Control.FrequencyHz))
	t.AppendHeader(table.Row{"Leg", "Hip offset", "Links", "Offset", "Initial joints"})
	for _, id := range leg.All {
		h := g[id].HipOffset
		l := g[id].Links
		joints := "-"
		if i := id.JointIndex(leg.JointsPerLeg - 1); i < len(c.Joints.InitJointPositions) {
			q := c.Joints.InitJointPositions[id.JointIndex(0) : i+1]
			joints = fmt.Sprintf("(%.3f, %.3f, %.3f)", q[0], q[1], q[2])
		}
		t.AppendRow(table.Row{
			id.String(),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", h.X, h.Y, h.Z),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", l[0], l[1], l[2]),
			offsets[id],
			joints,
		})
	}
	return t.Render()
}

func validateVector(path, field string, v []float64, n int) error {
	if len(v) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, field)
	}
	return validateOptionalVector(path, field, v, n)
}

func validateOptionalVector(path, field string, v []float64, n int) error {
	if len(v) != 0 && len(v) != n {
		return utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, field),
			kinematics.NewDimensionMismatchError(field, len(v), n))
	}
	return nil
}

func toVector(v []float64) r3.Vector {
	if len(v) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
