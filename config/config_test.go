package config

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/kinematics"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/quadruped"
	"go.viam.com/quadruped/referenceframe"
)

func validConfig() *Config {
	names := make([]string, 0, kinematics.NumJoints)
	positions := make([]float64, 0, kinematics.NumJoints)
	for _, n := range leg.Names() {
		names = append(names, n+"_hip_joint", n+"_thigh_joint", n+"_calf_joint")
		positions = append(positions, 0, 0.67, -1.3)
	}
	return &Config{
		BaseLink: "trunk",
		Legs:     LegsConfig{LegNames: leg.Names()},
		Joints: JointsConfig{
			NumJoints:          kinematics.NumJoints,
			JointNames:         names,
			InitJointPositions: positions,
		},
		Gait: GaitConfig{TStance: 0.6, TSwing: 0.4, Height: 0.08, GaitOffsetPhases: []float64{0, 0.5, 0.5, 0}},
		RobotState: RobotStateConfig{
			Position:    []float64{0, 0, 0.35},
			Orientation: []float64{0, 0, 0, 1},
		},
		Control: ControlConfig{FrequencyHz: 100},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	cc, err := cfg.ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cc.Validate(), test.ShouldBeNil)
	test.That(t, cc.Stance, test.ShouldEqual, 600*time.Millisecond)
	test.That(t, cc.Swing, test.ShouldEqual, 400*time.Millisecond)
	test.That(t, cc.Offsets, test.ShouldResemble, gait.Trot)
	test.That(t, cc.Geometry, test.ShouldResemble, kinematics.DefaultGeometry())
	test.That(t, cc.JointNames[leg.FL.JointIndex(1)], test.ShouldEqual, "FL_thigh_joint")
	test.That(t, cc.InitialPose.Point, test.ShouldResemble, r3.Vector{Z: 0.35})
	test.That(t, cfg.Control.Period(), test.ShouldEqual, 10*time.Millisecond)

	in := cfg.Inputs()
	test.That(t, in.Twist.Linear, test.ShouldResemble, r3.Vector{})
	test.That(t, in.Pose.Point.Z, test.ShouldEqual, 0.35)
}

func TestValidateJoints(t *testing.T) {
	cfg := validConfig()
	cfg.Joints.NumJoints = 11
	err := cfg.Validate()
	test.That(t, errors.Is(err, kinematics.ErrDimensionMismatch), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "num_joints")

	cfg = validConfig()
	cfg.Joints.JointNames = cfg.Joints.JointNames[:10]
	cfg.Joints.InitJointPositions = append(cfg.Joints.InitJointPositions, 0)
	err = cfg.Validate()
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint_names has 10 entries")
	test.That(t, err.Error(), test.ShouldContainSubstring, "init_joint_positions has 13 entries")
	_, err = cfg.ControllerConfig()
	test.That(t, errors.Is(err, kinematics.ErrDimensionMismatch), test.ShouldBeTrue)
}

func TestValidateLegNames(t *testing.T) {
	cfg := validConfig()
	cfg.Legs.LegNames = []string{"FL", "RL", "RR", "FR"}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "legs.leg_names.0")

	cfg.Legs.LegNames = []string{"RL", "FL"}
	test.That(t, errors.Is(cfg.Validate(), kinematics.ErrDimensionMismatch), test.ShouldBeTrue)
}

func TestValidateGait(t *testing.T) {
	cfg := validConfig()
	cfg.Gait.TStance = 0
	cfg.Gait.GaitOffsetPhases = []float64{0, 0.5, 1, 0}
	err := cfg.Validate()
	test.That(t, errors.Is(err, gait.ErrInvalidTiming), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "t_stance")
	test.That(t, err.Error(), test.ShouldContainSubstring, "gait.gait_offset_phases")

	cfg = validConfig()
	cfg.Gait.Preset = "trot"
	test.That(t, cfg.Validate().Error(), test.ShouldContainSubstring, "only one of")

	cfg.Gait.GaitOffsetPhases = nil
	cfg.Gait.Preset = "bound"
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	cc, err := cfg.ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cc.Offsets, test.ShouldResemble, gait.Bound)

	cfg.Gait.Preset = "canter"
	test.That(t, cfg.Validate().Error(), test.ShouldContainSubstring, "gait.preset")

	cfg.Gait.Preset = ""
	test.That(t, cfg.Validate().Error(), test.ShouldContainSubstring, `"gait_offset_phases" is required`)
}

func TestValidateGeometry(t *testing.T) {
	cfg := validConfig()
	cfg.Geometry.Links = []float64{0.08, -0.2, 0.2}
	err := cfg.Validate()
	test.That(t, err.Error(), test.ShouldContainSubstring, "geometry.links.1")

	cfg = validConfig()
	cfg.Geometry.Legs = map[string]LegGeometryConfig{
		"FR": {HipOffset: []float64{0.2, -0.05, 0}, Links: []float64{-0.08, -0.21, 0.23}},
	}
	err = cfg.Validate()
	test.That(t, err.Error(), test.ShouldContainSubstring, "share a sign")

	cfg.Geometry.Legs["FR"] = LegGeometryConfig{HipOffset: []float64{0.2, -0.05, 0}, Links: []float64{-0.08, -0.21, -0.23}}
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	g := cfg.Geometry.Build()
	test.That(t, g[leg.FR].HipOffset, test.ShouldResemble, r3.Vector{X: 0.2, Y: -0.05})
	test.That(t, g[leg.FL], test.ShouldResemble, kinematics.DefaultGeometry()[leg.FL])

	cfg.Geometry.Legs["XX"] = LegGeometryConfig{}
	test.That(t, errors.Is(cfg.Validate(), leg.ErrNotFound), test.ShouldBeTrue)
}

func TestValidateStateAndControl(t *testing.T) {
	cfg := validConfig()
	cfg.RobotState.Orientation = []float64{0, 0, 1}
	cfg.RobotState.Position = []float64{0, 0}
	cfg.RobotCmd.Frame = "odom"
	cfg.Control.FrequencyHz = 2000
	cfg.Control.PreviewSteps = -1
	err := cfg.Validate()
	msg := err.Error()
	for _, want := range []string{"robot_state.orientation", "robot_state.position", "robot_cmd.frame", "frequency_hz", "preview_steps"} {
		test.That(t, msg, test.ShouldContainSubstring, want)
	}

	cfg = validConfig()
	cfg.RobotState.Orientation = []float64{0, 0, 0, 0}
	test.That(t, cfg.Validate().Error(), test.ShouldContainSubstring, "zero length")

	cfg = validConfig()
	cfg.Control.FrequencyHz = math.NaN()
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)

	cfg = validConfig()
	cfg.RobotState.Orientation = []float64{0, 0, math.Sin(math.Pi / 4), math.Cos(math.Pi / 4)}
	cfg.RobotCmd = RobotCmdConfig{LinearVelocity: []float64{0.2, 0, 0}, Frame: string(referenceframe.Body)}
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	in := cfg.Inputs()
	w, err := in.Twist.InWorld(in.Pose)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w.Linear.Y, test.ShouldAlmostEqual, 0.2)
}

func TestString(t *testing.T) {
	s := validConfig().String()
	for _, name := range leg.Names() {
		test.That(t, s, test.ShouldContainSubstring, name)
	}
	test.That(t, s, test.ShouldContainSubstring, "trunk")
	test.That(t, strings.Count(s, "(0.000, 0.670, -1.300)"), test.ShouldEqual, leg.Count)
}

func TestControllerFromConfig(t *testing.T) {
	cc, err := validConfig().ControllerConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cc.InitialJoints.Leg(leg.RR), test.ShouldResemble, [3]float64{0, 0.67, -1.3})

	c, err := quadruped.NewController(cc, clock.NewMock(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	c.Start()
	cmd, err := c.Cycle(validConfig().Inputs())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.Named()["RR_calf_joint"], test.ShouldAlmostEqual, -1.3, 1e-9)
}
