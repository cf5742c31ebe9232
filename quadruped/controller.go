package quadruped

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/quadruped/footplanner"
	"go.viam.com/quadruped/gait"
	"go.viam.com/quadruped/kinematics"
	"go.viam.com/quadruped/leg"
	"go.viam.com/quadruped/referenceframe"
	"go.viam.com/quadruped/spatialmath"
	"go.viam.com/quadruped/trajectory"
)

// Inputs is the measured body state and the commanded twist for one cycle.
type Inputs struct {
	// Pose places the body in the world.
	Pose spatialmath.Pose
	// Velocity is the measured body linear velocity in the world frame.
	Velocity r3.Vector
	Twist    Twist
}

// Command is the output of one cycle.
type Command struct {
	Time       time.Time
	Joints     kinematics.JointVector
	JointNames [kinematics.NumJoints]string
	Gait       gait.Map
	// Feet are the world frame reference states the joints were solved for.
	Feet      [leg.Count]trajectory.FootState
	Footholds footplanner.FootholdMap
	// Paths holds a sampled preview of each swing planned this cycle, when enabled.
	Paths [leg.Count][]r3.Vector
}

// Named returns the joint targets keyed by joint name.
func (c Command) Named() map[string]float64 {
	out := make(map[string]float64, kinematics.NumJoints)
	for i, name := range c.JointNames {
		out[name] = c.Joints[i]
	}
	return out
}

// An Option configures a Controller.
type Option func(*Controller)

// WithSwingPreview samples every newly planned swing at steps+1 points into Command.Paths.
func WithSwingPreview(steps int) Option {
	return func(c *Controller) {
		c.previewSteps = steps
	}
}

// A Controller runs the locomotion cycle. Cycle must be called from a single goroutine.
type Controller struct {
	cfg    ControllerConfig
	clk    clock.Clock
	logger golog.Logger

	scheduler  *gait.Scheduler
	trajectory *trajectory.Manager
	planner    *footplanner.Planner

	initialFeet  [leg.Count]r3.Vector
	joints       kinematics.JointVector
	previewSteps int
}

// NewController checks cfg and builds every component. The feet start where forward
// kinematics of the initial joints puts them under the initial pose, and footholds are
// placed at their mean height.
func NewController(cfg ControllerConfig, clk clock.Clock, logger golog.Logger, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid controller config")
	}
	if clk == nil {
		clk = clock.New()
	}
	scheduler, err := gait.NewScheduler(clk, cfg.Stance, cfg.Swing, cfg.Offsets, logger)
	if err != nil {
		return nil, err
	}

	var initial [leg.Count]r3.Vector
	var ground float64
	for id, foot := range cfg.Geometry.ForwardAll(cfg.InitialJoints) {
		initial[id] = cfg.InitialPose.ToWorld(foot)
		ground += initial[id].Z / leg.Count
	}

	traj, err := trajectory.NewManager(cfg.SwingHeight, cfg.Swing, cfg.Stance, initial, logger)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:         cfg,
		clk:         clk,
		logger:      logger,
		scheduler:   scheduler,
		trajectory:  traj,
		planner:     footplanner.New(cfg.Geometry, ground, cfg.FeedbackGain),
		initialFeet: initial,
		joints:      cfg.InitialJoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	logger.Debugw("controller ready", "ground_height", ground, "stance_fraction", scheduler.StanceFraction())
	return c, nil
}

// Start resets the feet and joints to their initial values and starts the gait clock.
func (c *Controller) Start() {
	c.trajectory.Reset(c.initialFeet)
	c.joints = c.cfg.InitialJoints
	c.scheduler.Start()
}

// Scheduler returns the gait scheduler.
func (c *Controller) Scheduler() *gait.Scheduler {
	return c.scheduler
}

// Geometry returns the leg geometry.
func (c *Controller) Geometry() kinematics.Geometry {
	return c.cfg.Geometry
}

// Joints returns the last commanded joints.
func (c *Controller) Joints() kinematics.JointVector {
	return c.joints
}

// GroundHeight returns the world height footholds are placed at.
func (c *Controller) GroundHeight() float64 {
	return c.planner.GroundHeight()
}

// Cycle runs one control step: schedule the gait, plan footholds for legs lifting off,
// sample the reference foot states and solve every leg for its joints. A leg whose target
// cannot be reached keeps its previous joints; the returned error names every such leg
// and the command is still safe to send.
func (c *Controller) Cycle(in Inputs) (Command, error) {
	cmd := Command{
		Time:       c.clk.Now(),
		Joints:     c.joints,
		JointNames: c.cfg.JointNames,
	}
	twist, err := in.Twist.InWorld(in.Pose)
	if err != nil {
		return cmd, err
	}

	gm := c.scheduler.Schedule()
	cmd.Gait = gm

	var bounds trajectory.BoundsMap
	if gm.LiftingOff() {
		cmd.Footholds = c.planner.Positions(
			c.scheduler.StanceDuration(),
			in.Pose.Rotation,
			in.Pose.Point,
			in.Velocity,
			twist.Linear,
			twist.Angular,
			gm,
		)
		for _, id := range leg.All {
			if p, ok := cmd.Footholds.Get(id); ok {
				bounds.Put(id, trajectory.Bounds{Start: c.trajectory.Held(id), End: p})
			}
		}
	}

	var errs error
	feet, err := c.trajectory.ReferenceStatesWithBounds(gm, bounds)
	errs = multierr.Append(errs, err)
	cmd.Feet = feet

	for _, id := range leg.All {
		target, err := referenceframe.NewWorldPoint(feet[id].Position).In(referenceframe.Body, in.Pose)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		q, err := c.cfg.Geometry.LegInverseKinematics(id, target.Vector)
		if err != nil {
			c.logger.Warnw("holding joints", "leg", id, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		cmd.Joints.SetLeg(id, q)
	}
	c.joints = cmd.Joints

	if c.previewSteps > 0 {
		for _, id := range leg.All {
			if _, ok := bounds.Get(id); !ok {
				continue
			}
			path, err := c.trajectory.Path(id, c.previewSteps)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			cmd.Paths[id] = path
		}
	}
	return cmd, errs
}
