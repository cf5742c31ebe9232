package main

import (
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/quadruped/quadruped"
	"go.viam.com/quadruped/spatialmath"
)

// body dead-reckons the trunk by integrating the commanded twist, standing in for a state
// estimator. Height, roll and pitch stay as configured.
type body struct {
	pose     spatialmath.Pose
	velocity r3.Vector
	initial  spatialmath.RotationMatrix
	yaw      float64
}

func newBody(pose spatialmath.Pose) *body {
	return &body{pose: pose, initial: pose.Rotation}
}

func (b *body) advance(twist quadruped.Twist, dt time.Duration) error {
	w, err := twist.InWorld(b.pose)
	if err != nil {
		return err
	}
	secs := dt.Seconds()
	planar := r3.Vector{X: w.Linear.X, Y: w.Linear.Y}
	b.pose.Point = b.pose.Point.Add(planar.Mul(secs))
	b.yaw += w.Angular.Z * secs
	b.pose.Rotation = spatialmath.NewRotationFromRPY(0, 0, b.yaw).Compose(b.initial)
	b.velocity = planar
	return nil
}
