package arm

import (
	"fmt"
	"math"

	"github.com/san-kum/twolink/internal/axis"
	"github.com/san-kum/twolink/internal/kinematics"
)

type state struct {
	angles kinematics.Angles
	point  kinematics.Point
}

type Status struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Q1     float64 `json:"q1"`
	Q2     float64 `json:"q2"`
	Moving bool    `json:"moving"`
}

type Controller struct {
	cfg      Config
	axisOne  axis.Axis
	axisTwo  axis.Axis
	state    state
	accepted int
	rejected int
}

func New(cfg Config, axisOne, axisTwo axis.Axis) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if axisOne == nil || axisTwo == nil {
		return nil, fmt.Errorf("%w: both axes are required", ErrInvalidConfig)
	}
	c := &Controller{cfg: cfg, axisOne: axisOne, axisTwo: axisTwo}
	c.commit(c.AnglesFromSteps(axisOne.CurrentPosition(), axisTwo.CurrentPosition()))
	return c, nil
}

// Initialize enables both drivers and applies the speed and acceleration
// limits. It must run before the first Update.
func (c *Controller) Initialize() error {
	for i, a := range []axis.Axis{c.axisOne, c.axisTwo} {
		if err := a.Enable(); err != nil {
			return fmt.Errorf("enable axis %d: %w", i+1, err)
		}
		a.SetMaxSpeed(c.cfg.MaxSpeed)
		a.SetAcceleration(c.cfg.Acceleration)
	}
	return nil
}

// commit is the only writer of state; it keeps the cached position equal
// to the forward image of the angles.
func (c *Controller) commit(a kinematics.Angles) {
	c.state = state{angles: a, point: kinematics.Forward(c.cfg.Geometry, a)}
}

// SetTarget accepts either two joint angles in degrees (isAngleInput) or a
// Cartesian point, and dispatches the new step targets without waiting.
// A target issued while moving supersedes the previous one. On error the
// controller state is unchanged.
func (c *Controller) SetTarget(a, b float64, isAngleInput bool) error {
	var next kinematics.Angles
	if isAngleInput {
		next = kinematics.Angles{Q1: kinematics.Rad(a), Q2: kinematics.Rad(b)}
		if err := c.cfg.Limits.Check(next); err != nil {
			c.rejected++
			return err
		}
	} else {
		sol, err := kinematics.Solve(c.cfg.Geometry, c.cfg.Limits, kinematics.Point{X: a, Y: b})
		if err != nil {
			c.rejected++
			return err
		}
		next = sol
	}

	c.commit(next)
	c.accepted++

	s1, s2 := c.StepTargets(next)
	c.axisOne.MoveTo(s1)
	c.axisTwo.MoveTo(s2)
	return nil
}

// StepTargets maps joint angles to absolute axis positions.
func (c *Controller) StepTargets(a kinematics.Angles) (int64, int64) {
	s1 := float64(c.cfg.DirOne) * c.cfg.stepsPerRadOne() * a.Q1
	s2 := float64(c.cfg.DirTwo) * c.cfg.stepsPerRadTwo() * (a.Q2 - c.cfg.OriginOffset)
	return int64(math.Round(s1)), int64(math.Round(s2))
}

// AnglesFromSteps inverts StepTargets, up to step quantization.
func (c *Controller) AnglesFromSteps(s1, s2 int64) kinematics.Angles {
	return kinematics.Angles{
		Q1: float64(s1) / (float64(c.cfg.DirOne) * c.cfg.stepsPerRadOne()),
		Q2: float64(s2)/(float64(c.cfg.DirTwo)*c.cfg.stepsPerRadTwo()) + c.cfg.OriginOffset,
	}
}

// Update advances each axis that still has distance to go by one tick.
func (c *Controller) Update() {
	if c.axisOne.DistanceToGo() != 0 {
		c.axisOne.Run()
	}
	if c.axisTwo.DistanceToGo() != 0 {
		c.axisTwo.Run()
	}
}

// Stop halts both axes where they are and re-derives the logical state
// from the positions they actually reached, so angles and position reflect
// the mechanism rather than the interrupted target.
func (c *Controller) Stop() {
	axes := []axis.Axis{c.axisOne, c.axisTwo}
	accel := make([]float64, len(axes))

	for i, a := range axes {
		accel[i] = a.Acceleration()
		a.SetAcceleration(c.cfg.StopAcceleration)
	}
	for _, a := range axes {
		a.Stop()
		a.MoveTo(a.CurrentPosition())
	}

	c.commit(c.AnglesFromSteps(c.axisOne.CurrentPosition(), c.axisTwo.CurrentPosition()))

	for i, a := range axes {
		a.SetAcceleration(accel[i])
	}
}

func (c *Controller) IsMoving() bool {
	return c.axisOne.DistanceToGo() != 0 || c.axisTwo.DistanceToGo() != 0
}

func (c *Controller) Angles() kinematics.Angles  { return c.state.angles }
func (c *Controller) Position() kinematics.Point { return c.state.point }
func (c *Controller) Config() Config             { return c.cfg }

// Counts returns how many targets were accepted and rejected so far.
func (c *Controller) Counts() (accepted, rejected int) {
	return c.accepted, c.rejected
}

// Steps returns the current physical positions of both axes.
func (c *Controller) Steps() (int64, int64) {
	return c.axisOne.CurrentPosition(), c.axisTwo.CurrentPosition()
}

func (c *Controller) Status() Status {
	return Status{
		X:      c.state.point.X,
		Y:      c.state.point.Y,
		Q1:     kinematics.Deg(c.state.angles.Q1),
		Q2:     kinematics.Deg(c.state.angles.Q2),
		Moving: c.IsMoving(),
	}
}
