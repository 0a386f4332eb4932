package sim

import (
	"time"

	"github.com/san-kum/twolink/internal/kinematics"
)

// Target is one command for the arm: two joint angles in degrees when
// Angles is set, otherwise a Cartesian point.
type Target struct {
	A      float64 `json:"a" yaml:"a"`
	B      float64 `json:"b" yaml:"b"`
	Angles bool    `json:"angles,omitempty" yaml:"angles,omitempty"`
}

func PointTarget(p kinematics.Point) Target { return Target{A: p.X, B: p.Y} }

// Sample is the arm at one instant. Q/X/Y are where the mechanism is,
// derived from the axis positions; the Cmd fields are the controller's
// logical state.
type Sample struct {
	T      float64 `json:"t"`
	Q1     float64 `json:"q1"`
	Q2     float64 `json:"q2"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	S1     int64   `json:"s1"`
	S2     int64   `json:"s2"`
	CmdQ1  float64 `json:"cmd_q1"`
	CmdQ2  float64 `json:"cmd_q2"`
	CmdX   float64 `json:"cmd_x"`
	CmdY   float64 `json:"cmd_y"`
	Moving bool    `json:"moving"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

type Config struct {
	Tick time.Duration
	// SampleEvery records one sample per this many ticks.
	SampleEvery int
	// Timeout bounds the virtual time spent on a single target.
	Timeout time.Duration
	// StopAfter issues an emergency stop at this virtual time and ends the run.
	StopAfter time.Duration
}

type Rejection struct {
	Index  int    `json:"index"`
	Target Target `json:"target"`
	Reason string `json:"reason"`
}

type Result struct {
	Samples  []Sample
	Rejected []Rejection
	Metrics  map[string]float64
	Reached  int
	Stopped  bool
	Elapsed  time.Duration
}
