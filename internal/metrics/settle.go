package metrics

import (
	"math"

	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/sim"
)

// SettleTime is the last time at which the arm was still moving.
type SettleTime struct {
	name string
	last float64
}

func NewSettleTime() *SettleTime {
	return &SettleTime{name: "settle_time"}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(smp sim.Sample) {
	if smp.Moving {
		s.last = smp.T
	}
}

func (s *SettleTime) Value() float64 { return s.last }
func (s *SettleTime) Reset()         { s.last = 0 }

// DualityError tracks the worst disagreement between the controller's
// cached position and the forward image of its logical angles. It should
// stay at float noise.
type DualityError struct {
	name  string
	geo   kinematics.Geometry
	worst float64
}

func NewDualityError(geo kinematics.Geometry) *DualityError {
	return &DualityError{name: "duality_error", geo: geo}
}

func (d *DualityError) Name() string { return d.name }

func (d *DualityError) Observe(s sim.Sample) {
	p := kinematics.Forward(d.geo, kinematics.Angles{Q1: s.CmdQ1, Q2: s.CmdQ2})
	d.worst = math.Max(d.worst, p.Dist(kinematics.Point{X: s.CmdX, Y: s.CmdY}))
}

func (d *DualityError) Value() float64 { return d.worst }
func (d *DualityError) Reset()         { d.worst = 0 }

// Default returns the metrics recorded for every run.
func Default(geo kinematics.Geometry) []sim.Metric {
	return []sim.Metric{
		NewJointTravel(),
		NewPeakSpeed(),
		NewSettleTime(),
		NewDualityError(geo),
	}
}
