//go:build tinygo

package axis

import (
	"machine"
	"time"
)

// Driver timing, generous for A4988 and DRV8825 class drivers.
const (
	pulseWidth = 2 * time.Microsecond
	dirSetup   = 1 * time.Microsecond
)

// PinConfig assigns the STEP/DIR pins of a driver-style stepper. Enable is
// shared by both joints on the reference rig and is active low.
type PinConfig struct {
	Step   machine.Pin
	Dir    machine.Pin
	Enable machine.Pin
}

// Stepper drives a STEP/DIR driver with the same ramp as Sim, timed by the
// wall clock between Run calls.
type Stepper struct {
	pins PinConfig
	prof profile
	last time.Time
}

func NewStepper(pins PinConfig) *Stepper {
	pins.Step.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pins.Dir.Configure(machine.PinConfig{Mode: machine.PinOutput})
	if pins.Enable != machine.NoPin {
		pins.Enable.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pins.Enable.High()
	}
	return &Stepper{pins: pins}
}

func (s *Stepper) Enable() error {
	if s.pins.Enable != machine.NoPin {
		s.pins.Enable.Low()
	}
	s.last = time.Now()
	return nil
}

func (s *Stepper) MoveTo(target int64)       { s.prof.moveTo(target) }
func (s *Stepper) DistanceToGo() int64       { return s.prof.distanceToGo() }
func (s *Stepper) CurrentPosition() int64    { return s.prof.pos }
func (s *Stepper) Stop()                     { s.prof.stop() }
func (s *Stepper) SetAcceleration(a float64) { s.prof.accel = a }
func (s *Stepper) Acceleration() float64     { return s.prof.accel }
func (s *Stepper) SetMaxSpeed(v float64)     { s.prof.maxSpeed = v }

// Run emits at most one step per call, so the loop rate caps the speed the
// way it does for AccelStepper.
func (s *Stepper) Run() bool {
	now := time.Now()
	dt := now.Sub(s.last).Seconds()
	s.last = now

	n := s.prof.advanceAtMost(dt, 1)
	if n != 0 {
		s.pins.Dir.Set(n > 0)
		time.Sleep(dirSetup)
		s.pins.Step.High()
		time.Sleep(pulseWidth)
		s.pins.Step.Low()
	}
	return s.prof.distanceToGo() != 0
}
