package axis

import (
	"fmt"
	"time"
)

// DefaultTick is the control cadence used when a Sim is built without one.
const DefaultTick = time.Millisecond

// Sim is an acceleration-limited axis on a virtual clock: every Run advances
// time by a fixed tick. It is deterministic, so tests and recorded runs
// replay exactly.
type Sim struct {
	name    string
	tick    time.Duration
	prof    profile
	enabled bool
	elapsed time.Duration
	steps   int64
}

func NewSim(name string, tick time.Duration) *Sim {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Sim{name: name, tick: tick}
}

func (s *Sim) Enable() error {
	s.enabled = true
	return nil
}

func (s *Sim) MoveTo(target int64)       { s.prof.moveTo(target) }
func (s *Sim) DistanceToGo() int64       { return s.prof.distanceToGo() }
func (s *Sim) CurrentPosition() int64    { return s.prof.pos }
func (s *Sim) Stop()                     { s.prof.stop() }
func (s *Sim) SetAcceleration(a float64) { s.prof.accel = a }
func (s *Sim) Acceleration() float64     { return s.prof.accel }
func (s *Sim) SetMaxSpeed(v float64)     { s.prof.maxSpeed = v }

// Run advances one tick and reports whether the axis still has distance to
// go. A disabled driver holds position.
func (s *Sim) Run() bool {
	s.elapsed += s.tick
	if !s.enabled {
		return s.prof.distanceToGo() != 0
	}
	s.steps += abs(s.prof.advance(s.tick.Seconds()))
	return s.prof.distanceToGo() != 0
}

// SetPosition redefines the current position as p without moving, as after
// homing.
func (s *Sim) SetPosition(p int64) {
	s.prof.pos, s.prof.target = p, p
	s.prof.speed, s.prof.frac = 0, 0
}

func (s *Sim) Speed() float64         { return s.prof.speed }
func (s *Sim) Elapsed() time.Duration { return s.elapsed }
func (s *Sim) StepsTaken() int64      { return s.steps }
func (s *Sim) Enabled() bool          { return s.enabled }

func (s *Sim) String() string {
	return fmt.Sprintf("%s pos=%d target=%d speed=%.1f", s.name, s.prof.pos, s.prof.target, s.prof.speed)
}
