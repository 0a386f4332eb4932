// Package axis defines the Motion Axis the arm controller drives, along with
// a simulated implementation on a virtual clock.
//
// An Axis is a single stepper joint that moves to an absolute step target
// under a speed and acceleration limit. Run advances it by one control tick
// and must never block.
package axis

type Axis interface {
	MoveTo(target int64)
	Run() bool
	DistanceToGo() int64
	CurrentPosition() int64
	Stop()
	SetAcceleration(a float64)
	Acceleration() float64
	SetMaxSpeed(s float64)
	Enable() error
}
