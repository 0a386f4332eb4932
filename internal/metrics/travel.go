package metrics

import (
	"math"

	"github.com/san-kum/twolink/internal/sim"
)

// JointTravel sums the absolute rotation of both joints in radians.
type JointTravel struct {
	name  string
	sum   float64
	prev  sim.Sample
	first bool
}

func NewJointTravel() *JointTravel {
	return &JointTravel{name: "joint_travel", first: true}
}

func (j *JointTravel) Name() string {
	return j.name
}

func (j *JointTravel) Observe(s sim.Sample) {
	if !j.first {
		j.sum += math.Abs(s.Q1-j.prev.Q1) + math.Abs(s.Q2-j.prev.Q2)
	}
	j.prev = s
	j.first = false
}

func (j *JointTravel) Value() float64 {
	return j.sum
}

func (j *JointTravel) Reset() {
	j.sum = 0
	j.first = true
}

// PeakSpeed is the fastest end-effector speed between consecutive samples,
// in length units per second.
type PeakSpeed struct {
	name  string
	peak  float64
	prev  sim.Sample
	first bool
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed", first: true}
}

func (p *PeakSpeed) Name() string {
	return p.name
}

func (p *PeakSpeed) Observe(s sim.Sample) {
	if !p.first {
		if dt := s.T - p.prev.T; dt > 0 {
			v := math.Hypot(s.X-p.prev.X, s.Y-p.prev.Y) / dt
			p.peak = math.Max(p.peak, v)
		}
	}
	p.prev = s
	p.first = false
}

func (p *PeakSpeed) Value() float64 {
	return p.peak
}

func (p *PeakSpeed) Reset() {
	p.peak = 0
	p.first = true
}
