package kinematics

import (
	"fmt"
	"math"
)

// Limits is a closed interval of allowed joint angles in radians.
type Limits struct {
	Min, Max float64
}

func (l Limits) Contains(q float64) bool {
	return q >= l.Min && q <= l.Max
}

type JointLimits struct {
	Shoulder Limits
	Elbow    Limits
}

// Check returns ErrOutOfRange naming the first joint outside its limits.
func (j JointLimits) Check(a Angles) error {
	if !j.Shoulder.Contains(a.Q1) {
		return fmt.Errorf("%w: shoulder %.2f° not in [%.2f°, %.2f°]",
			ErrOutOfRange, Deg(a.Q1), Deg(j.Shoulder.Min), Deg(j.Shoulder.Max))
	}
	if !j.Elbow.Contains(a.Q2) {
		return fmt.Errorf("%w: elbow %.2f° not in [%.2f°, %.2f°]",
			ErrOutOfRange, Deg(a.Q2), Deg(j.Elbow.Min), Deg(j.Elbow.Max))
	}
	return nil
}

// Normalize shifts q by whole turns until it falls inside lim. It returns
// q unchanged and false when no shift lands inside the window.
func Normalize(q float64, lim Limits) (float64, bool) {
	if lim.Contains(q) {
		return q, true
	}
	mid := (lim.Min + lim.Max) / 2
	turns := math.Round((mid - q) / (2 * math.Pi))
	shifted := q + turns*2*math.Pi
	if lim.Contains(shifted) {
		return shifted, true
	}
	for _, s := range []float64{shifted - 2*math.Pi, shifted + 2*math.Pi} {
		if lim.Contains(s) {
			return s, true
		}
	}
	return q, false
}
