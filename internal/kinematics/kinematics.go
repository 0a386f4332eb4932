package kinematics

import (
	"fmt"
	"math"
)

// reachEpsilon absorbs float noise when a target sits exactly on the
// boundary of the reachable annulus.
const reachEpsilon = 1e-9

type Geometry struct {
	L1, L2 float64
}

type Angles struct {
	Q1, Q2 float64
}

type Point struct {
	X, Y float64
}

func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Reach returns the inner and outer radius of the reachable annulus.
func (g Geometry) Reach() (inner, outer float64) {
	return math.Abs(g.L1 - g.L2), g.L1 + g.L2
}

// Reachable reports whether p lies in the closed annulus. The origin is
// never reachable: the folded pose has no unique shoulder angle.
func (g Geometry) Reachable(p Point) bool {
	d := math.Hypot(p.X, p.Y)
	if d == 0 {
		return false
	}
	inner, outer := g.Reach()
	tol := reachEpsilon * outer
	return d <= outer+tol && d >= inner-tol
}

func Forward(g Geometry, a Angles) Point {
	return Point{
		X: g.L1*math.Cos(a.Q1) + g.L2*math.Cos(a.Q1+a.Q2),
		Y: g.L1*math.Sin(a.Q1) + g.L2*math.Sin(a.Q1+a.Q2),
	}
}

// Inverse solves the elbow with the law of cosines and then the shoulder.
// It does not check joint limits; see Solve.
func Inverse(g Geometry, p Point) (Angles, error) {
	if !g.Reachable(p) {
		return Angles{}, fmt.Errorf("%w: (%.3f, %.3f)", ErrOutOfReach, p.X, p.Y)
	}

	c := (p.X*p.X + p.Y*p.Y - g.L1*g.L1 - g.L2*g.L2) / (2 * g.L1 * g.L2)
	q2 := math.Acos(clamp(c, -1, 1))
	q1 := math.Atan2(p.Y, p.X) - math.Atan2(g.L2*math.Sin(q2), g.L1+g.L2*math.Cos(q2))

	return Angles{Q1: q1, Q2: q2}, nil
}

// Solve runs Inverse and validates the result against lim. The shoulder
// angle is normalized into its window first, since atan2 differences can
// land a full turn away from an otherwise valid pose.
func Solve(g Geometry, lim JointLimits, p Point) (Angles, error) {
	a, err := Inverse(g, p)
	if err != nil {
		return Angles{}, err
	}
	if q1, ok := Normalize(a.Q1, lim.Shoulder); ok {
		a.Q1 = q1
	}
	if err := lim.Check(a); err != nil {
		return Angles{}, err
	}
	return a, nil
}

func Deg(rad float64) float64 { return rad * 180 / math.Pi }
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
