// Package path generates Cartesian waypoints for the arm. Waypoints are
// meant to be visited one after another; nothing here blends between them.
package path

import (
	"errors"
	"math"

	"github.com/san-kum/twolink/internal/kinematics"
)

var ErrTooFewPoints = errors.New("path: need at least one point per segment")

// Line returns n evenly spaced points from start toward end. The end point
// itself is not included; coordinates are rounded to 0.1.
func Line(n int, start, end kinematics.Point) []kinematics.Point {
	pts := make([]kinematics.Point, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, kinematics.Point{
			X: round1(start.X + t*(end.X-start.X)),
			Y: round1(start.Y + t*(end.Y-start.Y)),
		})
	}
	return pts
}

// Polyline spreads n points over the segments joining vertices, giving each
// segment a share proportional to its length, and appends the last vertex.
func Polyline(n int, vertices ...kinematics.Point) ([]kinematics.Point, error) {
	segs := len(vertices) - 1
	if segs < 1 || n < segs+1 {
		return nil, ErrTooFewPoints
	}

	lengths := make([]float64, segs)
	total := 0.0
	for i := 0; i < segs; i++ {
		lengths[i] = vertices[i].Dist(vertices[i+1])
		total += lengths[i]
	}

	budget := n - 1
	pts := make([]kinematics.Point, 0, n)
	for i := 0; i < segs; i++ {
		k := budget
		if i < segs-1 {
			k = 1
			if total > 0 {
				k = max(1, int(math.Round(lengths[i]/total*float64(n-1))))
			}
			k = min(k, budget-(segs-1-i))
		}
		pts = append(pts, Line(k, vertices[i], vertices[i+1])...)
		budget -= k
	}
	return append(pts, vertices[segs]), nil
}

// Scan is the survey path of the scanner rig: n points up the left side,
// then out along the diagonal toward (-40, 69), then straight to the top of
// the workspace. Neither segment end is visited, and the split between the
// two segments is rounded half to even.
func Scan(n int) ([]kinematics.Point, error) {
	if n < 1 {
		return nil, ErrTooFewPoints
	}
	var (
		vStart = kinematics.Point{X: -10, Y: -2}
		vEnd   = kinematics.Point{X: -10, Y: 20}
		dEnd   = kinematics.Point{X: -40, Y: 69}
		top    = kinematics.Point{X: 0, Y: 80}
	)

	vLen, dLen := vStart.Dist(vEnd), vEnd.Dist(dEnd)
	vertical := int(math.RoundToEven(vLen/(vLen+dLen)*float64(n-1))) + 1
	diagonal := n - vertical

	pts := Line(vertical, vStart, vEnd)
	pts = pts[:len(pts)-1]
	pts = append(pts, Line(diagonal, vEnd, dEnd)...)
	return append(pts, top), nil
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
