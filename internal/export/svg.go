// Package export renders stored runs to other formats.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/sim"
)

// TrajectorySVG draws the end-effector path of samples over the workspace
// of g. size is the side of the square image in pixels. The final arm pose
// is drawn on top.
func TrajectorySVG(samples []sim.Sample, g kinematics.Geometry, size float64) string {
	inner, outer := g.Reach()
	half := size / 2
	scale := (half - 10) / outer
	px := func(p kinematics.Point) (float64, float64) {
		return half + p.X*scale, half - p.Y*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#333344"/>
`, half, half, outer*scale))
	if inner > 0 {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#333344"/>
`, half, half, inner*scale))
	}

	if len(samples) > 0 {
		sb.WriteString(`<polyline fill="none" stroke="#00ff88" stroke-width="1" points="`)
		for i, s := range samples {
			x, y := px(kinematics.Point{X: s.X, Y: s.Y})
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.2f,%.2f", x, y))
		}
		sb.WriteString("\"/>\n")

		last := samples[len(samples)-1]
		elbow := kinematics.Point{X: g.L1 * math.Cos(last.Q1), Y: g.L1 * math.Sin(last.Q1)}
		bx, by := px(kinematics.Point{})
		ex, ey := px(elbow)
		tx, ty := px(kinematics.Point{X: last.X, Y: last.Y})
		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="#00ccff" stroke-width="3" points="%.2f,%.2f %.2f,%.2f %.2f,%.2f"/>
`, bx, by, ex, ey, tx, ty))
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="3" fill="#ff00ff"/>
`, tx, ty))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
