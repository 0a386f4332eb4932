package tui

import (
	"strings"

	"github.com/san-kum/twolink/internal/kinematics"
)

type cell struct{ x, y int }

// canvas is a character grid over the arm's workspace. World y points up,
// and one column is half as wide as one row is tall.
type canvas struct {
	w, h  int
	scale float64
	grid  [][]rune
}

func newCanvas(w, h int, reach float64) *canvas {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = make([]rune, w)
	}
	sx := float64(w/2-1) / (2 * reach)
	sy := float64(h/2-1) / reach
	scale := sx
	if sy < sx {
		scale = sy
	}
	c := &canvas{w: w, h: h, scale: scale, grid: grid}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for y := range c.grid {
		for x := range c.grid[y] {
			c.grid[y][x] = ' '
		}
	}
}

func (c *canvas) project(p kinematics.Point) cell {
	return cell{
		x: c.w/2 + int(2*p.X*c.scale+0.5*sign(p.X)),
		y: c.h/2 - int(p.Y*c.scale+0.5*sign(p.Y)),
	}
}

func (c *canvas) set(p cell, r rune) {
	if p.x >= 0 && p.x < c.w && p.y >= 0 && p.y < c.h {
		c.grid[p.y][p.x] = r
	}
}

func (c *canvas) get(p cell) rune {
	if p.x >= 0 && p.x < c.w && p.y >= 0 && p.y < c.h {
		return c.grid[p.y][p.x]
	}
	return 0
}

// line draws with Bresenham's algorithm, endpoints included.
func (c *canvas) line(a, b cell, r rune) {
	dx, dy := abs(b.x-a.x), abs(b.y-a.y)
	sx, sy := 1, 1
	if a.x > b.x {
		sx = -1
	}
	if a.y > b.y {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(a, r)
		if a == b {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			a.x += sx
		}
		if e2 < dx {
			err += dx
			a.y += sy
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for i, row := range c.grid {
		b.WriteString(string(row))
		if i < len(c.grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
