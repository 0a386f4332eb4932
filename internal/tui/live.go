package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/twolink/internal/arm"
	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/sim"
)

const (
	canvasWidth  = 72
	canvasHeight = 24
	trailLen     = 120
	frameRate    = 16 * time.Millisecond
	maxSpeedUp   = 64
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	frame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the live view. Each frame advances the controller by a number of
// control ticks proportional to the wall time of one frame.
type Model struct {
	sim       *sim.Simulator
	tick      time.Duration
	waypoints []sim.Target
	next      int
	speed     int
	paused    bool

	elapsed time.Duration
	trail   []kinematics.Point
	lastErr error
	stopped bool
}

// New builds a view over s. The controller must be initialized; tick is
// the axis tick it was built with.
func New(s *sim.Simulator, tick time.Duration, waypoints []sim.Target) Model {
	return Model{
		sim:       s,
		tick:      tick,
		waypoints: waypoints,
		speed:     1,
		trail:     make([]kinematics.Point, 0, trailLen),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		if !m.paused {
			m.advance(m.ticksPerFrame())
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ctrl := m.sim.Controller()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		ctrl.Stop()
		m.stopped = true
	case "n":
		m.sendNext()
	case "p":
		m.paused = !m.paused
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeedUp)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "c":
		m.trail = m.trail[:0]
	}
	return m, nil
}

// sendNext issues the next waypoint, skipping any the controller rejects.
func (m *Model) sendNext() {
	ctrl := m.sim.Controller()
	for m.next < len(m.waypoints) {
		tgt := m.waypoints[m.next]
		m.next++
		if err := ctrl.SetTarget(tgt.A, tgt.B, tgt.Angles); err != nil {
			m.lastErr = err
			continue
		}
		m.lastErr = nil
		m.stopped = false
		return
	}
}

func (m Model) ticksPerFrame() int {
	if m.tick <= 0 {
		return 1
	}
	n := int(frameRate / m.tick)
	if n < 1 {
		n = 1
	}
	return n * m.speed
}

func (m *Model) advance(n int) {
	ctrl := m.sim.Controller()
	for i := 0; i < n && ctrl.IsMoving(); i++ {
		ctrl.Update()
		m.elapsed += m.tick
	}
	smp := m.sim.Sample(m.elapsed)
	p := kinematics.Point{X: smp.X, Y: smp.Y}
	if k := len(m.trail); k == 0 || m.trail[k-1] != p {
		m.trail = append(m.trail, p)
		if len(m.trail) > trailLen {
			m.trail = m.trail[1:]
		}
	}
}

func (m Model) View() string {
	ctrl := m.sim.Controller()
	cfg := ctrl.Config()
	_, outer := cfg.Geometry.Reach()
	c := newCanvas(canvasWidth, canvasHeight, outer)

	drawWorkspace(c, cfg.Geometry)
	for _, p := range m.trail {
		c.set(c.project(p), '.')
	}
	for _, tgt := range m.waypoints[m.next:] {
		if !tgt.Angles {
			c.set(c.project(kinematics.Point{X: tgt.A, Y: tgt.B}), 'x')
		}
	}
	drawArm(c, cfg, m.sim.Sample(m.elapsed))

	var b strings.Builder
	b.WriteString(cyan.Render("twolink") + dim.Render(fmt.Sprintf("  t=%.2fs  x%d", m.elapsed.Seconds(), m.speed)) + "\n")
	b.WriteString(frame.Render(c.String()) + "\n")
	b.WriteString(m.statusLine(ctrl) + "\n")
	if m.lastErr != nil {
		b.WriteString(red.Render("rejected: "+m.lastErr.Error()) + "\n")
	}
	b.WriteString(dim.Render(fmt.Sprintf("n next (%d/%d)  space stop  p pause  +/- speed  c clear  q quit",
		m.next, len(m.waypoints))))
	return b.String()
}

func (m Model) statusLine(ctrl *arm.Controller) string {
	st := ctrl.Status()
	state := green.Render("idle")
	switch {
	case m.paused:
		state = yellow.Render("paused")
	case st.Moving:
		state = yellow.Render("moving")
	case m.stopped:
		state = red.Render("stopped")
	}
	s1, s2 := ctrl.Steps()
	return fmt.Sprintf("%s  %s %s  %s %s  %s %d/%d",
		state,
		dim.Render("x,y"), white.Render(fmt.Sprintf("%7.2f %7.2f", st.X, st.Y)),
		dim.Render("q1,q2"), white.Render(fmt.Sprintf("%7.2f %7.2f", st.Q1, st.Q2)),
		dim.Render("steps"), s1, s2)
}

// drawWorkspace marks the outer and inner reach circles.
func drawWorkspace(c *canvas, g kinematics.Geometry) {
	inner, outer := g.Reach()
	for i := 0; i < 180; i++ {
		th := 2 * math.Pi * float64(i) / 180
		c.set(c.project(kinematics.Point{X: outer * math.Cos(th), Y: outer * math.Sin(th)}), '·')
		if inner > 0 {
			c.set(c.project(kinematics.Point{X: inner * math.Cos(th), Y: inner * math.Sin(th)}), '·')
		}
	}
}

// drawArm draws the links where the axes actually are, with the elbow at
// the end of the first link.
func drawArm(c *canvas, cfg arm.Config, smp sim.Sample) {
	base := c.project(kinematics.Point{})
	elbow := c.project(kinematics.Point{
		X: cfg.Geometry.L1 * math.Cos(smp.Q1),
		Y: cfg.Geometry.L1 * math.Sin(smp.Q1),
	})
	tip := c.project(kinematics.Point{X: smp.X, Y: smp.Y})

	c.line(base, elbow, '#')
	c.line(elbow, tip, '=')
	c.set(base, '+')
	c.set(elbow, 'o')
	c.set(tip, 'O')
}

func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
