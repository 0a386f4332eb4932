package arm

import (
	"errors"
	"math"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/twolink/internal/axis"
	"github.com/san-kum/twolink/internal/kinematics"
)

type fakeAxis struct {
	pos, target int64
	accel       float64
	maxSpeed    float64
	enabled     bool
	enableErr   error
	moves       []int64
	runs        int
	stops       int
}

func (f *fakeAxis) MoveTo(t int64) {
	f.target = t
	f.moves = append(f.moves, t)
}

func (f *fakeAxis) Run() bool {
	f.runs++
	switch {
	case f.target > f.pos:
		f.pos++
	case f.target < f.pos:
		f.pos--
	}
	return f.pos != f.target
}

func (f *fakeAxis) DistanceToGo() int64       { return f.target - f.pos }
func (f *fakeAxis) CurrentPosition() int64    { return f.pos }
func (f *fakeAxis) Stop()                     { f.stops++ }
func (f *fakeAxis) SetAcceleration(a float64) { f.accel = a }
func (f *fakeAxis) Acceleration() float64     { return f.accel }
func (f *fakeAxis) SetMaxSpeed(v float64)     { f.maxSpeed = v }

func (f *fakeAxis) Enable() error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.enabled = true
	return nil
}

func newFakeController(t *testing.T) (*Controller, *fakeAxis, *fakeAxis) {
	t.Helper()
	one, two := &fakeAxis{}, &fakeAxis{}
	c, err := New(DefaultConfig(), one, two)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, one, two
}

func newSimController(t *testing.T) (*Controller, *axis.Sim, *axis.Sim) {
	t.Helper()
	one, two := axis.NewSim("one", time.Millisecond), axis.NewSim("two", time.Millisecond)
	c, err := New(DefaultConfig(), one, two)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, one, two
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero link", func(c *Config) { c.Geometry.L1 = 0 }},
		{"negative gear", func(c *Config) { c.GearRatio = -1 }},
		{"zero pulley", func(c *Config) { c.PulleyRatio = 0 }},
		{"zero steps", func(c *Config) { c.StepsPerRev = 0 }},
		{"inverted limits", func(c *Config) { c.Limits.Elbow.Min, c.Limits.Elbow.Max = 1, 0 }},
		{"shoulder over a turn", func(c *Config) {
			c.Limits.Shoulder = kinematics.Limits{Min: kinematics.Rad(-190), Max: kinematics.Rad(190)}
		}},
		{"elbow past straight back", func(c *Config) { c.Limits.Elbow.Max = kinematics.Rad(190) }},
		{"negative elbow", func(c *Config) { c.Limits.Elbow.Min = kinematics.Rad(-10) }},
		{"bad direction", func(c *Config) { c.DirTwo = 2 }},
		{"zero speed", func(c *Config) { c.MaxSpeed = 0 }},
		{"weak stop", func(c *Config) { c.StopAcceleration = 1 }},
		{"nan offset", func(c *Config) { c.OriginOffset = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg, &fakeAxis{}, &fakeAxis{})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := New(DefaultConfig(), &fakeAxis{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing axis, got %v", err)
	}
}

func TestInitialize(t *testing.T) {
	c, one, two := newFakeController(t)

	for i, a := range []*fakeAxis{one, two} {
		if !a.enabled {
			t.Errorf("axis %d not enabled", i+1)
		}
		if a.maxSpeed != DefaultMaxSpeed || a.accel != DefaultAcceleration {
			t.Errorf("axis %d limits: speed=%f accel=%f", i+1, a.maxSpeed, a.accel)
		}
	}
	if c.IsMoving() {
		t.Error("expected idle controller after initialize")
	}
}

func TestInitializeEnableError(t *testing.T) {
	boom := errors.New("driver fault")
	c, err := New(DefaultConfig(), &fakeAxis{}, &fakeAxis{enableErr: boom})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Initialize(); !errors.Is(err, boom) {
		t.Errorf("expected driver fault, got %v", err)
	}
}

func TestInitialStateMatchesAxes(t *testing.T) {
	g := NewWithT(t)
	c, _, _ := newFakeController(t)

	a := c.Angles()
	g.Expect(a.Q1).To(BeZero())
	g.Expect(a.Q2).To(BeNumerically("~", kinematics.Rad(DefaultOriginOffsetDeg), 1e-12))

	p := kinematics.Forward(c.Config().Geometry, a)
	g.Expect(c.Position()).To(Equal(p))
}

func TestSetTargetAngles(t *testing.T) {
	g := NewWithT(t)
	c, one, two := newFakeController(t)

	g.Expect(c.SetTarget(90, 90, true)).To(Succeed())

	a := c.Angles()
	g.Expect(a.Q1).To(BeNumerically("~", math.Pi/2, 1e-12))
	g.Expect(a.Q2).To(BeNumerically("~", math.Pi/2, 1e-12))

	p := c.Position()
	g.Expect(p.X).To(BeNumerically("~", -40, 1e-9))
	g.Expect(p.Y).To(BeNumerically("~", 40, 1e-9))

	// 30 · 200 / 4 and 10 · 200 · 85/360
	g.Expect(one.target).To(Equal(int64(1500)))
	g.Expect(two.target).To(Equal(int64(472)))
	g.Expect(c.IsMoving()).To(BeTrue())
}

func TestSetTargetCartesian(t *testing.T) {
	g := NewWithT(t)
	c, one, two := newFakeController(t)

	g.Expect(c.SetTarget(56, 0, false)).To(Succeed())

	a := c.Angles()
	g.Expect(a.Q2).To(BeNumerically("~", math.Acos(-0.02), 1e-9))
	g.Expect(a.Q1).To(BeNumerically("~", -math.Acos(-0.02)/2, 1e-9))

	p := c.Position()
	g.Expect(p.X).To(BeNumerically("~", 56, 1e-9))
	g.Expect(p.Y).To(BeNumerically("~", 0, 1e-9))

	s1, s2 := c.StepTargets(a)
	g.Expect(one.target).To(Equal(s1))
	g.Expect(two.target).To(Equal(s2))
}

func TestRejectionLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		a, b    float64
		angles  bool
		wantErr error
	}{
		{"beyond reach", 100, 0, false, kinematics.ErrOutOfReach},
		{"origin", 0, 0, false, kinematics.ErrOutOfReach},
		{"shoulder too far", 200, 0, true, kinematics.ErrOutOfRange},
		{"negative elbow", 0, -5, true, kinematics.ErrOutOfRange},
		{"elbow past limit", 10, 181, true, kinematics.ErrOutOfRange},
		{"shoulder past seam", 185, 90, true, kinematics.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, one, two := newFakeController(t)
			if err := c.SetTarget(30, 60, true); err != nil {
				t.Fatalf("seed target: %v", err)
			}
			wantAngles, wantPos := c.Angles(), c.Position()
			moves1, moves2 := len(one.moves), len(two.moves)

			err := c.SetTarget(tt.a, tt.b, tt.angles)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if c.Angles() != wantAngles {
				t.Errorf("angles changed: %+v -> %+v", wantAngles, c.Angles())
			}
			if c.Position() != wantPos {
				t.Errorf("position changed: %+v -> %+v", wantPos, c.Position())
			}
			if len(one.moves) != moves1 || len(two.moves) != moves2 {
				t.Error("rejected target was dispatched to an axis")
			}
			if _, rejected := c.Counts(); rejected != 1 {
				t.Errorf("expected 1 rejection, got %d", rejected)
			}
		})
	}
}

func TestUpdateRunsOnlyAxesWithDistance(t *testing.T) {
	c, one, two := newFakeController(t)
	one.MoveTo(3)
	two.MoveTo(0)

	for i := 0; i < 5; i++ {
		c.Update()
	}
	if one.runs != 3 {
		t.Errorf("expected 3 runs on axis one, got %d", one.runs)
	}
	if two.runs != 0 {
		t.Errorf("expected no runs on idle axis two, got %d", two.runs)
	}
	if c.IsMoving() {
		t.Error("expected idle after reaching target")
	}
}

func TestMoveCompletes(t *testing.T) {
	g := NewWithT(t)
	c, one, two := newSimController(t)

	g.Expect(c.SetTarget(0, 56, false)).To(Succeed())
	s1, s2 := c.StepTargets(c.Angles())

	for i := 0; i < 200000 && c.IsMoving(); i++ {
		c.Update()
	}

	g.Expect(c.IsMoving()).To(BeFalse())
	g.Expect(one.CurrentPosition()).To(Equal(s1))
	g.Expect(two.CurrentPosition()).To(Equal(s2))
}

func TestStopReconcilesState(t *testing.T) {
	g := NewWithT(t)
	c, one, two := newSimController(t)

	g.Expect(c.SetTarget(0, 56, false)).To(Succeed())
	target := c.Position()
	for i := 0; i < 3000; i++ {
		c.Update()
	}
	g.Expect(c.IsMoving()).To(BeTrue())

	c.Stop()

	g.Expect(c.IsMoving()).To(BeFalse())
	g.Expect(one.Acceleration()).To(Equal(DefaultAcceleration))
	g.Expect(two.Acceleration()).To(Equal(DefaultAcceleration))

	want := c.AnglesFromSteps(c.Steps())
	g.Expect(c.Angles()).To(Equal(want))

	p := kinematics.Forward(c.Config().Geometry, c.Angles())
	g.Expect(c.Position().Dist(p)).To(BeNumerically("<", 1e-9))
	g.Expect(c.Position().Dist(target)).To(BeNumerically(">", 1))
}

func TestStopRaisesDeceleration(t *testing.T) {
	c, one, two := newFakeController(t)
	if err := c.SetTarget(45, 45, true); err != nil {
		t.Fatalf("set target: %v", err)
	}
	c.Update()

	var seen []float64
	rec := &accelRecorder{fakeAxis: one, seen: &seen}
	c.axisOne = rec
	c.Stop()

	if len(seen) == 0 || seen[0] != DefaultStopAcceleration {
		t.Errorf("expected stop acceleration first, got %v", seen)
	}
	if one.accel != DefaultAcceleration {
		t.Errorf("acceleration not restored: %f", one.accel)
	}
	if one.stops != 1 || two.stops != 1 {
		t.Errorf("expected one stop per axis, got %d and %d", one.stops, two.stops)
	}
	if one.target != one.pos || two.target != two.pos {
		t.Error("axes not retargeted to their current position")
	}
}

type accelRecorder struct {
	*fakeAxis
	seen *[]float64
}

func (p *accelRecorder) SetAcceleration(a float64) {
	*p.seen = append(*p.seen, a)
	p.fakeAxis.SetAcceleration(a)
}

func TestRetargetWhileMoving(t *testing.T) {
	g := NewWithT(t)
	c, one, two := newSimController(t)

	g.Expect(c.SetTarget(90, 90, true)).To(Succeed())
	for i := 0; i < 1000; i++ {
		c.Update()
	}
	g.Expect(c.SetTarget(10, 20, true)).To(Succeed())
	s1, s2 := c.StepTargets(c.Angles())

	g.Expect(one.CurrentPosition() + one.DistanceToGo()).To(Equal(s1))
	g.Expect(two.CurrentPosition() + two.DistanceToGo()).To(Equal(s2))

	for i := 0; i < 500000 && c.IsMoving(); i++ {
		c.Update()
	}
	p1, p2 := c.Steps()
	g.Expect(p1).To(Equal(s1))
	g.Expect(p2).To(Equal(s2))
}

func TestStepRoundTrip(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()
	cfg.DirOne, cfg.DirTwo = -1, -1
	c, err := New(cfg, &fakeAxis{}, &fakeAxis{})
	g.Expect(err).NotTo(HaveOccurred())

	a := kinematics.Angles{Q1: 1.1, Q2: 0.4}
	s1, s2 := c.StepTargets(a)
	g.Expect(s1).To(BeNumerically("<", 0))

	back := c.AnglesFromSteps(s1, s2)
	// one step of quantization on each joint
	g.Expect(back.Q1).To(BeNumerically("~", a.Q1, 2*math.Pi/(30*200)))
	g.Expect(back.Q2).To(BeNumerically("~", a.Q2, 2*math.Pi/(10*200)))
}

func TestStatus(t *testing.T) {
	g := NewWithT(t)
	c, _, _ := newFakeController(t)
	g.Expect(c.SetTarget(90, 0, true)).To(Succeed())

	st := c.Status()
	g.Expect(st.Q1).To(BeNumerically("~", 90, 1e-9))
	g.Expect(st.Q2).To(BeNumerically("~", 0, 1e-9))
	g.Expect(st.X).To(BeNumerically("~", 0, 1e-9))
	g.Expect(st.Y).To(BeNumerically("~", 80, 1e-9))
	g.Expect(st.Moving).To(BeTrue())
}

// seamPoses covers the shoulder near ±180° and the elbow near straight
// back, where a window wider than one turn would admit a second solution.
var seamPoses = [][2]float64{
	{0, 45}, {90, 90}, {-90, 120},
	{175, 30}, {178, 90}, {179.5, 150}, {179.9, 10},
	{-175, 30}, {-178, 90}, {-179.5, 150}, {-179.9, 10},
	{30, 179.5}, {-150, 179.5}, {179, 179},
	{45, 0.5}, {-179, 0.5},
}

func TestDefaultLimitsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()

	for _, q := range seamPoses {
		want := kinematics.Angles{Q1: kinematics.Rad(q[0]), Q2: kinematics.Rad(q[1])}
		if err := cfg.Limits.Check(want); err != nil {
			t.Fatalf("pose %v outside default limits: %v", q, err)
		}
		got, err := kinematics.Solve(cfg.Geometry, cfg.Limits, kinematics.Forward(cfg.Geometry, want))
		if err != nil {
			t.Errorf("pose %v: %v", q, err)
			continue
		}
		if math.Abs(got.Q1-want.Q1) > 1e-6 || math.Abs(got.Q2-want.Q2) > 1e-6 {
			t.Errorf("pose %v: round trip gave %.4f°, %.4f°", q, kinematics.Deg(got.Q1), kinematics.Deg(got.Q2))
		}
	}
}

func TestCartesianRetargetToSamePoseHoldsSteps(t *testing.T) {
	for _, q := range seamPoses {
		c, one, two := newFakeController(t)
		if err := c.SetTarget(q[0], q[1], true); err != nil {
			t.Fatalf("pose %v: %v", q, err)
		}
		s1, s2 := one.target, two.target

		p := c.Position()
		if err := c.SetTarget(p.X, p.Y, false); err != nil {
			t.Fatalf("pose %v cartesian: %v", q, err)
		}
		if one.target != s1 || two.target != s2 {
			t.Errorf("pose %v: same point retargeted axes %d,%d -> %d,%d", q, s1, s2, one.target, two.target)
		}
	}
}

func TestDefaultLimitsRejectSecondTurn(t *testing.T) {
	c, _, _ := newFakeController(t)
	for _, q := range [][2]float64{{185, 90}, {-181, 90}, {10, 185}, {190, 190}} {
		if err := c.SetTarget(q[0], q[1], true); !errors.Is(err, kinematics.ErrOutOfRange) {
			t.Errorf("pose %v: expected ErrOutOfRange, got %v", q, err)
		}
	}
}

func TestStopRestoresEachAxisAcceleration(t *testing.T) {
	c, one, two := newFakeController(t)
	one.accel, two.accel = 150, 75

	c.Stop()

	if one.accel != 150 || two.accel != 75 {
		t.Errorf("expected 150 and 75 restored, got %g and %g", one.accel, two.accel)
	}
}
