package arm

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/twolink/internal/axis"
	"github.com/san-kum/twolink/internal/kinematics"
)

var _ = Describe("Controller", func() {
	var (
		ctrl     *Controller
		one, two *axis.Sim
	)

	runTicks := func(n int) {
		for i := 0; i < n; i++ {
			ctrl.Update()
		}
	}

	settle := func() {
		for i := 0; i < 1_000_000 && ctrl.IsMoving(); i++ {
			ctrl.Update()
		}
	}

	BeforeEach(func() {
		one = axis.NewSim("shoulder", time.Millisecond)
		two = axis.NewSim("elbow", time.Millisecond)
		var err error
		ctrl, err = New(DefaultConfig(), one, two)
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.Initialize()).To(Succeed())
	})

	It("is idle after initialization", func() {
		Expect(ctrl.IsMoving()).To(BeFalse())
	})

	Context("with a Cartesian target", func() {
		It("accepts a point inside the annulus", func() {
			Expect(ctrl.SetTarget(56, 0, false)).To(Succeed())
			Expect(ctrl.Angles().Q2).To(BeNumerically("~", 1.5908, 1e-3))
			Expect(ctrl.IsMoving()).To(BeTrue())
		})

		It("rejects a point beyond full extension and keeps prior state", func() {
			Expect(ctrl.SetTarget(56, 0, false)).To(Succeed())
			before, pos := ctrl.Angles(), ctrl.Position()

			err := ctrl.SetTarget(100, 0, false)
			Expect(err).To(MatchError(kinematics.ErrOutOfReach))
			Expect(ctrl.Angles()).To(Equal(before))
			Expect(ctrl.Position()).To(Equal(pos))
		})

		It("accepts the outer boundary", func() {
			Expect(ctrl.SetTarget(0, 80, false)).To(Succeed())
			Expect(ctrl.Angles().Q2).To(BeNumerically("~", 0, 1e-6))
			Expect(ctrl.Angles().Q1).To(BeNumerically("~", math.Pi/2, 1e-6))
		})
	})

	It("becomes idle once both axes arrive", func() {
		Expect(ctrl.SetTarget(45, 90, true)).To(Succeed())
		settle()
		Expect(ctrl.IsMoving()).To(BeFalse())
		Expect(one.DistanceToGo()).To(BeZero())
		Expect(two.DistanceToGo()).To(BeZero())
	})

	DescribeTable("keeps angles and position consistent after a stop",
		func(ticks int) {
			Expect(ctrl.SetTarget(-40, 120, true)).To(Succeed())
			runTicks(ticks)
			ctrl.Stop()

			Expect(ctrl.IsMoving()).To(BeFalse())
			p := kinematics.Forward(ctrl.Config().Geometry, ctrl.Angles())
			Expect(ctrl.Position().Dist(p)).To(BeNumerically("<", 1e-9))

			s1, s2 := ctrl.Steps()
			Expect(ctrl.Angles()).To(Equal(ctrl.AnglesFromSteps(s1, s2)))
			Expect(one.Acceleration()).To(Equal(DefaultAcceleration))
		},
		Entry("before any motion", 0),
		Entry("early in the ramp", 500),
		Entry("mid move", 4000),
		Entry("after arrival", 1_000_000),
	)

	It("moves again after a stop", func() {
		Expect(ctrl.SetTarget(0, 60, false)).To(Succeed())
		runTicks(2000)
		ctrl.Stop()

		Expect(ctrl.SetTarget(0, 60, false)).To(Succeed())
		settle()
		p := ctrl.Position()
		Expect(p.X).To(BeNumerically("~", 0, 1e-9))
		Expect(p.Y).To(BeNumerically("~", 60, 1e-9))
	})

	It("round-trips joint angles through the Cartesian path", func() {
		for _, q := range [][2]float64{{10, 30}, {45, 90}, {120, 150}, {-60, 20}, {179.5, 90}, {-179.5, 150}, {30, 179.5}} {
			Expect(ctrl.SetTarget(q[0], q[1], true)).To(Succeed())
			p := ctrl.Position()
			Expect(ctrl.SetTarget(p.X, p.Y, false)).To(Succeed())
			Expect(kinematics.Deg(ctrl.Angles().Q1)).To(BeNumerically("~", q[0], 1e-6))
			Expect(kinematics.Deg(ctrl.Angles().Q2)).To(BeNumerically("~", q[1], 1e-6))
		}
	})
})
