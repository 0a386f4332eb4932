// Package kinematics provides the planar two-link transforms used by the arm
// controller.
//
//   - [Forward]: joint angles to end-effector position
//   - [Inverse]: end-effector position to joint angles (single elbow branch)
//   - [Solve]: [Inverse] followed by the joint range check
//
// # Elbow branch
//
// [Inverse] always returns the principal acos value for the elbow, so q2 lies
// in [0, π]. The mirrored configuration is never produced; callers that need
// it must build it themselves.
//
// # Example
//
//	g := kinematics.Geometry{L1: 40, L2: 40}
//	a, err := kinematics.Solve(g, limits, kinematics.Point{X: 56, Y: 0})
//	p := kinematics.Forward(g, a)
package kinematics
