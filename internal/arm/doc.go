// Package arm implements the two-link arm controller.
//
// A [Controller] accepts targets either as joint angles in degrees or as
// Cartesian coordinates, validates them against the reachable annulus and
// the joint limits, and translates the accepted joint angles into step
// targets for two [axis.Axis] handles. The owning loop calls
// [Controller.Update] at a fixed cadence to advance both axes.
//
// A rejected target never mutates state: the joint angles and the cached
// position stay exactly as they were before the call.
//
// # Thread Safety
//
// Controller is NOT safe for concurrent use. Hosts that call it from more
// than one goroutine must serialize every public call.
package arm
