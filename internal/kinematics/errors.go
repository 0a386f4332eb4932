package kinematics

import "errors"

var (
	// ErrOutOfReach indicates a Cartesian target outside the reachable annulus.
	ErrOutOfReach = errors.New("kinematics: target out of reach")

	// ErrOutOfRange indicates a joint angle outside its mechanical limits.
	ErrOutOfRange = errors.New("kinematics: joint angle out of range")
)
