package arm

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/twolink/internal/kinematics"
)

// Values for the reference rig.
const (
	DefaultLinkLength       = 40.0
	DefaultGearRatio        = 30.0
	DefaultPulleyRatio      = 200.0 / 20.0
	DefaultStepsPerRev      = 200
	DefaultMaxSpeed         = 1000.0
	DefaultAcceleration     = 100.0
	DefaultStopAcceleration = 10000.0
	DefaultOriginOffsetDeg  = 5.0
)

var ErrInvalidConfig = errors.New("arm: invalid config")

// limitEpsilon lets degree limits converted to radians sit on ±180°.
const limitEpsilon = 1e-9

// Config is the fixed geometry and mechanics of a rig.
//
// The shoulder window may span at most one turn and the elbow window must
// lie within [0, π], so every reachable pose has exactly one accepted pair
// of joint angles and the Cartesian path can reproduce any angle target.
type Config struct {
	Geometry    kinematics.Geometry
	Limits      kinematics.JointLimits
	GearRatio   float64
	PulleyRatio float64
	StepsPerRev int

	// OriginOffset is the elbow angle, in radians, at which the elbow axis
	// reads step zero. It is subtracted from q2 before the pulley ratio.
	OriginOffset float64

	// DirOne and DirTwo flip an axis when its driver is wired in reverse.
	DirOne, DirTwo int

	MaxSpeed         float64
	Acceleration     float64
	StopAcceleration float64
}

func DefaultConfig() Config {
	return Config{
		Geometry: kinematics.Geometry{L1: DefaultLinkLength, L2: DefaultLinkLength},
		Limits: kinematics.JointLimits{
			Shoulder: kinematics.Limits{Min: -math.Pi, Max: math.Pi},
			Elbow:    kinematics.Limits{Min: 0, Max: math.Pi},
		},
		GearRatio:        DefaultGearRatio,
		PulleyRatio:      DefaultPulleyRatio,
		StepsPerRev:      DefaultStepsPerRev,
		OriginOffset:     kinematics.Rad(DefaultOriginOffsetDeg),
		DirOne:           1,
		DirTwo:           1,
		MaxSpeed:         DefaultMaxSpeed,
		Acceleration:     DefaultAcceleration,
		StopAcceleration: DefaultStopAcceleration,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Geometry.L1 <= 0 || c.Geometry.L2 <= 0:
		return fmt.Errorf("%w: link lengths must be positive, got %g and %g", ErrInvalidConfig, c.Geometry.L1, c.Geometry.L2)
	case c.GearRatio <= 0 || c.PulleyRatio <= 0:
		return fmt.Errorf("%w: gear and pulley ratios must be positive", ErrInvalidConfig)
	case c.StepsPerRev <= 0:
		return fmt.Errorf("%w: steps per revolution must be positive, got %d", ErrInvalidConfig, c.StepsPerRev)
	case c.Limits.Shoulder.Min > c.Limits.Shoulder.Max || c.Limits.Elbow.Min > c.Limits.Elbow.Max:
		return fmt.Errorf("%w: joint limits are inverted", ErrInvalidConfig)
	case c.Limits.Shoulder.Max-c.Limits.Shoulder.Min > 2*math.Pi+limitEpsilon:
		return fmt.Errorf("%w: shoulder window wider than one turn", ErrInvalidConfig)
	case c.Limits.Elbow.Min < -limitEpsilon || c.Limits.Elbow.Max > math.Pi+limitEpsilon:
		return fmt.Errorf("%w: elbow window must lie within [0°, 180°]", ErrInvalidConfig)
	case !unitSign(c.DirOne) || !unitSign(c.DirTwo):
		return fmt.Errorf("%w: axis directions must be 1 or -1", ErrInvalidConfig)
	case c.MaxSpeed <= 0 || c.Acceleration <= 0:
		return fmt.Errorf("%w: speed and acceleration must be positive", ErrInvalidConfig)
	case c.StopAcceleration < c.Acceleration:
		return fmt.Errorf("%w: stop acceleration %g below acceleration %g", ErrInvalidConfig, c.StopAcceleration, c.Acceleration)
	case math.IsNaN(c.OriginOffset) || math.IsInf(c.OriginOffset, 0):
		return fmt.Errorf("%w: origin offset must be finite", ErrInvalidConfig)
	}
	return nil
}

func unitSign(d int) bool { return d == 1 || d == -1 }

// stepsPerRadOne is axis-one steps per radian of shoulder rotation.
func (c Config) stepsPerRadOne() float64 {
	return c.GearRatio * float64(c.StepsPerRev) / (2 * math.Pi)
}

func (c Config) stepsPerRadTwo() float64 {
	return c.PulleyRatio * float64(c.StepsPerRev) / (2 * math.Pi)
}
