package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/twolink/internal/arm"
	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/sim"
)

const (
	DefaultTick        = 0.001
	DefaultSampleEvery = 10
	DefaultTimeout     = 120.0
	DefaultScanPoints  = 20
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Limits   LimitsConfig   `yaml:"limits"`
	Drive    DriveConfig    `yaml:"drive"`
	Pins     PinsConfig     `yaml:"pins"`
	Run      RunConfig      `yaml:"run"`
}

type GeometryConfig struct {
	L1 float64 `yaml:"l1"`
	L2 float64 `yaml:"l2"`
}

// LimitsConfig is in degrees.
type LimitsConfig struct {
	ShoulderMin float64 `yaml:"shoulder_min"`
	ShoulderMax float64 `yaml:"shoulder_max"`
	ElbowMin    float64 `yaml:"elbow_min"`
	ElbowMax    float64 `yaml:"elbow_max"`
}

type DriveConfig struct {
	GearRatio   float64 `yaml:"gear_ratio"`
	PulleyRatio float64 `yaml:"pulley_ratio"`
	StepsPerRev int     `yaml:"steps_per_rev"`
	// OriginOffset is in degrees.
	OriginOffset     float64 `yaml:"origin_offset"`
	DirOne           int     `yaml:"dir_one"`
	DirTwo           int     `yaml:"dir_two"`
	MaxSpeed         float64 `yaml:"max_speed"`
	Acceleration     float64 `yaml:"acceleration"`
	StopAcceleration float64 `yaml:"stop_acceleration"`
}

type AxisPins struct {
	Step int `yaml:"step"`
	Dir  int `yaml:"dir"`
}

// PinsConfig is read by cmd/twolink-fw. Enable is active low and
// shared by both drivers.
type PinsConfig struct {
	AxisOne AxisPins `yaml:"axis_one"`
	AxisTwo AxisPins `yaml:"axis_two"`
	Enable  int      `yaml:"enable"`
}

// RunConfig times are in seconds.
type RunConfig struct {
	Tick        float64 `yaml:"tick"`
	SampleEvery int     `yaml:"sample_every"`
	Timeout     float64 `yaml:"timeout"`
	StopAfter   float64 `yaml:"stop_after"`
	ScanPoints  int     `yaml:"scan_points"`
}

func DefaultConfig() *Config {
	return &Config{
		Geometry: GeometryConfig{L1: arm.DefaultLinkLength, L2: arm.DefaultLinkLength},
		Limits:   LimitsConfig{ShoulderMin: -180, ShoulderMax: 180, ElbowMin: 0, ElbowMax: 180},
		Drive: DriveConfig{
			GearRatio:        arm.DefaultGearRatio,
			PulleyRatio:      arm.DefaultPulleyRatio,
			StepsPerRev:      arm.DefaultStepsPerRev,
			OriginOffset:     arm.DefaultOriginOffsetDeg,
			DirOne:           1,
			DirTwo:           1,
			MaxSpeed:         arm.DefaultMaxSpeed,
			Acceleration:     arm.DefaultAcceleration,
			StopAcceleration: arm.DefaultStopAcceleration,
		},
		Pins: PinsConfig{
			AxisOne: AxisPins{Step: 11, Dir: 10},
			AxisTwo: AxisPins{Step: 37, Dir: 36},
			Enable:  40,
		},
		Run: RunConfig{
			Tick:        DefaultTick,
			SampleEvery: DefaultSampleEvery,
			Timeout:     DefaultTimeout,
			ScanPoints:  DefaultScanPoints,
		},
	}
}

// Load reads path over the defaults, so omitted keys keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Arm().Validate(); err != nil {
		return err
	}
	switch {
	case c.Run.Tick <= 0:
		return fmt.Errorf("%w: tick must be positive, got %g", ErrInvalid, c.Run.Tick)
	case c.Run.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %g", ErrInvalid, c.Run.Timeout)
	case c.Run.SampleEvery < 0:
		return fmt.Errorf("%w: sample_every must not be negative", ErrInvalid)
	case c.Run.StopAfter < 0:
		return fmt.Errorf("%w: stop_after must not be negative", ErrInvalid)
	case c.Run.ScanPoints < 0:
		return fmt.Errorf("%w: scan_points must not be negative", ErrInvalid)
	}
	return nil
}

func (c *Config) Arm() arm.Config {
	return arm.Config{
		Geometry: kinematics.Geometry{L1: c.Geometry.L1, L2: c.Geometry.L2},
		Limits: kinematics.JointLimits{
			Shoulder: kinematics.Limits{Min: kinematics.Rad(c.Limits.ShoulderMin), Max: kinematics.Rad(c.Limits.ShoulderMax)},
			Elbow:    kinematics.Limits{Min: kinematics.Rad(c.Limits.ElbowMin), Max: kinematics.Rad(c.Limits.ElbowMax)},
		},
		GearRatio:        c.Drive.GearRatio,
		PulleyRatio:      c.Drive.PulleyRatio,
		StepsPerRev:      c.Drive.StepsPerRev,
		OriginOffset:     kinematics.Rad(c.Drive.OriginOffset),
		DirOne:           c.Drive.DirOne,
		DirTwo:           c.Drive.DirTwo,
		MaxSpeed:         c.Drive.MaxSpeed,
		Acceleration:     c.Drive.Acceleration,
		StopAcceleration: c.Drive.StopAcceleration,
	}
}

func (c *Config) Sim() sim.Config {
	return sim.Config{
		Tick:        seconds(c.Run.Tick),
		SampleEvery: c.Run.SampleEvery,
		Timeout:     seconds(c.Run.Timeout),
		StopAfter:   seconds(c.Run.StopAfter),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
