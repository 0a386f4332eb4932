package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/twolink/internal/arm"
	"github.com/san-kum/twolink/internal/kinematics"
)

var ErrTimeout = errors.New("sim: target not reached before timeout")

// Simulator runs the control loop for one controller on a virtual clock.
// The controller must already be initialized and its axes must tick at
// Config.Tick.
type Simulator struct {
	ctrl      *arm.Controller
	metrics   []Metric
	observers []Observer
}

func New(ctrl *arm.Controller) *Simulator {
	return &Simulator{
		ctrl:      ctrl,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Controller() *arm.Controller { return s.ctrl }

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", cfg.Tick)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	if cfg.StopAfter < 0 {
		return fmt.Errorf("stop time must not be negative, got %v", cfg.StopAfter)
	}
	return nil
}

// Run sends each target in turn and ticks until the arm settles. Rejected
// targets are recorded and skipped. A target that does not settle within
// Timeout ends the run with ErrTimeout.
func (s *Simulator) Run(ctx context.Context, targets []Target, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}

	result := &Result{
		Samples:  make([]Sample, 0),
		Rejected: make([]Rejection, 0),
		Metrics:  make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	var ticks int64
	now := func() time.Duration { return time.Duration(ticks) * cfg.Tick }

	s.record(result, now())

	defer func() {
		result.Elapsed = now()
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for i, tgt := range targets {
		if err := s.ctrl.SetTarget(tgt.A, tgt.B, tgt.Angles); err != nil {
			result.Rejected = append(result.Rejected, Rejection{Index: i, Target: tgt, Reason: err.Error()})
			continue
		}

		deadline := now() + cfg.Timeout
		for s.ctrl.IsMoving() {
			select {
			case <-ctx.Done():
				s.record(result, now())
				return result, ctx.Err()
			default:
			}

			if cfg.StopAfter > 0 && now() >= cfg.StopAfter {
				s.ctrl.Stop()
				result.Stopped = true
				s.record(result, now())
				return result, nil
			}
			if now() >= deadline {
				s.record(result, now())
				return result, fmt.Errorf("%w: target %d after %v", ErrTimeout, i, cfg.Timeout)
			}

			s.ctrl.Update()
			ticks++
			if ticks%int64(every) == 0 {
				s.record(result, now())
			}
		}
		result.Reached++
		s.record(result, now())
	}

	return result, nil
}

func (s *Simulator) record(result *Result, t time.Duration) {
	smp := s.Sample(t)
	if n := len(result.Samples); n > 0 && result.Samples[n-1] == smp {
		return
	}
	result.Samples = append(result.Samples, smp)
	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, obs := range s.observers {
		obs.OnSample(smp)
	}
}

// Sample captures the controller and its axes at virtual time t.
func (s *Simulator) Sample(t time.Duration) Sample {
	s1, s2 := s.ctrl.Steps()
	q := s.ctrl.AnglesFromSteps(s1, s2)
	p := kinematics.Forward(s.ctrl.Config().Geometry, q)
	cmd, cmdP := s.ctrl.Angles(), s.ctrl.Position()
	return Sample{
		T:      t.Seconds(),
		Q1:     q.Q1,
		Q2:     q.Q2,
		X:      p.X,
		Y:      p.Y,
		S1:     s1,
		S2:     s2,
		CmdQ1:  cmd.Q1,
		CmdQ2:  cmd.Q2,
		CmdX:   cmdP.X,
		CmdY:   cmdP.Y,
		Moving: s.ctrl.IsMoving(),
	}
}
