package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/twolink/internal/arm"
	"github.com/san-kum/twolink/internal/axis"
	"github.com/san-kum/twolink/internal/command"
	"github.com/san-kum/twolink/internal/config"
	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/metrics"
	"github.com/san-kum/twolink/internal/path"
	"github.com/san-kum/twolink/internal/sim"
	"github.com/san-kum/twolink/internal/storage"
	"github.com/san-kum/twolink/internal/tui"
)

// newController builds an initialized controller over two simulated axes
// ticking at the configured rate.
func newController(cfg *config.Config) (*arm.Controller, error) {
	t := cfg.Sim().Tick
	ctrl, err := arm.New(cfg.Arm(), axis.NewSim("shoulder", t), axis.NewSim("elbow", t))
	if err != nil {
		return nil, err
	}
	if err := ctrl.Initialize(); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	ctrl, err := newController(cfg)
	if err != nil {
		return nil, err
	}
	s := sim.New(ctrl)
	for _, m := range metrics.Default(cfg.Arm().Geometry) {
		s.AddMetric(m)
	}
	return s, nil
}

func parseFloats(args []string) ([]float64, error) {
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		vals[i] = v
	}
	return vals, nil
}

func forward(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}

	a := kinematics.Angles{Q1: kinematics.Rad(v[0]), Q2: kinematics.Rad(v[1])}
	if err := cfg.Arm().Limits.Check(a); err != nil {
		fmt.Printf("warning: %v\n", err)
	}
	p := kinematics.Forward(cfg.Arm().Geometry, a)
	fmt.Printf("x: %.4f\n", p.X)
	fmt.Printf("y: %.4f\n", p.Y)
	return nil
}

func inverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}

	ac := cfg.Arm()
	a, err := kinematics.Solve(ac.Geometry, ac.Limits, kinematics.Point{X: v[0], Y: v[1]})
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	s1, s2 := ctrl.StepTargets(a)

	fmt.Printf("q1: %.4f deg (%.6f rad)\n", kinematics.Deg(a.Q1), a.Q1)
	fmt.Printf("q2: %.4f deg (%.6f rad)\n", kinematics.Deg(a.Q2), a.Q2)
	fmt.Printf("steps: %d %d\n", s1, s2)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	targets := []sim.Target{{A: v[0], B: v[1], Angles: angleInput}}
	return execute(cmd, cfg, "move", targets)
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var pts []kinematics.Point
	if line != "" {
		v, err := parseFloats(strings.Split(line, ","))
		if err != nil {
			return err
		}
		if len(v) != 4 {
			return fmt.Errorf("--line wants x1,y1,x2,y2, got %d values", len(v))
		}
		end := kinematics.Point{X: v[2], Y: v[3]}
		pts = append(path.Line(cfg.Run.ScanPoints, kinematics.Point{X: v[0], Y: v[1]}, end), end)
	} else {
		pts, err = path.Scan(cfg.Run.ScanPoints)
		if err != nil {
			return err
		}
	}

	targets := make([]sim.Target, len(pts))
	for i, p := range pts {
		targets[i] = sim.PointTarget(p)
	}
	return execute(cmd, cfg, "path", targets)
}

// execute runs targets to completion and stores the run unless --no-save.
// A timeout still stores what was recorded before it.
func execute(cmd *cobra.Command, cfg *config.Config, kind string, targets []sim.Target) error {
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s with %d targets...\n", kind, len(targets))
	start := time.Now()
	result, runErr := s.Run(ctx, targets, cfg.Sim())
	if result == nil {
		return runErr
	}

	fmt.Printf("completed in %v (virtual %v)\n", time.Since(start).Round(time.Millisecond), result.Elapsed)
	fmt.Printf("reached: %d/%d\n", result.Reached, len(targets))
	for _, r := range result.Rejected {
		fmt.Printf("rejected #%d (%g, %g): %s\n", r.Index, r.Target.A, r.Target.B, r.Reason)
	}
	if result.Stopped {
		fmt.Println("stopped early")
	}
	st := s.Controller().Status()
	fmt.Printf("final: x=%.3f y=%.3f q1=%.3f q2=%.3f\n", st.X, st.Y, st.Q1, st.Q2)
	printMetrics(result.Metrics)

	if !noSave {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(storage.RunMetadata{
			Kind:    kind,
			Preset:  preset,
			Tick:    cfg.Run.Tick,
			Targets: targets,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range []string{"joint_travel", "peak_speed", "settle_time", "duality_error"} {
		if v, ok := m[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, v)
		}
	}
}

func comparePresets(cmd *cobra.Command, args []string) error {
	sims := make([]*sim.Simulator, len(args))
	var simCfg sim.Config
	for i, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if i == 0 {
			simCfg = cfg.Sim()
		}
		s, err := newSimulator(cfg)
		if err != nil {
			return err
		}
		sims[i] = s
	}

	pts, err := path.Scan(points)
	if err != nil {
		return err
	}
	targets := make([]sim.Target, len(pts))
	for i, p := range pts {
		targets[i] = sim.PointTarget(p)
	}

	fmt.Printf("comparing %d presets over %d waypoints...\n\n", len(args), len(targets))
	results, err := sim.RunAll(cmd.Context(), sims, targets, simCfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tREACHED\tREJECTED\tTIME\tTRAVEL\tPEAK SPEED")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3fs\t%.4f\t%.2f\n",
			args[i], r.Reached, len(r.Rejected), r.Elapsed.Seconds(),
			r.Metrics["joint_travel"], r.Metrics["peak_speed"])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	pts, err := path.Scan(cfg.Run.ScanPoints)
	if err != nil {
		return err
	}
	waypoints := make([]sim.Target, len(pts))
	for i, p := range pts {
		waypoints[i] = sim.PointTarget(p)
	}
	return tui.Run(tui.New(s, cfg.Sim().Tick, waypoints))
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, "twolink: ", log.LstdFlags)
	logger.Printf("ready, links %g/%g", cfg.Geometry.L1, cfg.Geometry.L2)
	fmt.Print(command.Usage())

	err = command.NewDispatcher(ctrl).Serve(ctx, os.Stdin, os.Stdout, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
