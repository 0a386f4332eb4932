package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/twolink/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string

	// Flags that override the loaded config when set.
	tick        float64
	timeout     float64
	stopAfter   float64
	sampleEvery int
	maxSpeed    float64
	accel       float64

	angleInput bool
	points     int
	line       string
	noSave     bool
	outFile    string
)

// main registers the commands and runs the root command, exiting with
// status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "twolink",
		Short:        "two-link planar arm controller",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".twolink", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	fkCmd := &cobra.Command{
		Use:   "fk [q1] [q2]",
		Short: "end effector position for joint angles in degrees",
		Args:  cobra.ExactArgs(2),
		RunE:  forward,
	}

	ikCmd := &cobra.Command{
		Use:   "ik [x] [y]",
		Short: "joint angles and step targets for a point",
		Args:  cobra.ExactArgs(2),
		RunE:  inverse,
	}

	moveCmd := &cobra.Command{
		Use:   "move [a] [b]",
		Short: "drive the simulated arm to a point, or to angles with --angles",
		Args:  cobra.ExactArgs(2),
		RunE:  runMove,
	}
	moveCmd.Flags().BoolVar(&angleInput, "angles", false, "treat a and b as joint angles in degrees")
	addRunFlags(moveCmd)

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "run the scan path, or a straight line with --line",
		Args:  cobra.NoArgs,
		RunE:  runPath,
	}
	pathCmd.Flags().IntVar(&points, "points", config.DefaultScanPoints, "number of waypoints")
	pathCmd.Flags().StringVar(&line, "line", "", "straight line as x1,y1,x2,y2")
	addRunFlags(pathCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "run the scan path on several presets at once",
		Args:  cobra.MinimumNArgs(2),
		RunE:  comparePresets,
	}
	compareCmd.Flags().IntVar(&points, "points", config.DefaultScanPoints, "number of waypoints")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot joint angles and position over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the end effector path of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step through the scan path in a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&points, "points", config.DefaultScanPoints, "number of waypoints")

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "read line commands from stdin",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "config file helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the current configuration to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(fkCmd, ikCmd, moveCmd, pathCmd, compareCmd, listCmd, plotCmd,
		exportJSONCmd, exportSVGCmd, liveCmd, consoleCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tick, "tick", config.DefaultTick, "control tick in seconds")
	cmd.Flags().Float64Var(&timeout, "timeout", config.DefaultTimeout, "per-target timeout in seconds")
	cmd.Flags().Float64Var(&stopAfter, "stop-after", 0, "emergency stop after this many seconds")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record one sample every n ticks")
	cmd.Flags().Float64Var(&maxSpeed, "max-speed", 0, "axis max speed in steps/s")
	cmd.Flags().Float64Var(&accel, "accel", 0, "axis acceleration in steps/s^2")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
}

// loadConfig starts from the defaults, applies --preset, then --config,
// then any run flag that was set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("tick") {
		cfg.Run.Tick = tick
	}
	if flags.Changed("timeout") {
		cfg.Run.Timeout = timeout
	}
	if flags.Changed("stop-after") {
		cfg.Run.StopAfter = stopAfter
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleEvery
	}
	if flags.Changed("max-speed") {
		cfg.Drive.MaxSpeed = maxSpeed
	}
	if flags.Changed("accel") {
		cfg.Drive.Acceleration = accel
	}
	if flags.Changed("points") {
		cfg.Run.ScanPoints = points
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "twolink.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
