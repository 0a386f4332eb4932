package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/twolink/internal/export"
	"github.com/san-kum/twolink/internal/kinematics"
	"github.com/san-kum/twolink/internal/sim"
	"github.com/san-kum/twolink/internal/storage"
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPRESET\tTIME\tTARGETS\tREACHED\tREJECTED\tELAPSED")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.3fs\n",
			run.ID,
			run.Kind,
			p,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Targets),
			run.Reached,
			len(run.Rejected),
			run.Elapsed,
		)
	}

	return w.Flush()
}

type series struct {
	caption string
	value   func(sim.Sample) float64
}

var plotSeries = []series{
	{"q1 (deg)", func(s sim.Sample) float64 { return kinematics.Deg(s.Q1) }},
	{"q2 (deg)", func(s sim.Sample) float64 { return kinematics.Deg(s.Q2) }},
	{"x", func(s sim.Sample) float64 { return s.X }},
	{"y", func(s sim.Sample) float64 { return s.Y }},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(heading.Render("run: " + meta.ID))
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, s := range plotSeries {
		data := make([]float64, len(samples))
		for i, smp := range samples {
			data[i] = s.value(smp)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

// exportSVG draws the run over the workspace of the current configuration.
func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectorySVG(samples, cfg.Arm().Geometry, 400)
	if outFile == "" {
		fmt.Print(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}
