package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/celltypes/cellbuild/cell"
	"github.com/celltypes/cellbuild/cell/export"
	"github.com/celltypes/cellbuild/cell/mech"
	"github.com/celltypes/cellbuild/cell/swc"
	"github.com/celltypes/cellbuild/cell/trace"
)

var (
	// CLI flags for the build
	logLevel       string  // Log verbosity level
	preset         string  // Built-in parameter set
	paramsPath     string  // YAML parameter file (overrides preset)
	morphologyPath string  // SWC file (overrides the parameter set's morphology)
	instanceName   string  // Cell instance name
	shiftX         float64 // Position offset along x (µm)
	shiftY         float64 // Position offset along y (µm)
	shiftZ         float64 // Position offset along z (µm)
	segmentLength  float64 // Discretization length (µm); 0 keeps the parameter set's value
	outputFormat   string  // yaml, json or hoc
	outputPath     string  // Output file; empty writes to stdout
	traceLevel     string  // Build trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cellbuild",
	Short: "Builds biophysical single-cell models from reconstructed morphologies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// buildCmd instantiates a cell model and writes it out
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a cell model from a morphology and parameter set",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBuild(cmd); err != nil {
			logrus.Fatalf("Build failed: %v", err)
		}
	},
}

func runBuild(cmd *cobra.Command) error {
	if !trace.IsValidTraceLevel(traceLevel) {
		return fmt.Errorf("unknown trace level %q", traceLevel)
	}
	write, ok := export.Formats[outputFormat]
	if !ok {
		return fmt.Errorf("unknown format %q (available: %v)", outputFormat, export.FormatNames())
	}

	if segmentLength < 0 {
		return fmt.Errorf("--segment-length must be positive, got %g", segmentLength)
	}
	params, err := loadParams(preset, paramsPath)
	if err != nil {
		return err
	}
	if segmentLength > 0 {
		params.SegmentLength = segmentLength
	}
	path := params.Morphology
	if morphologyPath != "" {
		path = morphologyPath
	}
	if path == "" {
		return fmt.Errorf("no morphology given; use --morphology")
	}

	morph, err := swc.Load(path)
	if err != nil {
		return err
	}
	counts := morph.CountByType()
	logrus.Infof("Loaded %s: %d samples (%d soma, %d axon, %d basal, %d apical)", path, len(morph.Samples),
		counts[swc.Soma], counts[swc.Axon], counts[swc.BasalDendrite], counts[swc.ApicalDendrite])

	name := instanceName
	if !cmd.Flags().Changed("name") {
		name = params.Template
	}
	bt := trace.NewBuildTrace(trace.TraceLevel(traceLevel))
	c, err := cell.Build(morph, params, cell.Options{
		Name:  name,
		Shift: cell.ShiftOf(shiftX, shiftY, shiftZ),
		Trace: bt,
	})
	if err != nil {
		return err
	}

	sum := c.Summary()
	logrus.Infof("Built %s: %d sections (soma=%d dend=%d axon=%d), %d segments, L=%.1fµm, area=%.1fµm²",
		c, len(c.All), sum.Sections[cell.RegionSoma], sum.Sections[cell.RegionDend], sum.Sections[cell.RegionAxon],
		sum.TotalNseg, sum.TotalLength, sum.TotalArea)
	if bt.Level == trace.TraceLevelSteps {
		ts := trace.Summarize(bt)
		logrus.Infof("Trace: %d insertions, %d assignments (%d overridden), %d sections re-discretized, max nseg %d",
			ts.TotalInserts, ts.TotalAssignments, ts.OverriddenAssigns, ts.ChangedSegments, ts.MaxNseg)
	}

	w := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := write(w, c); err != nil {
		return err
	}
	if outputPath != "" {
		logrus.Infof("Wrote %s model to %s", outputFormat, outputPath)
	}
	return nil
}

// mechanismsCmd lists the mechanism catalogue
var mechanismsCmd = &cobra.Command{
	Use:   "mechanisms",
	Short: "List insertable membrane mechanisms and their parameters",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeMechanisms(cmd.OutOrStdout(), mech.Builtin()); err != nil {
			logrus.Fatalf("Listing mechanisms failed: %v", err)
		}
	},
}

func writeMechanisms(w io.Writer, c *mech.Catalogue) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MECHANISM\tPARAMETER\tDEFAULT\tUNITS\tIONS\tDESCRIPTION")
	for _, name := range c.Names() {
		spec, err := c.Lookup(name)
		if err != nil {
			return err
		}
		for i, p := range spec.Params {
			if i == 0 {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%v\t%s\n", spec.Name, mech.RangeVar(p.Name, spec.Name), p.Default, p.Units, spec.Ions, spec.Desc)
				continue
			}
			fmt.Fprintf(tw, "\t%s\t%g\t%s\t\t\n", mech.RangeVar(p.Name, spec.Name), p.Default, p.Units)
		}
	}
	return tw.Flush()
}

// paramsCmd prints the effective parameter set
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the effective parameter set as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeParams(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Printing parameters failed: %v", err)
		}
	},
}

func writeParams(w io.Writer) error {
	params, err := loadParams(preset, paramsPath)
	if err != nil {
		return err
	}
	if err := params.Validate(nil); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(params); err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	return enc.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "Neuron472421285", "Built-in parameter set")
	rootCmd.PersistentFlags().StringVar(&paramsPath, "params", "", "YAML parameter file (overrides --preset)")

	buildCmd.Flags().StringVar(&morphologyPath, "morphology", "", "SWC morphology file (overrides the parameter set's morphology)")
	buildCmd.Flags().StringVar(&instanceName, "name", "", "Cell instance name (defaults to the template name; empty gives <template>_instance)")
	buildCmd.Flags().Float64Var(&shiftX, "x", 0, "Position offset along x (µm)")
	buildCmd.Flags().Float64Var(&shiftY, "y", 0, "Position offset along y (µm)")
	buildCmd.Flags().Float64Var(&shiftZ, "z", 0, "Position offset along z (µm)")
	buildCmd.Flags().Float64Var(&segmentLength, "segment-length", 0, "Discretization length in µm (0 keeps the parameter set's value)")
	buildCmd.Flags().StringVar(&outputFormat, "format", "yaml", "Output format (yaml, json, hoc)")
	buildCmd.Flags().StringVar(&outputPath, "out", "", "Output file (default stdout)")
	buildCmd.Flags().StringVar(&traceLevel, "trace", "none", "Build trace level (none, steps)")

	// Attach subcommands to `root`
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(mechanismsCmd)
	rootCmd.AddCommand(paramsCmd)
}
