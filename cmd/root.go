package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dcsim/dcsim/sim/scenario"
	"github.com/dcsim/dcsim/sim/trace"
)

var (
	// CLI flags shared by run and validate
	scenarioPath string // Path to the YAML scenario
	seed         int64  // Overrides the scenario seed when set
	duration     int64  // Overrides the scenario duration (in ticks) when set
	logLevel     string // Log verbosity level
	metricsOut   string // Prometheus textfile written after the run
	traceLevel   string // Overrides the scenario trace level when set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dcsim",
	Short: "Discrete-event simulator for virtualized data-centre management",
}

// runCmd executes a scenario and prints its report
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a data-centre scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := runScenario(spec, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a data-centre scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("invalid scenario %s: %v", scenarioPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d host groups, %d vm groups)\n", scenarioPath, len(spec.Hosts), len(spec.VMs))
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadScenario reads the scenario file and applies the flags the user set.
func loadScenario(cmd *cobra.Command) (*scenario.Spec, error) {
	if scenarioPath == "" {
		return nil, fmt.Errorf("--scenario is required")
	}
	spec, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cmd, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// applyOverrides copies explicitly set flags over scenario fields.
func applyOverrides(cmd *cobra.Command, spec *scenario.Spec) error {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		logrus.Infof("seed %d overrides scenario seed %d", seed, spec.Seed)
		spec.Seed = seed
	}
	if flags.Changed("duration") {
		if duration <= 0 {
			return fmt.Errorf("--duration must be positive, got %d", duration)
		}
		spec.Duration = duration
	}
	if flags.Changed("trace") {
		if !trace.IsValidTraceLevel(traceLevel) {
			return fmt.Errorf("unknown --trace level %q; valid: none, decisions", traceLevel)
		}
		spec.Trace = traceLevel
	}
	return nil
}

// runScenario builds and runs spec, prints the report to out and writes the
// metrics textfile if requested.
func runScenario(spec *scenario.Spec, out io.Writer) error {
	exp, err := scenario.Build(spec)
	if err != nil {
		return err
	}
	if err := exp.Run(); err != nil {
		return err
	}
	exp.Report().Print(out)
	if metricsOut != "" {
		if err := exp.Collector.WriteToTextfile(metricsOut); err != nil {
			return err
		}
		logrus.Infof("metrics written to %s", metricsOut)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
		c.Flags().Int64Var(&seed, "seed", 0, "Seed overriding the scenario seed")
		c.Flags().Int64Var(&duration, "duration", 0, "Simulated duration in ticks, overriding the scenario")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&traceLevel, "trace", "", "Decision trace level (none, decisions), overriding the scenario")
	}
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus text-format metrics to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
