package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "homeplan",
	Short:   "Home-care visit scheduling pipeline",
	Long:    `homeplan solves home-care visit scheduling problems: assigning carer visits to carers subject to skills, time windows, breaks and two-carer synchronisation, across a team-formation / individual-solve / refinement pipeline.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("homeplan version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides Default(), overridden by flags)")
	rootCmd.PersistentFlags().String("problem", "", "problem file path (--problem)")
	rootCmd.PersistentFlags().String("solution", "", "solution file path (--solution)")
	rootCmd.PersistentFlags().String("maps", "", "routing engine base URL (--maps); empty uses the built-in haversine estimator")
	rootCmd.PersistentFlags().String("output", "", "output file path (--output)")
	rootCmd.PersistentFlags().Duration("visit_time_window", 0, "visit time window slack (--visit_time_window)")
	rootCmd.PersistentFlags().Duration("break_time_window", 0, "break time window slack (--break_time_window)")
	rootCmd.PersistentFlags().Duration("begin_end_shift_time_extension", 0, "shift begin/end extension (--begin_end_shift_time_extension)")
	rootCmd.PersistentFlags().Duration("opt_time_limit", 0, "per-stage optimisation time limit (--opt_time_limit)")
	rootCmd.PersistentFlags().Duration("no_progress_time_limit", 0, "stalled-search time limit (--no_progress_time_limit)")
	rootCmd.PersistentFlags().String("console_format", "", "console output format: json|txt|log (--console_format)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(solveSingleStepCmd)
	rootCmd.AddCommand(solveThreeStepCmd)
	rootCmd.AddCommand(solveBenchmarkCmd)
	rootCmd.AddCommand(mipCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(routingServerCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// loadConfig overlays a command's persistent flags on top of the optional
// --config YAML file, which itself overlays config.Default(). Flags always
// win: a flag left at its zero value is treated as "not set" and the
// config-file/default value underneath shows through.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := flags.GetString("problem"); v != "" {
		cfg.ProblemPath = v
	}
	if v, _ := flags.GetString("solution"); v != "" {
		cfg.SolutionPath = v
	}
	if v, _ := flags.GetString("maps"); v != "" {
		cfg.MapsPath = v
	}
	if v, _ := flags.GetString("output"); v != "" {
		cfg.OutputPath = v
	}
	if v, _ := flags.GetDuration("visit_time_window"); v != 0 {
		cfg.VisitTimeWindow = v
	}
	if v, _ := flags.GetDuration("break_time_window"); v != 0 {
		cfg.BreakTimeWindow = v
	}
	if v, _ := flags.GetDuration("begin_end_shift_time_extension"); v != 0 {
		cfg.BeginEndShiftTimeExtension = v
	}
	if v, _ := flags.GetDuration("opt_time_limit"); v != 0 {
		cfg.OptTimeLimit = v
	}
	if v, _ := flags.GetDuration("no_progress_time_limit"); v != 0 {
		cfg.NoProgressTimeLimit = v
	}
	if v, _ := flags.GetString("console_format"); v != "" {
		cfg.ConsoleFormat = config.ConsoleFormat(v)
	}
	// log-level has a non-empty default, so only an explicit flag counts.
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		cfg.LogLevel = log.Level(v)
	}
	if v, _ := flags.GetBool("log-json"); v {
		cfg.LogJSON = v
	}

	return cfg, nil
}
