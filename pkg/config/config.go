package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homeplan/scheduler/pkg/log"
)

// ConsoleFormat selects how progress and results are rendered to the
// console, per the --console_format flag.
type ConsoleFormat string

const (
	ConsoleFormatText ConsoleFormat = "txt"
	ConsoleFormatJSON ConsoleFormat = "json"
	ConsoleFormatLog  ConsoleFormat = "log"
)

// RefinementStrategy selects the third-stage refinement variant.
type RefinementStrategy string

const (
	RefinementDistance       RefinementStrategy = "DISTANCE"
	RefinementVehicleReduce  RefinementStrategy = "VEHICLE_REDUCTION"
	RefinementDelayReduce    RefinementStrategy = "DELAY_REDUCTION"
	RefinementNone           RefinementStrategy = "NONE"
)

// FirstStageStrategy selects the team-formation strategy.
type FirstStageStrategy string

const (
	FirstStageTeams            FirstStageStrategy = "TEAMS"
	FirstStageSoftTimeWindows  FirstStageStrategy = "SOFT_TIME_WINDOWS"
	FirstStageNone             FirstStageStrategy = "NONE"
)

// Config is the full, immutable set of parameters a solve runs with.
// Fields mirror the CLI flags spec.md §6 names; a Config is built by
// LoadFile, has the command-line flags overlaid on it by the CLI, and is
// then passed by value, so every stage that depends on one setting or
// another can simply be handed the same value.
type Config struct {
	// File paths
	ProblemPath  string
	SolutionPath string
	MapsPath     string
	OutputPath   string

	// Solver tuning
	VisitTimeWindow               time.Duration
	BreakTimeWindow               time.Duration
	BeginEndShiftTimeExtension    time.Duration
	OptTimeLimit                  time.Duration
	NoProgressTimeLimit           time.Duration

	// Pipeline selection
	FirstStageStrategy FirstStageStrategy
	RefinementStrategy RefinementStrategy

	// Presentation
	ConsoleFormat ConsoleFormat
	LogLevel      log.Level
	LogJSON       bool

	// Persistence
	DataDir string
}

// Default returns the Config a bare invocation with no file and no flags
// would run with, matching the original defaults documented in spec.md §6.
func Default() Config {
	return Config{
		VisitTimeWindow:            15 * time.Minute,
		BreakTimeWindow:            15 * time.Minute,
		BeginEndShiftTimeExtension: 0,
		OptTimeLimit:               5 * time.Minute,
		NoProgressTimeLimit:        90 * time.Second,
		FirstStageStrategy:         FirstStageTeams,
		RefinementStrategy:         RefinementDistance,
		ConsoleFormat:              ConsoleFormatText,
		LogLevel:                   log.InfoLevel,
		DataDir:                    ".",
	}
}

// fileDocument is the optional YAML config file's wire shape. Every field
// is a pointer so an absent key in the file leaves the corresponding
// Config field at its Default() value instead of overwriting it with a
// zero value.
type fileDocument struct {
	ProblemPath  *string `yaml:"problem"`
	SolutionPath *string `yaml:"solution"`
	MapsPath     *string `yaml:"maps"`
	OutputPath   *string `yaml:"output"`

	VisitTimeWindow            *string `yaml:"visit_time_window"`
	BreakTimeWindow            *string `yaml:"break_time_window"`
	BeginEndShiftTimeExtension *string `yaml:"begin_end_shift_time_extension"`
	OptTimeLimit               *string `yaml:"opt_time_limit"`
	NoProgressTimeLimit        *string `yaml:"no_progress_time_limit"`

	FirstStageStrategy *string `yaml:"first_stage_strategy"`
	RefinementStrategy *string `yaml:"refinement_strategy"`

	ConsoleFormat *string `yaml:"console_format"`
	LogLevel      *string `yaml:"log_level"`
	LogJSON       *bool   `yaml:"log_json"`
	DataDir       *string `yaml:"data_dir"`
}

// LoadFile reads a YAML config file and overlays it on top of Default().
// A missing file is not an error: callers that only pass flags can call
// this with an empty path and get Default() back.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.applyFile(doc); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyFile(doc fileDocument) error {
	if doc.ProblemPath != nil {
		c.ProblemPath = *doc.ProblemPath
	}
	if doc.SolutionPath != nil {
		c.SolutionPath = *doc.SolutionPath
	}
	if doc.MapsPath != nil {
		c.MapsPath = *doc.MapsPath
	}
	if doc.OutputPath != nil {
		c.OutputPath = *doc.OutputPath
	}
	if doc.DataDir != nil {
		c.DataDir = *doc.DataDir
	}

	var err error
	if c.VisitTimeWindow, err = parseDurationField(doc.VisitTimeWindow, c.VisitTimeWindow); err != nil {
		return fmt.Errorf("visit_time_window: %w", err)
	}
	if c.BreakTimeWindow, err = parseDurationField(doc.BreakTimeWindow, c.BreakTimeWindow); err != nil {
		return fmt.Errorf("break_time_window: %w", err)
	}
	if c.BeginEndShiftTimeExtension, err = parseDurationField(doc.BeginEndShiftTimeExtension, c.BeginEndShiftTimeExtension); err != nil {
		return fmt.Errorf("begin_end_shift_time_extension: %w", err)
	}
	if c.OptTimeLimit, err = parseDurationField(doc.OptTimeLimit, c.OptTimeLimit); err != nil {
		return fmt.Errorf("opt_time_limit: %w", err)
	}
	if c.NoProgressTimeLimit, err = parseDurationField(doc.NoProgressTimeLimit, c.NoProgressTimeLimit); err != nil {
		return fmt.Errorf("no_progress_time_limit: %w", err)
	}

	if doc.FirstStageStrategy != nil {
		c.FirstStageStrategy = FirstStageStrategy(*doc.FirstStageStrategy)
	}
	if doc.RefinementStrategy != nil {
		c.RefinementStrategy = RefinementStrategy(*doc.RefinementStrategy)
	}
	if doc.ConsoleFormat != nil {
		c.ConsoleFormat = ConsoleFormat(*doc.ConsoleFormat)
	}
	if doc.LogLevel != nil {
		c.LogLevel = log.Level(*doc.LogLevel)
	}
	if doc.LogJSON != nil {
		c.LogJSON = *doc.LogJSON
	}
	return nil
}

func parseDurationField(raw *string, fallback time.Duration) (time.Duration, error) {
	if raw == nil {
		return fallback, nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// Validate reports an error for a Config that cannot be used to run a
// solve: a configuration error per spec.md §7, surfaced at startup rather
// than partway through a solve.
func (c Config) Validate() error {
	if c.ProblemPath == "" {
		return fmt.Errorf("config: problem path is required")
	}
	if c.VisitTimeWindow < 0 {
		return fmt.Errorf("config: visit_time_window must not be negative")
	}
	if c.BreakTimeWindow < 0 {
		return fmt.Errorf("config: break_time_window must not be negative")
	}
	if c.OptTimeLimit <= 0 {
		return fmt.Errorf("config: opt_time_limit must be positive")
	}
	switch c.FirstStageStrategy {
	case FirstStageTeams, FirstStageSoftTimeWindows, FirstStageNone:
	default:
		return fmt.Errorf("config: unknown first stage strategy %q", c.FirstStageStrategy)
	}
	switch c.RefinementStrategy {
	case RefinementDistance, RefinementVehicleReduce, RefinementDelayReduce, RefinementNone:
	default:
		return fmt.Errorf("config: unknown refinement strategy %q", c.RefinementStrategy)
	}
	return nil
}
