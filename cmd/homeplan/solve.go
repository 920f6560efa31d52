package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/delay"
	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/ioformat"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/orchestrator"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
)

// loadProblem reads the --problem file and builds the routing engine it
// should be solved against: an HTTPEngine when --maps names a base URL,
// the built-in haversine estimator otherwise.
func loadProblem(cfg config.Config) ([]domain.Carer, []domain.CalendarVisit, routing.RoutingEngine, error) {
	f, err := os.Open(cfg.ProblemPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open problem file: %w", err)
	}
	defer f.Close()

	carers, visits, err := ioformat.DecodeProblem(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode problem file: %w", err)
	}

	var engine routing.RoutingEngine
	if cfg.MapsPath != "" {
		engine = routing.NewHTTPEngine(cfg.MapsPath)
	} else {
		engine = routing.HaversineEngine{}
	}
	return carers, visits, engine, nil
}

// writeOutput writes sol as a solution JSON file to cfg.OutputPath (when
// set) and always prints the console summary spec.md §6's console_format
// flag selects.
func writeOutput(cfg config.Config, sol domain.Solution) error {
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		if err := ioformat.EncodeSolution(f, sol); err != nil {
			return fmt.Errorf("encode solution: %w", err)
		}
	}
	return printConsole(cfg, sol)
}

func printConsole(cfg config.Config, sol domain.Solution) error {
	dropped := len(sol.Dropped())
	switch cfg.ConsoleFormat {
	case config.ConsoleFormatJSON:
		return ioformat.EncodeSolution(os.Stdout, sol)
	case config.ConsoleFormatLog:
		log.WithComponent("cli").Info().Int("visits", len(sol.Visits)).Int("dropped", dropped).Msg("solve complete")
		return nil
	default:
		fmt.Printf("solved %d visits, %d dropped\n", len(sol.Visits), dropped)
		return nil
	}
}

// writeGEXF renders sol as a GEXF graph to cfg.OutputPath when it ends in
// ".gexf", replacing the solution JSON writeOutput wrote there; for any
// other output path it writes nothing.
func writeGEXF(ctx context.Context, cfg config.Config, data *problem.Data, sol domain.Solution) error {
	if !strings.HasSuffix(cfg.OutputPath, ".gexf") {
		return nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("create gexf output: %w", err)
	}
	defer f.Close()

	travelSeconds := func(a, b domain.Location) (int64, error) {
		return data.LocationDistance(ctx, a, b)
	}
	return ioformat.WriteGEXF(f, domain.Location{}, sol, travelSeconds)
}

var solveSingleStepCmd = &cobra.Command{
	Use:   "solve-single-step",
	Short: "Run the base SingleStep solver directly over every carer and visit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		carers, visits, engine, err := loadProblem(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()
		data, err := problem.Build(ctx, carers, visits, engine)
		if err != nil {
			return fmt.Errorf("build problem: %w", err)
		}

		model := cpengine.NewModel(data, cpengine.ModelParams{
			VisitTimeWindow: cfg.VisitTimeWindow,
			BreakTimeWindow: cfg.BreakTimeWindow,
			ShiftAdjustment: cfg.BeginEndShiftTimeExtension,
		})

		result, err := orchestrator.SingleStepSolver(ctx, model, nil, orchestrator.SolverConfig{
			TimeLimit:    cfg.OptTimeLimit,
			StalledLimit: cfg.NoProgressTimeLimit,
		})
		if err != nil {
			return fmt.Errorf("single-step solve: %w", err)
		}

		sol := result.Best.ToSolution()
		if err := writeOutput(cfg, sol); err != nil {
			return err
		}
		return writeGEXF(ctx, cfg, data, sol)
	},
}

var solveThreeStepCmd = &cobra.Command{
	Use:   "solve-three-step",
	Short: "Run the team-formation / individual-solve / refinement pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		carers, visits, engine, err := loadProblem(cfg)
		if err != nil {
			return err
		}

		result, err := orchestrator.Run(context.Background(), cfg, carers, visits, engine, delay.NewHistory())
		if err != nil {
			return fmt.Errorf("three-step solve: %w", err)
		}

		if err := writeOutput(cfg, result.Solution); err != nil {
			return err
		}

		data, err := problem.Build(context.Background(), carers, visits, engine)
		if err != nil {
			return err
		}
		return writeGEXF(context.Background(), cfg, data, result.Solution)
	},
}

var solveBenchmarkCmd = &cobra.Command{
	Use:   "solve-benchmark",
	Short: "Run the three-step pipeline repeatedly and report cost/drop statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		runs, _ := cmd.Flags().GetInt("runs")
		if runs <= 0 {
			runs = 1
		}

		carers, visits, engine, err := loadProblem(cfg)
		if err != nil {
			return err
		}

		logger := log.WithComponent("benchmark")
		var best domain.Solution
		bestCost := int64(-1)
		for i := 0; i < runs; i++ {
			start := time.Now()
			result, err := orchestrator.Run(context.Background(), cfg, carers, visits, engine, delay.NewHistory())
			if err != nil {
				logger.Warn().Err(err).Int("run", i).Msg("benchmark run failed")
				continue
			}
			elapsed := time.Since(start)
			logger.Info().
				Int("run", i).
				Dur("elapsed", elapsed).
				Int64("cost", result.Stage3.Cost).
				Int("dropped", len(result.Solution.Dropped())).
				Msg("benchmark run complete")

			if bestCost < 0 || result.Stage3.Cost < bestCost {
				bestCost = result.Stage3.Cost
				best = result.Solution
			}
		}

		if bestCost < 0 {
			return fmt.Errorf("every benchmark run failed")
		}
		return writeOutput(cfg, best)
	},
}

func init() {
	solveBenchmarkCmd.Flags().Int("runs", 5, "number of repeated solves to benchmark (--runs)")
}
