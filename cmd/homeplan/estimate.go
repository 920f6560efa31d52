package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/ioformat"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/orchestrator"
	"github.com/homeplan/scheduler/pkg/problem"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Compare a human planner's schedule (--solution) against the CP solver",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.SolutionPath == "" {
			return fmt.Errorf("estimate: --solution is required (the human planner's reference schedule)")
		}

		carers, visits, engine, err := loadProblem(cfg)
		if err != nil {
			return err
		}

		solFile, err := os.Open(cfg.SolutionPath)
		if err != nil {
			return fmt.Errorf("open solution file: %w", err)
		}
		defer solFile.Close()

		humanSolution, err := ioformat.DecodeSolution(solFile, visits)
		if err != nil {
			return fmt.Errorf("decode human solution: %w", err)
		}
		human, err := problem.NewHumanSchedule(humanSolution)
		if err != nil {
			return fmt.Errorf("build human schedule: %w", err)
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

		result, err := orchestrator.EstimateSolver(ctx, model, human, orchestrator.SolverConfig{
			TimeLimit:    cfg.OptTimeLimit,
			StalledLimit: cfg.NoProgressTimeLimit,
		})
		if err != nil {
			return fmt.Errorf("estimate solve: %w", err)
		}

		cpSolution := result.Best.ToSolution()
		humanDropped := len(humanSolution.Dropped())
		cpDropped := len(cpSolution.Dropped())

		logger := log.WithComponent("estimate")
		logger.Info().
			Int("human_dropped", humanDropped).
			Int("cp_dropped", cpDropped).
			Int64("cp_cost", result.Cost).
			Msg("estimate comparison complete")

		if cfg.ConsoleFormat == config.ConsoleFormatJSON {
			return ioformat.EncodeSolution(os.Stdout, cpSolution)
		}
		fmt.Printf("human plan: %d visits dropped\ncp solver:  %d visits dropped, cost %d\n", humanDropped, cpDropped, result.Cost)
		return writeOutput(cfg, cpSolution)
	},
}
