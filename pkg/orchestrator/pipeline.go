package orchestrator

import (
	"context"
	"math/rand"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/delay"
	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/metrics"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
	"github.com/homeplan/scheduler/pkg/warmstart"
)

// PipelineResult is the top-level Run's output: the final solution plus
// the teams formed and the cost each stage reported, kept for diagnostics
// and GEXF export.
type PipelineResult struct {
	Solution   domain.Solution
	Teams      []Team
	Stage2Cost int64
	Stage3     Stage3Result
}

// Run drives the full three-stage pipeline spec.md §4.5 describes: team
// formation and a team-level solve, a full individual solve seeded from the
// team routes, and a refinement pass under cfg's configured strategies.
func Run(ctx context.Context, cfg config.Config, carers []domain.Carer, visits []domain.CalendarVisit, engine routing.RoutingEngine, history *delay.History) (PipelineResult, error) {
	stageTimer := metrics.NewTimer()
	data, err := problem.Build(ctx, carers, visits, engine)
	if err != nil {
		return PipelineResult{}, err
	}
	metrics.ProblemCarersTotal.Set(float64(data.Vehicles()))
	metrics.ProblemVisitsTotal.Set(float64(len(data.Visits())))

	modelParams := cpengine.ModelParams{
		VisitTimeWindow: cfg.VisitTimeWindow,
		BreakTimeWindow: cfg.BreakTimeWindow,
		ShiftAdjustment: cfg.BeginEndShiftTimeExtension,
	}
	stageCfg := SolverConfig{TimeLimit: cfg.OptTimeLimit, StalledLimit: cfg.NoProgressTimeLimit}

	logger := log.WithComponent("orchestrator")

	// Stage 1: team formation.
	stage1Logger := log.WithStage("stage1")
	stage1Timer := metrics.NewTimer()
	stage1, err := RunStage1(ctx, engine, carers, visits, data, modelParams, stageCfg, cfg.FirstStageStrategy)
	if err != nil {
		return PipelineResult{}, err
	}
	stage1Timer.ObserveDurationVec(metrics.StageDuration, "stage1")
	stage1Logger.Info().Int("teams", len(stage1.Teams)).Msg("team formation complete")

	// Stage 2: individual solve, seeded from stage 1.
	stage2Logger := log.WithStage("stage2")
	stage2Timer := metrics.NewTimer()
	stage2Model := cpengine.NewModel(data, modelParams)
	repo := warmstart.NewRepository()
	stage2, err := RunStage2(ctx, stage2Model, stage1.Routes, stageCfg, repo)
	if err != nil {
		return PipelineResult{}, err
	}
	stage2Timer.ObserveDurationVec(metrics.StageDuration, "stage2")
	metrics.ObjectiveCost.WithLabelValues("stage2").Set(float64(stage2.Cost))
	stage2Logger.Info().Int64("cost", stage2.Cost).Msg("individual solve complete")

	// Stage 3: refinement.
	stage3Logger := log.WithStage("stage3")
	stage3Timer := metrics.NewTimer()
	stage3Model := cpengine.NewModel(data, modelParams)
	rng := rand.New(rand.NewSource(1))
	stage3, err := RunStage3(ctx, stage3Model, stage2.Routes, SolverConfig{TimeLimit: cfg.OptTimeLimit, StalledLimit: cfg.NoProgressTimeLimit}, cfg.RefinementStrategy, history, 50, rng)
	stage3Timer.ObserveDurationVec(metrics.StageDuration, "stage3")
	if err != nil {
		if _, ok := err.(*ValidationError); !ok {
			return PipelineResult{}, err
		}
		stage3Logger.Warn().Err(err).Msg("stage 3 result failed validation")
		metrics.SolveRunsTotal.WithLabelValues("validation_failed").Inc()
		return PipelineResult{Stage3: stage3}, err
	}
	metrics.ObjectiveCost.WithLabelValues("stage3").Set(float64(stage3.Cost))
	metrics.SolveRunsTotal.WithLabelValues("ok").Inc()

	final, err := cpengine.SeedAssignment(ctx, stage3Model, stage3.Routes)
	if err != nil {
		return PipelineResult{}, err
	}
	solution := final.ToSolution()
	metrics.DroppedVisits.WithLabelValues("final").Set(float64(len(solution.Dropped())))

	logger.Info().Dur("total", stageTimer.Duration()).Msg("pipeline complete")

	return PipelineResult{
		Solution:   solution,
		Teams:      stage1.Teams,
		Stage2Cost: stage2.Cost,
		Stage3:     stage3,
	}, nil
}
