package orchestrator

import (
	"context"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/warmstart"
)

// Stage2Result is the individual solve's output: the best route set the
// solution repository observed over the whole search, keyed by (dropped
// visits, cost) as spec.md §4.7 describes, plus that solution's cost.
type Stage2Result struct {
	Routes [][]problem.NodeIndex
	Cost   int64
}

// RunStage2 builds the full second-stage model over every carer and visit,
// seeds it with stage-1's routes, and solves with a warmstart.Repository
// attached so every improving solution along the way is captured. The
// repository's best route set (not necessarily the search's final state)
// is the stage's output.
func RunStage2(ctx context.Context, model *cpengine.Model, stage1Routes [][]problem.NodeIndex, cfg SolverConfig, repo *warmstart.Repository) (Stage2Result, error) {
	seed, err := cpengine.SeedAssignment(ctx, model, stage1Routes)
	if err != nil {
		return Stage2Result{}, err
	}

	result, err := SecondStepSolver(ctx, model, seed, cfg, repo)
	if err != nil {
		return Stage2Result{}, err
	}

	best, cost, ok := repo.Best()
	if !ok {
		best, cost = result.Best, result.Cost
	}

	return Stage2Result{Routes: best.Routes, Cost: cost}, nil
}
