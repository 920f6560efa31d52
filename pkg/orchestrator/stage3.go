package orchestrator

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/delay"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/validator"
)

// Stage3Result is the refinement stage's output: the final route set and
// the errors, if any, the validator raised against it.
type Stage3Result struct {
	Routes     [][]problem.NodeIndex
	Cost       int64
	Skipped    bool
	Violations []validator.Error
}

// ValidationError reports that Stage 3's resulting routes failed
// independent validation.
type ValidationError struct {
	Violations []validator.Error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("orchestrator: stage 3 produced %d route validation error(s)", len(e.Violations))
}

// RunStage3 builds a ThirdStep-variant model seeded with stage-2's routes
// and refines it under one of the four strategies spec.md §4.5 names,
// then validates the result with validator.RouteValidator.ValidateFull —
// returning a *ValidationError (wrapping every violation found) if
// validation reports anything at all.
func RunStage3(ctx context.Context, model *cpengine.Model, stage2Routes [][]problem.NodeIndex, cfg SolverConfig, strategy config.RefinementStrategy, history *delay.History, scenarios int, rng *rand.Rand) (Stage3Result, error) {
	if strategy == config.RefinementNone {
		return Stage3Result{Routes: stage2Routes, Skipped: true}, nil
	}

	seed, err := cpengine.SeedAssignment(ctx, model, stage2Routes)
	if err != nil {
		return Stage3Result{}, err
	}

	var result cpengine.Result
	switch strategy {
	case config.RefinementVehicleReduce:
		result, err = ThirdStepReductionSolver(ctx, model, seed, cfg)
	case config.RefinementDelayReduce:
		result, err = ThirdStepDelayReductionSolver(ctx, model, seed, cfg, history, scenarios, rng)
	default:
		result, err = ThirdStepSolver(ctx, model, seed, cfg)
	}
	if err != nil {
		return Stage3Result{}, err
	}

	sol := result.Best.ToSolution()
	v := validator.New(model.Data)
	violations, err := v.ValidateFull(ctx, sol)
	if err != nil {
		return Stage3Result{}, err
	}
	if len(violations) > 0 {
		return Stage3Result{Routes: result.Best.Routes, Cost: result.Cost, Violations: violations},
			&ValidationError{Violations: violations}
	}

	return Stage3Result{Routes: result.Best.Routes, Cost: result.Cost}, nil
}
