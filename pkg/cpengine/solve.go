package cpengine

import (
	"context"
	"time"
)

// SearchParams bounds a Solve call: a wall-clock budget, and the search
// limits/monitors that should additionally be consulted.
type SearchParams struct {
	TimeLimit time.Duration
	Limits    []SearchLimit
	Monitors  []SearchMonitor
}

// Result is everything a Solve call reports back: the best assignment
// found, its cost, and the number of local-search iterations performed.
type Result struct {
	Best       *Assignment
	Cost       int64
	Iterations int
}

// Solve runs Construct's sequential-insertion construction followed by
// relocate/2-opt local search, stopping when no improving move is found or
// when the time limit or any configured SearchLimit triggers. Every
// solution visited (construction's result, and each accepted local-search
// move) is reported to every monitor.
func Solve(ctx context.Context, model *Model, params SearchParams) (Result, error) {
	return SolveFrom(ctx, model, nil, params)
}

// SolveFrom behaves like Solve but starts local search from initial instead
// of building a fresh assignment with Construct. A nil initial is
// equivalent to Solve; this is the seam the orchestrator uses to warm-start
// a stage from a previous stage's (or a persisted) route set.
func SolveFrom(ctx context.Context, model *Model, initial *Assignment, params SearchParams) (Result, error) {
	deadline := time.Now().Add(params.TimeLimit)
	if params.TimeLimit <= 0 {
		deadline = time.Now().Add(24 * time.Hour)
	}

	a := initial
	var err error
	if a == nil {
		a, err = Construct(ctx, model)
		if err != nil {
			return Result{}, err
		}
	}
	cost, err := a.Cost(ctx)
	if err != nil {
		return Result{}, err
	}
	notify(params.Monitors, a, cost)

	iterations := 0
	for {
		if time.Now().After(deadline) || limitsTriggered(params.Limits) {
			break
		}

		improved := false
		for _, move := range []localMove{relocateMove, twoOptMove} {
			next, nextCost, ok, err := move(ctx, model, a, cost)
			if err != nil {
				return Result{}, err
			}
			if ok {
				a, cost = next, nextCost
				notify(params.Monitors, a, cost)
				improved = true
				iterations++
				break
			}
		}
		if !improved {
			break
		}
		if time.Now().After(deadline) || limitsTriggered(params.Limits) {
			break
		}
	}

	return Result{Best: a, Cost: cost, Iterations: iterations}, nil
}

type localMove func(ctx context.Context, model *Model, a *Assignment, baseCost int64) (*Assignment, int64, bool, error)

func notify(monitors []SearchMonitor, a *Assignment, cost int64) {
	for _, m := range monitors {
		m.OnSolution(a, cost)
	}
}

func limitsTriggered(limits []SearchLimit) bool {
	for _, l := range limits {
		if l.Check() {
			return true
		}
	}
	return false
}
