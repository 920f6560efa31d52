package orchestrator

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/delay"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/solver"
	"github.com/homeplan/scheduler/pkg/warmstart"
)

// SolverConfig bundles the parameters every specialised solver shares: a
// wall-clock budget, the stalled-search timeout, and an optional shared
// cancellation token — the "base configuration" §4.4 describes before each
// variant layers its own problem-specific composition on top.
type SolverConfig struct {
	TimeLimit    time.Duration
	StalledLimit time.Duration
	Cancel       *cpengine.CancelToken
}

func (cfg SolverConfig) withDefaults() SolverConfig {
	if cfg.StalledLimit <= 0 {
		cfg.StalledLimit = 90 * time.Second
	}
	return cfg
}

// baseParams builds the monitor/limit set every variant registers: a
// stalled-search limit, an optional cancel limit, a min-dropped-visit
// collector, a ProgressMonitor that logs and counts every improving
// solution against model (pkg/solver, ported from the original engine's
// ProgressPrinterMonitor), and a SolutionLogMonitor that both observes and
// can abort the search once it plateaus (spec.md §4.7's give-up
// heuristic) — plus whatever extra monitors the variant needs (a
// warm-start repository).
func baseParams(cfg SolverConfig, model *cpengine.Model, stage string, extra ...cpengine.SearchMonitor) (cpengine.SearchParams, *cpengine.MinDroppedVisitsSolutionCollector) {
	cfg = cfg.withDefaults()
	stalled := cpengine.NewStalledSearchLimit(cfg.StalledLimit)
	collector := cpengine.NewMinDroppedVisitsSolutionCollector()
	progress := solver.NewProgressMonitor(model, stage)
	plateau := cpengine.NewSolutionLogMonitor()

	limits := []cpengine.SearchLimit{stalled, plateau}
	monitors := []cpengine.SearchMonitor{stalled, collector, progress, plateau}
	if cfg.Cancel != nil {
		limits = append(limits, cpengine.CancelSearchLimit{Token: cfg.Cancel})
	}
	monitors = append(monitors, extra...)

	return cpengine.SearchParams{TimeLimit: cfg.TimeLimit, Limits: limits, Monitors: monitors}, collector
}

// SingleStepSolver is the base composition: used standalone, or as the
// first-stage solve inside the orchestrator's team formation step.
func SingleStepSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig) (cpengine.Result, error) {
	model.CostOverride = nil
	params, _ := baseParams(cfg, model, "single-step")
	return cpengine.SolveFrom(ctx, model, seed, params)
}

// SecondStepSolver is the base composition plus a warmstart.Repository
// registered as a monitor, so every improving solution the search visits is
// captured by (dropped visits, cost) as spec.md §4.7 describes.
func SecondStepSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig, repo *warmstart.Repository) (cpengine.Result, error) {
	model.CostOverride = nil
	params, _ := baseParams(cfg, model, "stage2", repo)
	return cpengine.SolveFrom(ctx, model, seed, params)
}

// ThirdStepSolver minimises travel cost alone: the default refinement
// variant.
func ThirdStepSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig) (cpengine.Result, error) {
	model.CostOverride = nil
	params, _ := baseParams(cfg, model, "stage3")
	return cpengine.SolveFrom(ctx, model, seed, params)
}

// ThirdStepReductionSolver assigns each vehicle a fixed usage cost equal to
// that vehicle's diary duration in seconds, so the objective favours
// reducing the number of carers used over minimising raw travel time.
func ThirdStepReductionSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig) (cpengine.Result, error) {
	model.CostOverride = vehicleReductionCost(model)
	params, _ := baseParams(cfg, model, "stage3-reduction")
	return cpengine.SolveFrom(ctx, model, seed, params)
}

func vehicleReductionCost(model *cpengine.Model) func(context.Context, *cpengine.Assignment) (int64, error) {
	return func(ctx context.Context, a *cpengine.Assignment) (int64, error) {
		base, err := cpengine.DefaultCost(ctx, a)
		if err != nil {
			return 0, err
		}
		for v, route := range a.Routes {
			if len(route) == 0 {
				continue
			}
			base += int64(model.Data.TotalWorkingHours(v).Seconds())
		}
		return base, nil
	}
}

// ThirdStepDelayReductionSolver overrides the cost variable with the
// riskiness index a delay.Tracker computes over sampled duration scenarios
// (spec.md §4.6), so local search favours routes less likely to run late
// over routes that are merely short.
func ThirdStepDelayReductionSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig, history *delay.History, scenarios int, rng *rand.Rand) (cpengine.Result, error) {
	tracker := delay.NewTracker(model, history, scenarios, rng)
	riskiness := delay.NewDelayRiskinessConstraint(tracker)
	model.CostOverride = func(ctx context.Context, a *cpengine.Assignment) (int64, error) {
		return riskiness.Riskiness(ctx, a)
	}
	params, _ := baseParams(cfg, model, "stage3-delay-reduction")
	return cpengine.SolveFrom(ctx, model, seed, params)
}

// EstimateSolver forces each visit's vehicle assignment to match a human
// planner's reference schedule, then runs a bounded local search so the
// engine both validates the human schedule's feasibility and completes
// whatever the reference left unassigned.
func EstimateSolver(ctx context.Context, model *cpengine.Model, human problem.HumanSchedule, cfg SolverConfig) (cpengine.Result, error) {
	model.CostOverride = nil
	routes, err := humanSeedRoutes(model.Data, human)
	if err != nil {
		return cpengine.Result{}, err
	}
	seed, err := cpengine.SeedAssignment(ctx, model, routes)
	if err != nil {
		return cpengine.Result{}, err
	}
	params, _ := baseParams(cfg, model, "estimate")
	return cpengine.SolveFrom(ctx, model, seed, params)
}

// humanSeedRoutes projects a HumanSchedule into per-vehicle node routes:
// every visit's assigned carers become the vehicles its nodes are placed
// on, ordered by preferred start time within each vehicle so the result is
// a plausible Schedule candidate rather than an arbitrary permutation.
func humanSeedRoutes(data *problem.Data, human problem.HumanSchedule) ([][]problem.NodeIndex, error) {
	routes := make([][]problem.NodeIndex, data.Vehicles())
	vehicleOf := make(map[string]int, data.Vehicles())
	for v := 0; v < data.Vehicles(); v++ {
		vehicleOf[data.Carer(v).ID] = v
	}

	for _, visit := range data.Visits() {
		carerIDs := human.FindVisit(visit.ID)
		nodes := data.GetNodes(visit.ID)
		for i, carerID := range carerIDs {
			if i >= len(nodes) {
				break
			}
			v, ok := vehicleOf[carerID]
			if !ok {
				continue
			}
			routes[v] = append(routes[v], nodes[i])
		}
	}

	for v, route := range routes {
		sort.SliceStable(route, func(i, j int) bool {
			vi, _ := data.NodeToVisit(route[i])
			vj, _ := data.NodeToVisit(route[j])
			return vi.PreferredStart.Before(vj.PreferredStart)
		})
		routes[v] = route
	}

	return routes, nil
}

// MetaheuristicSolver is the SecondStep composition with before/after hooks
// for derived solvers: beforeClose runs once the base model is assembled
// but before the search starts (e.g. to register extra constraints),
// afterClose runs once the search budget has been consumed. Either hook may
// be nil.
func MetaheuristicSolver(ctx context.Context, model *cpengine.Model, seed *cpengine.Assignment, cfg SolverConfig, repo *warmstart.Repository, beforeClose, afterClose func(*cpengine.Model)) (cpengine.Result, error) {
	if beforeClose != nil {
		beforeClose(model)
	}
	result, err := SecondStepSolver(ctx, model, seed, cfg, repo)
	if afterClose != nil {
		afterClose(model)
	}
	return result, err
}
