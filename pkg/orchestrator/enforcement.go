package orchestrator

import (
	"context"
	"math"
	"math/rand"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/problem"
)

// progressFraction is the share of still-relaxed visit pairs the loop
// permanently enforces each iteration.
const progressFraction = 0.2

// EnforcementResult is the incremental enforcement loop's output.
type EnforcementResult struct {
	Routes     [][]problem.NodeIndex
	Iterations int
}

// RunEnforcementLoop runs the experimental soft-synchronised workflow
// spec.md §4.10 describes: solve with every two-carer visit's
// synchronisation relaxed, then repeatedly find the visits the search left
// relaxed (symmetry violated, one carer active while the other is not, or
// mismatched arrival times), patch a fraction of them by dropping both
// their nodes and permanently promoting their pair to hard enforcement,
// and re-solve from the patched routes. It terminates once no relaxed pair
// remains.
func RunEnforcementLoop(ctx context.Context, model *cpengine.Model, cfg SolverConfig, rng *rand.Rand) (EnforcementResult, error) {
	model.RelaxSyncPairs()
	model.CostOverride = nil

	result, err := SingleStepSolver(ctx, model, nil, cfg)
	if err != nil {
		return EnforcementResult{}, err
	}
	current := result.Best

	iterations := 0
	for {
		relaxed := relaxedSyncPairs(model, current)
		if len(relaxed) == 0 {
			break
		}
		iterations++

		count := int(math.Ceil(progressFraction * float64(len(relaxed))))
		if count < 1 {
			count = 1
		}
		if count > len(relaxed) {
			count = len(relaxed)
		}

		for _, p := range choosePairs(relaxed, count, rng) {
			removeNode(current, p.A)
			removeNode(current, p.B)
			model.EnforceSyncPair(p.A)
		}

		seeded, err := cpengine.SeedAssignment(ctx, model, current.Routes)
		if err != nil {
			return EnforcementResult{}, err
		}
		result, err = SingleStepSolver(ctx, model, seeded, cfg)
		if err != nil {
			return EnforcementResult{}, err
		}
		current = result.Best
	}

	return EnforcementResult{Routes: current.Routes, Iterations: iterations}, nil
}

// relaxedSyncPairs returns every two-carer visit pair in a that is not
// fully satisfied: both dropped, both active on distinct vehicles in
// ascending vehicle order with a matching arrival time is the only
// satisfied shape.
func relaxedSyncPairs(model *cpengine.Model, a *cpengine.Assignment) []cpengine.SyncPair {
	var out []cpengine.SyncPair
	for _, p := range model.SyncPairs() {
		va, vb := a.Vehicle[p.A], a.Vehicle[p.B]
		if va == cpengine.UnassignedVehicle && vb == cpengine.UnassignedVehicle {
			continue
		}
		if va == cpengine.UnassignedVehicle || vb == cpengine.UnassignedVehicle {
			out = append(out, p)
			continue
		}
		if va >= vb {
			out = append(out, p)
			continue
		}
		if a.Cumul[p.A] != a.Cumul[p.B] {
			out = append(out, p)
		}
	}
	return out
}

// choosePairs picks count pairs out of relaxed at random without
// replacement.
func choosePairs(relaxed []cpengine.SyncPair, count int, rng *rand.Rand) []cpengine.SyncPair {
	perm := rng.Perm(len(relaxed))
	chosen := make([]cpengine.SyncPair, count)
	for i := 0; i < count; i++ {
		chosen[i] = relaxed[perm[i]]
	}
	return chosen
}

// removeNode drops node n from whatever route it is currently assigned to,
// leaving it unassigned so the next seeded solve is free to re-place it
// under the newly enforced constraint.
func removeNode(a *cpengine.Assignment, n problem.NodeIndex) {
	v := a.Vehicle[n]
	if v == cpengine.UnassignedVehicle {
		return
	}
	route := a.Routes[v]
	for i, node := range route {
		if node == n {
			a.Routes[v] = append(route[:i:i], route[i+1:]...)
			break
		}
	}
	a.Vehicle[n] = cpengine.UnassignedVehicle
}
