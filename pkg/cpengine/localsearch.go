package cpengine

import (
	"context"

	"github.com/homeplan/scheduler/pkg/problem"
)

// relocateMove tries moving each assigned node to a cheaper feasible
// position, anywhere in any allowed vehicle's route (including its own, at
// a different position). It returns a strictly improving assignment and
// true if one was found, otherwise (a, false).
func relocateMove(ctx context.Context, model *Model, a *Assignment, baseCost int64) (*Assignment, int64, bool, error) {
	synced := syncedNodes(model)
	for node, v := range a.Vehicle {
		if v == UnassignedVehicle {
			continue
		}
		n := problem.NodeIndex(node)
		if synced[n] {
			// Relocating one side of a two-carer visit independently would
			// break its synchronised-start invariant; leave sync pairs to
			// the construction phase and the incremental enforcement loop.
			continue
		}

		without := a.Clone()
		removeNode(without, v, n)

		best, ok, err := bestInsertion(ctx, model, without, n)
		if err != nil {
			return nil, 0, false, err
		}
		if !ok {
			continue
		}
		commit(without, n, best)

		cost, err := without.Cost(ctx)
		if err != nil {
			return nil, 0, false, err
		}
		if cost < baseCost {
			return without, cost, true, nil
		}
	}
	return a, baseCost, false, nil
}

func removeNode(a *Assignment, v VehicleIndex, n problem.NodeIndex) {
	route := a.Routes[v]
	for i, x := range route {
		if x == n {
			a.Routes[v] = append(route[:i:i], route[i+1:]...)
			break
		}
	}
	a.Vehicle[n] = UnassignedVehicle
	a.Cumul[n] = 0
}

// twoOptMove reverses a contiguous segment of a single vehicle's route
// whenever doing so yields a strictly cheaper feasible route.
func twoOptMove(ctx context.Context, model *Model, a *Assignment, baseCost int64) (*Assignment, int64, bool, error) {
	for v := range a.Routes {
		route := a.Routes[v]
		for i := 0; i < len(route); i++ {
			for j := i + 1; j < len(route); j++ {
				candidate := a.Clone()
				reversed := append([]problem.NodeIndex(nil), route...)
				reverseSegment(reversed, i, j)

				cumul, feasible, err := Schedule(ctx, model, VehicleIndex(v), reversed)
				if err != nil {
					return nil, 0, false, err
				}
				if !feasible || !breakFeasible(model, VehicleIndex(v), reversed, cumul) {
					continue
				}
				candidate.Routes[v] = reversed
				candidate.applyCumul(reversed, cumul)
				if !syncPairsSatisfied(model, candidate) {
					continue
				}

				cost, err := candidate.Cost(ctx)
				if err != nil {
					return nil, 0, false, err
				}
				if cost < baseCost {
					return candidate, cost, true, nil
				}
			}
		}
	}
	return a, baseCost, false, nil
}

func reverseSegment(route []problem.NodeIndex, i, j int) {
	for i < j {
		route[i], route[j] = route[j], route[i]
		i++
		j--
	}
}
