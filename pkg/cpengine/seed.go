package cpengine

import (
	"context"

	"github.com/homeplan/scheduler/pkg/problem"
)

// SeedAssignment builds an Assignment from a caller-supplied set of
// per-vehicle routes — typically a previous stage's output, or a route set
// loaded from a warm-start store. Each route is rescheduled against model
// rather than trusted as-is, since the model that produced it may differ
// slightly (a different node space between stages, or a problem that
// changed since the route was persisted). A route that no longer schedules
// feasibly has its infeasible suffix dropped one node at a time rather than
// discarding the whole route, so a warm start degrades gracefully instead
// of falling back to an empty one.
func SeedAssignment(ctx context.Context, model *Model, routes [][]problem.NodeIndex) (*Assignment, error) {
	a := NewAssignment(model)

	for v, route := range routes {
		if v >= len(a.Routes) {
			continue
		}
		vehicle := VehicleIndex(v)
		candidate := route
		for len(candidate) > 0 {
			cumul, feasible, err := Schedule(ctx, model, vehicle, candidate)
			if err != nil {
				return nil, err
			}
			if feasible && breakFeasible(model, vehicle, candidate, cumul) {
				a.Routes[vehicle] = append([]problem.NodeIndex(nil), candidate...)
				a.applyCumul(candidate, cumul)
				for _, n := range candidate {
					a.Vehicle[n] = vehicle
				}
				break
			}
			candidate = candidate[:len(candidate)-1]
		}
	}

	return a, nil
}
