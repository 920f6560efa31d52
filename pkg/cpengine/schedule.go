package cpengine

import (
	"context"

	"github.com/homeplan/scheduler/pkg/problem"
)

// Schedule walks route in order starting from vehicle's adjusted shift
// begin, propagating the time dimension forward: arrival at each node is
// the later of the previous departure plus travel, or the node's own
// window begin, and must not exceed the node's window end. It returns the
// cumulative arrival time at every node in route and whether the route is
// feasible.
func Schedule(ctx context.Context, m *Model, vehicle VehicleIndex, route []problem.NodeIndex) ([]int64, bool, error) {
	cumul := make([]int64, len(route))
	if len(route) == 0 {
		return cumul, true, nil
	}

	vw := m.VehicleWindow(vehicle)
	departure := vw.Begin
	prev := problem.Depot

	for i, n := range route {
		travel, err := m.Data.Distance(ctx, prev, n)
		if err != nil {
			return nil, false, err
		}
		arrival := departure + travel
		win := m.Window(n)
		if arrival < win.Begin {
			arrival = win.Begin
		}
		if arrival > win.End {
			return cumul, false, nil
		}
		cumul[i] = arrival
		departure = arrival + m.Data.ServiceTime(n)
		prev = n
	}

	backToDepot, err := m.Data.Distance(ctx, prev, problem.Depot)
	if err != nil {
		return nil, false, err
	}
	if departure+backToDepot > vw.End {
		return cumul, false, nil
	}

	return cumul, true, nil
}

// applyCumul copies a Schedule result into the assignment's per-node cumul
// array for the given route.
func (a *Assignment) applyCumul(route []problem.NodeIndex, cumul []int64) {
	for i, n := range route {
		a.Cumul[n] = cumul[i]
	}
}
