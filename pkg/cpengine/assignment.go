package cpengine

import (
	"context"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
)

// Assignment is a candidate solution under construction: which vehicle (if
// any) serves each node, each vehicle's ordered route, and the committed
// cumulative arrival time at each assigned node.
type Assignment struct {
	model *Model

	Vehicle []VehicleIndex       // per node
	Cumul   []int64              // per node, meaningful only when assigned
	Routes  [][]problem.NodeIndex // per vehicle, depot excluded
}

// NewAssignment returns an empty assignment over model: every node
// unassigned, every vehicle's route empty.
func NewAssignment(model *Model) *Assignment {
	n := model.Data.Nodes()
	a := &Assignment{
		model:   model,
		Vehicle: make([]VehicleIndex, n),
		Cumul:   make([]int64, n),
		Routes:  make([][]problem.NodeIndex, model.Data.Vehicles()),
	}
	for i := range a.Vehicle {
		a.Vehicle[i] = UnassignedVehicle
	}
	return a
}

// Clone returns a deep copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	n := &Assignment{
		model:   a.model,
		Vehicle: append([]VehicleIndex(nil), a.Vehicle...),
		Cumul:   append([]int64(nil), a.Cumul...),
		Routes:  make([][]problem.NodeIndex, len(a.Routes)),
	}
	for i, r := range a.Routes {
		n.Routes[i] = append([]problem.NodeIndex(nil), r...)
	}
	return n
}

// DroppedCount returns how many nodes are unassigned.
func (a *Assignment) DroppedCount() int {
	count := 0
	for _, v := range a.Vehicle {
		if v == UnassignedVehicle {
			count++
		}
	}
	return count
}

// Cost returns the assignment's objective: by default, total travel time
// across every route plus the penalty of every fully-dropped disjunction,
// or whatever a.model.CostOverride computes if one is set.
func (a *Assignment) Cost(ctx context.Context) (int64, error) {
	if a.model.CostOverride != nil {
		return a.model.CostOverride(ctx, a)
	}
	return DefaultCost(ctx, a)
}

// DefaultCost computes the engine's built-in objective: total travel time
// across every route, plus the penalty of every fully-dropped disjunction.
// It is exported so a Model.CostOverride can compose with it (e.g. adding a
// per-vehicle usage cost) instead of having to reimplement it.
func DefaultCost(ctx context.Context, a *Assignment) (int64, error) {
	var total int64
	for _, route := range a.Routes {
		cost, err := routeTravelCost(ctx, a.model.Data, route)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	for _, dis := range a.model.Disjunctions() {
		if a.disjunctionDropped(dis) {
			total += dis.Penalty
		}
	}
	return total, nil
}

func (a *Assignment) disjunctionDropped(dis Disjunction) bool {
	for _, n := range dis.Nodes {
		if a.Vehicle[n] != UnassignedVehicle {
			return false
		}
	}
	return true
}

func routeTravelCost(ctx context.Context, data *problem.Data, route []problem.NodeIndex) (int64, error) {
	if len(route) == 0 {
		return 0, nil
	}
	var total int64
	prev := problem.Depot
	for _, n := range route {
		d, err := data.Distance(ctx, prev, n)
		if err != nil {
			return 0, err
		}
		total += d
		prev = n
	}
	d, err := data.Distance(ctx, prev, problem.Depot)
	if err != nil {
		return 0, err
	}
	total += d
	return total, nil
}

// ToSolution projects the assignment into a domain.Solution, one
// ScheduledVisit per node that has a visit (depot excluded). Nodes without
// a vehicle are reported as dropped (VisitUnknown, no carer).
func (a *Assignment) ToSolution() domain.Solution {
	var visits []domain.ScheduledVisit
	for n := problem.NodeIndex(1); int(n) < len(a.Vehicle); n++ {
		v, ok := a.model.Data.NodeToVisit(n)
		if !ok {
			continue
		}
		sv := domain.ScheduledVisit{
			Visit:           v,
			PlannedDuration: v.ServiceDuration,
		}
		if a.Vehicle[n] == UnassignedVehicle {
			sv.Status = domain.VisitUnknown
		} else {
			carer := a.model.Data.Carer(int(a.Vehicle[n]))
			sv.Status = domain.VisitOk
			sv.CarerID = carer.ID
			sv.PlannedStart = a.model.Data.StartHorizon().Add(secondsToDuration(a.Cumul[n]))
		}
		visits = append(visits, sv)
	}
	return domain.Solution{Visits: visits}
}
