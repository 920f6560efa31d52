package cpengine

import (
	"container/heap"
	"context"

	"github.com/homeplan/scheduler/pkg/problem"
)

// Construct builds an initial Assignment by sequential insertion: visits are
// taken one at a time, single-carer visits before two-carer visits (the
// order among visits with the same carer count is not defined), and each is
// committed before the next is considered. A single-carer visit goes to its
// cheapest feasible position across every allowed vehicle; a two-carer
// visit goes to the first synchronised pair of placements found. Insertion
// costs are not compared across visits. A visit with no feasible insertion
// is left dropped.
func Construct(ctx context.Context, model *Model) (*Assignment, error) {
	a := NewAssignment(model)

	pq := &insertionQueue{}
	heap.Init(pq)
	for i, dis := range model.Disjunctions() {
		heap.Push(pq, &insertionCandidate{disjunctionIndex: i, priority: len(dis.Nodes)})
	}

	for pq.Len() > 0 {
		cand := heap.Pop(pq).(*insertionCandidate)
		dis := model.Disjunctions()[cand.disjunctionIndex]
		if err := insertDisjunction(ctx, model, a, dis); err != nil {
			return nil, err
		}
	}

	return a, nil
}

type insertionCandidate struct {
	disjunctionIndex int
	priority         int
}

type insertionQueue []*insertionCandidate

func (q insertionQueue) Len() int            { return len(q) }
func (q insertionQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q insertionQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *insertionQueue) Push(x interface{}) { *q = append(*q, x.(*insertionCandidate)) }
func (q *insertionQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// insertDisjunction places every node of a disjunction, or leaves them all
// dropped if no feasible placement exists.
func insertDisjunction(ctx context.Context, model *Model, a *Assignment, dis Disjunction) error {
	switch len(dis.Nodes) {
	case 1:
		return insertSingle(ctx, model, a, dis.Nodes[0])
	case 2:
		return insertSyncPair(ctx, model, a, dis.Nodes[0], dis.Nodes[1])
	default:
		return nil
	}
}

type placement struct {
	vehicle  VehicleIndex
	position int
	cumul    []int64
	cost     int64
}

// bestInsertion scans every allowed vehicle and route position for node,
// returning the cheapest feasible placement (including passing the
// vehicle's BreakConstraint), or ok=false if none exists.
func bestInsertion(ctx context.Context, model *Model, a *Assignment, node problem.NodeIndex) (placement, bool, error) {
	var best placement
	found := false

	for _, v := range model.AllowedVehicles(node) {
		route := a.Routes[v]
		for pos := 0; pos <= len(route); pos++ {
			candidate := insertAt(route, node, pos)
			cumul, feasible, err := Schedule(ctx, model, v, candidate)
			if err != nil {
				return placement{}, false, err
			}
			if !feasible {
				continue
			}
			if !breakFeasible(model, v, candidate, cumul) {
				continue
			}
			cost, err := routeTravelCost(ctx, model.Data, candidate)
			if err != nil {
				return placement{}, false, err
			}
			if !found || cost < best.cost {
				best = placement{vehicle: v, position: pos, cumul: cumul, cost: cost}
				found = true
			}
		}
	}
	return best, found, nil
}

func insertAt(route []problem.NodeIndex, node problem.NodeIndex, pos int) []problem.NodeIndex {
	out := make([]problem.NodeIndex, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, node)
	out = append(out, route[pos:]...)
	return out
}

func breakFeasible(model *Model, vehicle VehicleIndex, route []problem.NodeIndex, cumul []int64) bool {
	probe := NewAssignment(model)
	probe.Routes[vehicle] = route
	probe.applyCumul(route, cumul)
	return NewBreakConstraint(model, vehicle).OnPathClosed(probe) == nil
}

func insertSingle(ctx context.Context, model *Model, a *Assignment, node problem.NodeIndex) error {
	best, ok, err := bestInsertion(ctx, model, a, node)
	if err != nil {
		return err
	}
	if !ok {
		return nil // left dropped
	}
	commit(a, node, best)
	return nil
}

func commit(a *Assignment, node problem.NodeIndex, p placement) {
	a.Routes[p.vehicle] = insertAt(a.Routes[p.vehicle], node, p.position)
	a.applyCumul(a.Routes[p.vehicle], p.cumul)
	a.Vehicle[node] = p.vehicle
}

// insertSyncPair places both nodes of a two-carer visit on distinct
// vehicles at the same cumulative start time, breaking symmetry by vehicle
// index. If no such pair of placements exists, both nodes are left
// dropped.
func insertSyncPair(ctx context.Context, model *Model, a *Assignment, nodeA, nodeB problem.NodeIndex) error {
	for _, vA := range model.AllowedVehicles(nodeA) {
		routeA := a.Routes[vA]
		for posA := 0; posA <= len(routeA); posA++ {
			candidateA := insertAt(routeA, nodeA, posA)
			cumulA, feasibleA, err := Schedule(ctx, model, vA, candidateA)
			if err != nil {
				return err
			}
			if !feasibleA || !breakFeasible(model, vA, candidateA, cumulA) {
				continue
			}
			startA := cumulA[posA]

			for _, vB := range model.AllowedVehicles(nodeB) {
				if vB == vA {
					continue
				}
				placed, err := tryMatchStart(ctx, model, a, vB, nodeB, startA)
				if err != nil {
					return err
				}
				if placed == nil {
					continue
				}
				// The two nodes of a two-carer visit are interchangeable
				// (same visit, window and service time), so node A always
				// takes the lower-indexed vehicle's placement.
				pa, pb := placement{vehicle: vA, position: posA, cumul: cumulA}, *placed
				if pb.vehicle < pa.vehicle {
					pa, pb = pb, pa
				}
				commit(a, nodeA, pa)
				commit(a, nodeB, pb)
				return nil
			}
		}
	}
	return nil
}

// tryMatchStart looks for a feasible insertion of node into vehicle's route
// whose resulting cumulative start exactly matches target, honoring break
// feasibility.
func tryMatchStart(ctx context.Context, model *Model, a *Assignment, vehicle VehicleIndex, node problem.NodeIndex, target int64) (*placement, error) {
	route := a.Routes[vehicle]
	for pos := 0; pos <= len(route); pos++ {
		candidate := insertAt(route, node, pos)
		cumul, feasible, err := Schedule(ctx, model, vehicle, candidate)
		if err != nil {
			return nil, err
		}
		if !feasible {
			continue
		}
		if cumul[pos] != target {
			continue
		}
		if !breakFeasible(model, vehicle, candidate, cumul) {
			continue
		}
		return &placement{vehicle: vehicle, position: pos, cumul: cumul}, nil
	}
	return nil, nil
}
