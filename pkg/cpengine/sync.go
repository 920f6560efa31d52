package cpengine

import "github.com/homeplan/scheduler/pkg/problem"

// syncedNodes returns the set of nodes that belong to some two-carer
// visit's synchronisation pair.
func syncedNodes(model *Model) map[problem.NodeIndex]bool {
	set := make(map[problem.NodeIndex]bool, 2*len(model.SyncPairs()))
	for _, p := range model.SyncPairs() {
		set[p.A] = true
		set[p.B] = true
	}
	return set
}

// syncPairsSatisfied reports whether every two-carer visit in a is either
// fully dropped or served by two distinct vehicles at the same cumulative
// start time.
func syncPairsSatisfied(model *Model, a *Assignment) bool {
	for _, p := range model.SyncPairs() {
		if !model.syncEnforced(p.A) {
			continue
		}
		va, vb := a.Vehicle[p.A], a.Vehicle[p.B]
		if va == UnassignedVehicle && vb == UnassignedVehicle {
			continue
		}
		if va == UnassignedVehicle || vb == UnassignedVehicle {
			return false
		}
		if va == vb {
			return false
		}
		if a.Cumul[p.A] != a.Cumul[p.B] {
			return false
		}
	}
	return true
}
