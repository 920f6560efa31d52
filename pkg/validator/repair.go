package validator

import (
	"context"
	"fmt"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/metrics"
)

// MaxRepairIterations bounds RepairLoop so a solution that can never be made
// clean (e.g. a carer entirely removed from the roster) does not spin
// forever.
const MaxRepairIterations = 25

// RepairLoop turns a possibly-stale solution into a usable warm start:
// validate, patch away every reported error (release the assignment, or
// mark the visit moved/invalid), rebuild, and re-validate, until no errors
// remain or MaxRepairIterations is hit. It is the mechanism spec.md §4.9
// describes for making a persisted solution usable again after the problem
// has changed slightly, and the one invariant §8's "warm-start idempotence"
// property is checked against.
func (v *RouteValidator) RepairLoop(ctx context.Context, sol domain.Solution) (domain.Solution, []Error, error) {
	current := sol
	iterations := 0

	for ; iterations < MaxRepairIterations; iterations++ {
		errs, err := v.ValidateFull(ctx, current)
		if err != nil {
			return current, nil, err
		}
		if len(errs) == 0 {
			metrics.RepairIterations.Observe(float64(iterations))
			return current, nil, nil
		}

		log.WithComponent("validator").Warn().
			Int("iteration", iterations).
			Int("errors", len(errs)).
			Msg("repair loop patching validation errors")

		current = patch(current, errs)
	}

	errs, err := v.ValidateFull(ctx, current)
	if err != nil {
		return current, nil, err
	}
	metrics.RepairIterations.Observe(float64(iterations))
	if len(errs) > 0 {
		return current, errs, fmt.Errorf("validator: repair loop did not converge after %d iterations", iterations)
	}
	return current, nil, nil
}

// patch applies every error's prescribed repair to a fresh copy of sol's
// visits: MOVED visits are cleared and marked moved so the solver
// re-assigns them at their new time; ORPHANED visits are marked invalid and
// dropped from consideration entirely; every other kind releases the
// offending carer assignment so the visit becomes available again.
func patch(sol domain.Solution, errs []Error) domain.Solution {
	release := make(map[releaseKey]bool)
	moved := make(map[int64]bool)
	orphaned := make(map[int64]bool)

	for _, e := range errs {
		switch e.Kind {
		case Moved:
			moved[e.VisitID] = true
		case Orphaned:
			orphaned[e.VisitID] = true
		default:
			release[releaseKey{visitID: e.VisitID, carerID: e.CarerID}] = true
		}
	}

	out := make([]domain.ScheduledVisit, 0, len(sol.Visits))
	for _, sv := range sol.Visits {
		switch {
		case orphaned[sv.Visit.ID]:
			sv.Status = domain.VisitInvalid
			sv.CarerID = ""
		case moved[sv.Visit.ID]:
			sv.Status = domain.VisitMoved
			sv.CarerID = ""
		case release[releaseKey{visitID: sv.Visit.ID, carerID: sv.CarerID}]:
			sv.Status = domain.VisitUnknown
			sv.CarerID = ""
		}
		out = append(out, sv)
	}
	return domain.Solution{Visits: out}
}

type releaseKey struct {
	visitID int64
	carerID string
}
