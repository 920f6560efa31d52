package validator

import (
	"context"
	"sort"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/metrics"
	"github.com/homeplan/scheduler/pkg/problem"
)

// RouteValidator checks a domain.Solution against the live problem it was
// (or is about to be) solved against, independently of the CP engine. It
// holds no mutable state: every check is a pure function of the solution
// and the problem data supplied to ValidateFull.
type RouteValidator struct {
	Data *problem.Data
}

// New returns a RouteValidator checking solutions against data.
func New(data *problem.Data) *RouteValidator {
	return &RouteValidator{Data: data}
}

// ValidateFull checks every invariant in spec.md §4.9's table against sol,
// returning every violation found. An empty result means sol is a fully
// valid schedule for the current problem.
func (v *RouteValidator) ValidateFull(ctx context.Context, sol domain.Solution) ([]Error, error) {
	var errs []Error

	byVisit := make(map[int64][]domain.ScheduledVisit)
	for _, sv := range sol.Visits {
		if !sv.Assigned() {
			continue
		}
		byVisit[sv.Visit.ID] = append(byVisit[sv.Visit.ID], sv)
	}

	for visitID, assigned := range byVisit {
		errs = append(errs, v.checkVisitInfo(assigned)...)
		errs = append(errs, v.checkCarerCount(visitID, assigned)...)
	}

	for _, route := range sol.ByCarer() {
		routeErrs, err := v.checkRoute(ctx, route)
		if err != nil {
			return nil, err
		}
		errs = append(errs, routeErrs...)
	}

	sort.Slice(errs, func(i, j int) bool {
		if errs[i].VisitID != errs[j].VisitID {
			return errs[i].VisitID < errs[j].VisitID
		}
		return errs[i].Kind < errs[j].Kind
	})

	for _, e := range errs {
		metrics.ValidationErrorsTotal.WithLabelValues(string(e.Kind)).Inc()
	}

	return errs, nil
}

// checkVisitInfo reports MISSING_INFO, MOVED and ORPHANED for a visit's
// assigned copies.
func (v *RouteValidator) checkVisitInfo(assigned []domain.ScheduledVisit) []Error {
	var errs []Error
	for _, sv := range assigned {
		if sv.Visit.ID == 0 {
			errs = append(errs, Error{Kind: MissingInfo, CarerID: sv.CarerID, Detail: "scheduled visit has no underlying calendar visit"})
			continue
		}
		zero := domain.Location{}
		if sv.Visit.Location.Equal(zero) && sv.Visit.Address.Location.Equal(zero) {
			errs = append(errs, Error{Kind: MissingInfo, VisitID: sv.Visit.ID, CarerID: sv.CarerID, Detail: "scheduled visit has no resolved location"})
		}

		if !v.Data.Contains(sv.Visit.ID) {
			errs = append(errs, Error{Kind: Orphaned, VisitID: sv.Visit.ID, CarerID: sv.CarerID, Detail: "visit no longer exists in the live problem"})
			continue
		}
		live := v.liveVisit(sv.Visit.ID)
		if !live.PreferredStart.Equal(sv.Visit.PreferredStart) || !live.Location.Equal(sv.Visit.Location) {
			errs = append(errs, Error{Kind: Moved, VisitID: sv.Visit.ID, CarerID: sv.CarerID, Detail: "visit time or location no longer matches the live problem"})
		}
	}
	return errs
}

func (v *RouteValidator) liveVisit(visitID int64) domain.CalendarVisit {
	for _, cv := range v.Data.Visits() {
		if cv.ID == visitID {
			return cv
		}
	}
	return domain.CalendarVisit{}
}

// checkCarerCount reports TOO_MANY_CARERS and NOT_ENOUGH_CARERS.
func (v *RouteValidator) checkCarerCount(visitID int64, assigned []domain.ScheduledVisit) []Error {
	required := assigned[0].Visit.RequiredCarerCount
	if required < 1 {
		required = 1
	}
	count := len(assigned)

	if count > required {
		var errs []Error
		for _, sv := range assigned {
			errs = append(errs, Error{Kind: TooManyCarers, VisitID: visitID, CarerID: sv.CarerID,
				Detail: "more carers assigned than the visit requires"})
		}
		return errs
	}
	if required == 2 && count == 1 {
		return []Error{{Kind: NotEnoughCarers, VisitID: visitID, CarerID: assigned[0].CarerID,
			Detail: "two-carer visit appears on only one route"}}
	}
	return nil
}

// checkRoute reports ABSENT_CARER, BREAK_VIOLATION and LATE_ARRIVAL for a
// single carer's route.
func (v *RouteValidator) checkRoute(ctx context.Context, route domain.Route) ([]Error, error) {
	var errs []Error

	carer, ok := v.findCarer(route.CarerID)
	if !ok || len(carer.Diary.Events) == 0 {
		for _, sv := range route.Visits {
			errs = append(errs, Error{Kind: AbsentCarer, VisitID: sv.Visit.ID, CarerID: route.CarerID,
				Detail: "assigned carer has no diary for the scheduling day"})
		}
		return errs, nil
	}

	sorted := append([]domain.ScheduledVisit(nil), route.Visits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PlannedStart.Before(sorted[j].PlannedStart) })

	for _, sv := range sorted {
		if !v.fullyContained(carer.Diary, sv) {
			errs = append(errs, Error{Kind: BreakViolation, VisitID: sv.Visit.ID, CarerID: route.CarerID,
				Detail: "service interval is not fully contained in a single diary event"})
		}
	}

	var prev *domain.ScheduledVisit
	for i := range sorted {
		sv := sorted[i]
		if prev != nil {
			d, err := v.travelTime(ctx, prev.Visit, sv.Visit)
			if err != nil {
				return nil, err
			}
			if prev.PlannedEnd().Add(time.Duration(d)*time.Second).After(sv.PlannedStart) {
				errs = append(errs, Error{Kind: LateArrival, VisitID: sv.Visit.ID, CarerID: route.CarerID,
					Detail: "previous visit's finish plus travel time exceeds this visit's start"})
			}
		}
		prevCopy := sorted[i]
		prev = &prevCopy
	}

	return errs, nil
}

// fullyContained reports whether sv's planned service interval lies wholly
// within a single diary event.
func (v *RouteValidator) fullyContained(diary domain.Diary, sv domain.ScheduledVisit) bool {
	for _, ev := range diary.Events {
		if !sv.PlannedStart.Before(ev.Begin) && !sv.PlannedEnd().After(ev.End) {
			return true
		}
	}
	return false
}

func (v *RouteValidator) findCarer(carerID string) (domain.Carer, bool) {
	for i := 0; i < v.Data.Vehicles(); i++ {
		c := v.Data.Carer(i)
		if c.ID == carerID {
			return c, true
		}
	}
	return domain.Carer{}, false
}

func (v *RouteValidator) travelTime(ctx context.Context, from, to domain.CalendarVisit) (int64, error) {
	return v.Data.LocationDistance(ctx, from.Location, to.Location)
}
