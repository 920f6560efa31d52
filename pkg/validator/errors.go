package validator

import "fmt"

// ErrorKind is the canonical vocabulary of hard-constraint failures
// (spec.md §4.9, §7): every validation failure maps to exactly one of
// these kinds.
type ErrorKind string

const (
	// MissingInfo is reported when a ScheduledVisit lacks its CalendarVisit
	// or a resolved location.
	MissingInfo ErrorKind = "MISSING_INFO"
	// AbsentCarer is reported when the assigned carer has no diary at all
	// for the scheduling day.
	AbsentCarer ErrorKind = "ABSENT_CARER"
	// BreakViolation is reported when the service interval is not fully
	// contained in a single diary event, or overlaps a recorded break.
	BreakViolation ErrorKind = "BREAK_VIOLATION"
	// LateArrival is reported when a route's next visit starts before the
	// previous visit's finish plus travel time.
	LateArrival ErrorKind = "LATE_ARRIVAL"
	// TooManyCarers is reported when a visit is served by more routes than
	// its required carer count allows.
	TooManyCarers ErrorKind = "TOO_MANY_CARERS"
	// Moved is reported when a persisted visit's time or location no
	// longer matches the live problem.
	Moved ErrorKind = "MOVED"
	// Orphaned is reported when a persisted visit no longer exists in the
	// live problem at all.
	Orphaned ErrorKind = "ORPHANED"
	// NotEnoughCarers is reported when a two-carer visit appears on only
	// one route.
	NotEnoughCarers ErrorKind = "NOT_ENOUGH_CARERS"
)

// Error is one structured validation failure: the kind, the visit it
// concerns, and the carer whose route surfaced it (empty for visit-level
// errors that are not about any one route).
type Error struct {
	Kind    ErrorKind
	VisitID int64
	CarerID string
	Detail  string
}

func (e Error) Error() string {
	if e.CarerID == "" {
		return fmt.Sprintf("validator: %s: visit %d: %s", e.Kind, e.VisitID, e.Detail)
	}
	return fmt.Sprintf("validator: %s: visit %d carer %s: %s", e.Kind, e.VisitID, e.CarerID, e.Detail)
}
