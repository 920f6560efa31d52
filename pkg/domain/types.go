package domain

import "time"

// Address is a postal address paired with the Location it resolves to.
type Address struct {
	ID       string
	Line1    string
	Line2    string
	City     string
	PostCode string
	Location Location
}

// Mobility describes how a carer travels between visits.
type Mobility string

const (
	MobilityFoot    Mobility = "foot"
	MobilityVehicle Mobility = "vehicle"
)

// Carer identifies a care worker: their travel mode, their diary of
// availability, and the skills they hold.
type Carer struct {
	ID       string
	Mobility Mobility
	Skills   []string
	Diary    Diary
}

// HasSkills reports whether the carer holds every skill in required.
func (c Carer) HasSkills(required []string) bool {
	held := make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		held[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := held[s]; !ok {
			return false
		}
	}
	return true
}

// ServiceUser is the person receiving care: a stable id, address, location,
// and an optional per-carer preference weight in [0, 1] used to bias
// assignment toward carers the user prefers.
type ServiceUser struct {
	ID          string
	Address     Address
	Location    Location
	Preferences map[string]float64
}

// PreferenceFor returns the weight the user places on carer, defaulting to
// zero when no preference was recorded.
func (u ServiceUser) PreferenceFor(carerID string) float64 {
	return u.Preferences[carerID]
}

// CalendarVisit is a planned visit to a service user: a time window around a
// preferred start, a service duration, how many carers it requires, and the
// skills those carers must hold.
type CalendarVisit struct {
	ID                int64
	ServiceUser       ServiceUser
	Address           Address
	Location          Location
	PreferredStart    time.Time
	WindowSlack       time.Duration
	ServiceDuration    time.Duration
	RequiredCarerCount int
	RequiredSkills     []string
}

// Window returns the visit's half-open time window
// [PreferredStart-WindowSlack, PreferredStart+WindowSlack).
func (v CalendarVisit) Window() Event {
	return Event{
		Begin: v.PreferredStart.Add(-v.WindowSlack),
		End:   v.PreferredStart.Add(v.WindowSlack),
	}
}

// Break is an idle period a carer must take: its start time and duration.
type Break struct {
	CarerID string
	Start   time.Time
	Duration time.Duration
}

// End returns the break's end time.
func (b Break) End() time.Time {
	return b.Start.Add(b.Duration)
}

// VisitStatus classifies how a ScheduledVisit was realized against its plan.
type VisitStatus string

const (
	VisitUnknown   VisitStatus = "unknown"
	VisitOk        VisitStatus = "ok"
	VisitCancelled VisitStatus = "cancelled"
	VisitMoved     VisitStatus = "moved"
	VisitInvalid   VisitStatus = "invalid"
)

// ScheduledVisit is a single carer's assignment to a CalendarVisit: the
// planned start and duration the solver chose, and, once known, the actual
// check-in/check-out the carer recorded.
type ScheduledVisit struct {
	Status        VisitStatus
	CarerID       string // empty when the visit has no assigned carer (dropped)
	Visit         CalendarVisit
	PlannedStart  time.Time
	PlannedDuration time.Duration
	CheckIn       *time.Time
	CheckOut      *time.Time
}

// Assigned reports whether the visit was given a carer.
func (s ScheduledVisit) Assigned() bool {
	return s.CarerID != ""
}

// PlannedEnd returns PlannedStart + PlannedDuration.
func (s ScheduledVisit) PlannedEnd() time.Time {
	return s.PlannedStart.Add(s.PlannedDuration)
}

// Route is a single carer's ordered sequence of scheduled visits.
type Route struct {
	CarerID string
	Visits  []ScheduledVisit
}

// Solution is the ordered set of scheduled visits a solve produced. It can
// be projected into per-carer Routes with ByCarer.
type Solution struct {
	Visits []ScheduledVisit
}

// ByCarer groups the solution's visits into one Route per carer that has at
// least one assigned visit, in order of each carer's first appearance.
// Unassigned (dropped) visits are omitted.
func (s Solution) ByCarer() []Route {
	index := make(map[string]int)
	var routes []Route
	for _, v := range s.Visits {
		if !v.Assigned() {
			continue
		}
		i, ok := index[v.CarerID]
		if !ok {
			i = len(routes)
			index[v.CarerID] = i
			routes = append(routes, Route{CarerID: v.CarerID})
		}
		routes[i].Visits = append(routes[i].Visits, v)
	}
	return routes
}

// Dropped returns the visits in the solution that were not assigned a carer.
func (s Solution) Dropped() []ScheduledVisit {
	var dropped []ScheduledVisit
	for _, v := range s.Visits {
		if !v.Assigned() {
			dropped = append(dropped, v)
		}
	}
	return dropped
}
