package cpengine

import (
	"context"
	"errors"
	"sort"

	"github.com/homeplan/scheduler/pkg/problem"
)

// ErrBreakViolation is returned when a vehicle's committed route leaves no
// room to fit one of its required breaks without overlapping travel or
// service time.
var ErrBreakViolation = errors.New("cpengine: break interval overlaps travel or service time")

type interval struct {
	begin, end int64
}

func (iv interval) length() int64 { return iv.end - iv.begin }

// BreakConstraint binds a vehicle's break intervals to its committed route:
// once the route is fixed, every break must fit in an idle gap between
// service and travel without overlapping either.
type BreakConstraint struct {
	model   *Model
	vehicle VehicleIndex
}

// NewBreakConstraint attaches a BreakConstraint for vehicle to model.
func NewBreakConstraint(model *Model, vehicle VehicleIndex) *BreakConstraint {
	return &BreakConstraint{model: model, vehicle: vehicle}
}

// Post wires the constraint to the vehicle's path-closed event. In this
// engine there is no separate demon scheduler, so Post simply runs the
// check against the assignment as it currently stands.
func (c *BreakConstraint) Post(a *Assignment) error {
	return c.InitialPropagate(a)
}

// InitialPropagate re-checks the constraint, equivalent to the original's
// on_path_closed firing once the vehicle's next[] chain is fully bound.
func (c *BreakConstraint) InitialPropagate(a *Assignment) error {
	return c.OnPathClosed(a)
}

// OnPathClosed builds the vehicle's busy (service + travel) intervals from
// its committed route and tries to fit every break into the remaining idle
// time. An unused vehicle (empty route) has no breaks to place.
func (c *BreakConstraint) OnPathClosed(a *Assignment) error {
	route := a.Routes[c.vehicle]
	if len(route) == 0 {
		return nil
	}

	busy := c.busyIntervals(a, route)
	window := c.model.VehicleWindow(c.vehicle)
	gaps := idleGaps(window, busy)

	breaks := c.model.VehicleBreaks(c.vehicle)
	sorted := append([]BreakInterval(nil), breaks...)
	sort.SliceStable(sorted, func(i, j int) bool { return !sorted[i].Fixed && sorted[j].Fixed })

	for _, b := range sorted {
		allowed := b.allowedWindow(c.model.Horizon)
		placed := false
		for i, g := range gaps {
			candidateBegin := g.begin
			if allowed.Begin > candidateBegin {
				candidateBegin = allowed.Begin
			}
			candidateEnd := candidateBegin + b.Duration
			if candidateEnd > g.end || candidateEnd > allowed.End {
				continue
			}
			gaps[i] = splitGap(g, interval{begin: candidateBegin, end: candidateEnd})
			placed = true
			break
		}
		if !placed {
			return ErrBreakViolation
		}
	}

	return nil
}

// busyIntervals returns the service and travel segments a committed route
// occupies. Legs to and from the depot take no time and add no segment.
func (c *BreakConstraint) busyIntervals(a *Assignment, route []problem.NodeIndex) []interval {
	var busy []interval
	for _, n := range route {
		start := a.Cumul[n]
		serviceEnd := start + c.model.Data.ServiceTime(n)
		busy = append(busy, interval{begin: start, end: serviceEnd})
	}
	// Travel legs: [departure(n_i), departure(n_i)+travel(n_i, n_i+1)) for
	// each consecutive pair; waiting for the next visit's window to open is
	// idle. If the travel time cannot be looked up, the leg runs up to
	// cumul(n_i+1).
	for i := 1; i < len(route); i++ {
		prev, n := route[i-1], route[i]
		departure := a.Cumul[prev] + c.model.Data.ServiceTime(prev)
		end := a.Cumul[n]
		if travel, err := c.model.Data.Distance(context.Background(), prev, n); err == nil && departure+travel < end {
			end = departure + travel
		}
		busy = append(busy, interval{begin: departure, end: end})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].begin < busy[j].begin })
	return mergeIntervals(busy)
}

func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return in
	}
	out := []interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.begin <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// idleGaps returns the complement of busy within window.
func idleGaps(window TimeWindow, busy []interval) []interval {
	var gaps []interval
	cursor := window.Begin
	for _, b := range busy {
		begin, end := b.begin, b.end
		if begin < window.Begin {
			begin = window.Begin
		}
		if end > window.End {
			end = window.End
		}
		if begin > cursor {
			gaps = append(gaps, interval{begin: cursor, end: begin})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < window.End {
		gaps = append(gaps, interval{begin: cursor, end: window.End})
	}
	return gaps
}

// splitGap removes used from g, returning whichever larger remainder piece
// is left (the smaller remainder is dropped — acceptable here since break
// placement only needs one feasible slot per break, not maximal reuse).
func splitGap(g, used interval) interval {
	before := interval{begin: g.begin, end: used.begin}
	after := interval{begin: used.end, end: g.end}
	if before.length() >= after.length() {
		return before
	}
	return after
}
