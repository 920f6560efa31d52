package cpengine

import (
	"context"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
)

// VehicleIndex identifies a carer in the routing model. UnassignedVehicle
// marks a node that has not been given a carer.
type VehicleIndex int

// UnassignedVehicle is the sentinel vehicle index for a dropped node.
const UnassignedVehicle VehicleIndex = -1

// TimeWindow is a closed interval of seconds relative to the model's
// horizon start.
type TimeWindow struct {
	Begin int64
	End   int64
}

func (w TimeWindow) contains(t int64) bool {
	return t >= w.Begin && t <= w.End
}

// Disjunction is a set of nodes that may all be left unassigned together at
// a fixed cost: the representation of a visit that the solver is allowed to
// drop.
type Disjunction struct {
	Nodes          []problem.NodeIndex
	Penalty        int64
	MaxCardinality int
}

// SyncPair binds the two nodes of a two-carer visit: they must start at the
// same time, be both active or both dropped, and break symmetry by vehicle
// index ordering.
type SyncPair struct {
	A, B problem.NodeIndex
}

// BreakInterval is one interval a vehicle's final path must not overlap:
// either fixed at an exact start time, or floating within ±window of its
// originally scheduled start. addCarerHandling only derives floating
// intervals, one per gap between two of a carer's diary events (a split
// shift's lunch break); Fixed exists for a genuinely pinned break a
// future caller may add directly to a Model.
type BreakInterval struct {
	Fixed          bool
	ScheduledStart int64
	Duration       int64
	Window         int64 // only meaningful when !Fixed
}

func (b BreakInterval) allowedWindow(horizon int64) TimeWindow {
	if b.Fixed {
		// No slack: the break must start exactly at ScheduledStart. The
		// window still spans its own duration so OnPathClosed's generic
		// clamp-and-check logic pins candidateBegin to ScheduledStart
		// instead of rejecting every nonzero-duration fixed break outright.
		return TimeWindow{Begin: b.ScheduledStart, End: b.ScheduledStart + b.Duration}
	}
	begin := b.ScheduledStart - b.Window
	if begin < 0 {
		begin = 0
	}
	end := b.ScheduledStart + b.Window + b.Duration
	if end > horizon {
		end = horizon
	}
	return TimeWindow{Begin: begin, End: end}
}

// ModelParams configures the time-window widths Model derives from
// problem.Data.
type ModelParams struct {
	VisitTimeWindow   time.Duration
	BreakTimeWindow   time.Duration
	ShiftAdjustment   time.Duration
	MaxDroppedVisits  int // <0 means unlimited
}

// Model is the constraint/routing model built over a problem instance: the
// time dimension's windows, the drop disjunctions, skill restrictions,
// synchronisation pairs, and each vehicle's break intervals. It is built
// once per solve and is read-only thereafter; Assignment holds the mutable
// search state.
type Model struct {
	Data   *problem.Data
	Params ModelParams

	// CostOverride, when non-nil, replaces Assignment.Cost's default
	// travel-time-plus-dropped-penalty formula. This is the seam the
	// third-stage solver variants use to substitute a fixed per-vehicle
	// usage cost (favouring fewer carers used) or a riskiness index
	// (favouring less delay-prone routes) as the quantity local search
	// minimises, without the engine itself needing to know about either.
	CostOverride func(ctx context.Context, a *Assignment) (int64, error)

	Horizon int64

	windows      map[problem.NodeIndex]TimeWindow
	disjunctions []Disjunction
	syncPairs    []SyncPair
	allowed      map[problem.NodeIndex][]VehicleIndex
	vehicleWindow []TimeWindow
	breaks       [][]BreakInterval
	continuity   map[string][]continuityTerm

	enforcedSyncPairs map[problem.NodeIndex]bool
}

// RelaxSyncPairs switches the model into soft-synchronisation mode: none of
// its two-carer visit pairs are hard-enforced by local search until
// EnforceSyncPair promotes them individually. This is the seam the
// incremental enforcement loop uses to let a two-carer visit's pair start
// out of sync and patch only the ones the search actually leaves relaxed.
func (m *Model) RelaxSyncPairs() {
	m.enforcedSyncPairs = make(map[problem.NodeIndex]bool)
}

// EnforceSyncPair permanently promotes the pair anchored at node a to hard
// synchronisation enforcement. It has no effect unless RelaxSyncPairs was
// called first.
func (m *Model) EnforceSyncPair(a problem.NodeIndex) {
	if m.enforcedSyncPairs == nil {
		return
	}
	m.enforcedSyncPairs[a] = true
}

// syncEnforced reports whether pair's A node must be hard-enforced: always
// true unless the model is in soft-synchronisation mode and the pair has
// not yet been promoted.
func (m *Model) syncEnforced(pairA problem.NodeIndex) bool {
	if m.enforcedSyncPairs == nil {
		return true
	}
	return m.enforcedSyncPairs[pairA]
}

type continuityTerm struct {
	node   problem.NodeIndex
	weight func(carerID string) float64
}

// NewModel builds a Model from data, deriving visit windows, skill
// restrictions, synchronisation pairs, vehicle shift windows and break
// intervals, and continuity-of-care accumulators.
func NewModel(data *problem.Data, params ModelParams) *Model {
	m := &Model{
		Data:       data,
		Params:     params,
		Horizon:    int64(problem.HorizonLength.Seconds()),
		windows:    make(map[problem.NodeIndex]TimeWindow),
		allowed:    make(map[problem.NodeIndex][]VehicleIndex),
		continuity: make(map[string][]continuityTerm),
	}

	m.addVisitsHandling()
	m.addSkillHandling()
	m.addCarerHandling()
	m.addContinuityOfCare()

	return m
}

func (m *Model) visitWindow(v domain.CalendarVisit) TimeWindow {
	start := int64(v.PreferredStart.Sub(m.Data.StartHorizon()).Seconds())
	slack := int64(m.Params.VisitTimeWindow.Seconds())
	begin := start - slack
	if begin < 0 {
		begin = 0
	}
	end := start + slack
	if end > m.Horizon {
		end = m.Horizon
	}
	return TimeWindow{Begin: begin, End: end}
}

// addVisitsHandling assigns every visit's nodes a time window and, for
// two-carer visits, records a synchronisation pair. It also posts the
// drop disjunction for every visit.
func (m *Model) addVisitsHandling() {
	for _, v := range m.Data.Visits() {
		nodes := m.Data.GetNodes(v.ID)
		tw := m.visitWindow(v)
		for _, n := range nodes {
			m.windows[n] = tw
		}
		if len(nodes) == 2 {
			m.syncPairs = append(m.syncPairs, SyncPair{A: nodes[0], B: nodes[1]})
		}
		m.disjunctions = append(m.disjunctions, Disjunction{
			Nodes:          nodes,
			Penalty:        m.Data.DroppedVisitPenalty(),
			MaxCardinality: len(nodes),
		})
	}
}

// addSkillHandling restricts each node to the vehicles whose carer holds
// every skill the node's visit requires.
func (m *Model) addSkillHandling() {
	for _, v := range m.Data.Visits() {
		var ok []VehicleIndex
		for vehicle := 0; vehicle < m.Data.Vehicles(); vehicle++ {
			if m.Data.Carer(vehicle).HasSkills(v.RequiredSkills) {
				ok = append(ok, VehicleIndex(vehicle))
			}
		}
		for _, n := range m.Data.GetNodes(v.ID) {
			m.allowed[n] = ok
		}
	}
}

// AllowedVehicles returns the vehicles permitted to serve node n.
func (m *Model) AllowedVehicles(n problem.NodeIndex) []VehicleIndex {
	return m.allowed[n]
}

// addCarerHandling derives each vehicle's adjusted shift window and break
// intervals from its diary.
func (m *Model) addCarerHandling() {
	m.vehicleWindow = make([]TimeWindow, m.Data.Vehicles())
	m.breaks = make([][]BreakInterval, m.Data.Vehicles())

	adjustment := int64(m.Params.ShiftAdjustment.Seconds())
	breakTW := int64(m.Params.BreakTimeWindow.Seconds())

	for v := 0; v < m.Data.Vehicles(); v++ {
		carer := m.Data.Carer(v)
		if len(carer.Diary.Events) == 0 {
			m.vehicleWindow[v] = TimeWindow{Begin: 0, End: 0}
			continue
		}
		begin := int64(carer.Diary.BeginTime().Sub(m.Data.StartHorizon()).Seconds())
		end := int64(carer.Diary.EndTime().Sub(m.Data.StartHorizon()).Seconds())

		adjustedBegin := begin - adjustment
		if adjustedBegin < 0 {
			adjustedBegin = 0
		}
		adjustedEnd := end + adjustment
		if adjustedEnd > m.Horizon {
			adjustedEnd = m.Horizon
		}
		m.vehicleWindow[v] = TimeWindow{Begin: adjustedBegin, End: adjustedEnd}

		// Only gaps strictly between two shift events (a split shift's
		// lunch break, say) need room reserved in the route: the gap
		// before the first event and after the last is off-duty time
		// outside the vehicle's working window and needs no placement.
		horizonEvent := domain.Event{Begin: m.Data.StartHorizon(), End: m.Data.StartHorizon().Add(problem.HorizonLength)}
		gaps := carer.Diary.Breaks(horizonEvent)
		for i, gap := range gaps {
			if i == 0 || i == len(gaps)-1 {
				continue
			}
			startSec := int64(gap.Begin.Sub(m.Data.StartHorizon()).Seconds())
			duration := int64(gap.Duration().Seconds())
			m.breaks[v] = append(m.breaks[v], BreakInterval{
				Fixed:          false,
				ScheduledStart: startSec,
				Duration:       duration,
				Window:         breakTW,
			})
		}
	}
}

// VehicleWindow returns vehicle v's adjusted shift window.
func (m *Model) VehicleWindow(v VehicleIndex) TimeWindow {
	return m.vehicleWindow[v]
}

// VehicleBreaks returns vehicle v's break intervals.
func (m *Model) VehicleBreaks(v VehicleIndex) []BreakInterval {
	return m.breaks[v]
}

// addContinuityOfCare groups each service user's nodes so a continuity
// score can be accumulated over whichever vehicle ends up serving them.
func (m *Model) addContinuityOfCare() {
	for _, v := range m.Data.Visits() {
		if len(v.ServiceUser.Preferences) == 0 {
			continue
		}
		user := v.ServiceUser
		for _, n := range m.Data.GetNodes(v.ID) {
			m.continuity[user.ID] = append(m.continuity[user.ID], continuityTerm{
				node:   n,
				weight: func(carerID string) float64 { return user.PreferenceFor(carerID) },
			})
		}
	}
}

// ContinuityScore sums, for every node assigned in a, the service user's
// preference for the carer who served it. Higher is better; the finalizer
// either minimises its negation or reports it as a secondary objective.
func (m *Model) ContinuityScore(a *Assignment) float64 {
	var total float64
	for _, terms := range m.continuity {
		for _, term := range terms {
			v := a.Vehicle[term.node]
			if v == UnassignedVehicle {
				continue
			}
			total += term.weight(m.Data.Carer(int(v)).ID)
		}
	}
	return total
}

// Disjunctions returns every visit's drop disjunction.
func (m *Model) Disjunctions() []Disjunction {
	return m.disjunctions
}

// SyncPairs returns every two-carer visit's synchronisation pair.
func (m *Model) SyncPairs() []SyncPair {
	return m.syncPairs
}

// Window returns node n's time window.
func (m *Model) Window(n problem.NodeIndex) TimeWindow {
	return m.windows[n]
}
