package problem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/routing"
)

// NodeIndex identifies a node in the routing model: the depot, or one carer
// slot of a CalendarVisit.
type NodeIndex int

// Depot is the synthetic route anchor every vehicle starts and ends at. It
// has zero service time and travel time 0 to/from every other node.
const Depot NodeIndex = 0

// HorizonLength is the width of the scheduling horizon relative to its
// start: a full day plus two hours of slack for visits that run past
// midnight.
const HorizonLength = 26 * time.Hour

// Data is the derived, read-only view the CP engine and solvers build
// constraints against. It is constructed once per problem instance and
// never mutated afterward.
type Data struct {
	ID uuid.UUID

	carers []domain.Carer
	day    time.Time

	// nodeVisit[n] is the visit index (into visits) for node n, or -1 for
	// the depot.
	nodeVisit []int
	visits    []domain.CalendarVisit
	// visitNodes[visits[i].ID] lists the nodes allocated to that visit.
	visitNodes map[int64][]NodeIndex

	locations *routing.LocationCache
	startHorizon time.Time

	droppedVisitPenalty int64
}

// Build allocates a depot node plus one node per carer slot of every visit,
// assigns carer 2-visits two nodes, computes the travel-time matrix over the
// visits' distinct locations, and derives the default dropped-visit penalty.
func Build(ctx context.Context, carers []domain.Carer, visits []domain.CalendarVisit, engine routing.RoutingEngine) (*Data, error) {
	d := &Data{
		ID:         uuid.New(),
		carers:     carers,
		nodeVisit:  []int{-1}, // depot
		visitNodes: make(map[int64][]NodeIndex),
		locations:  routing.NewLocationCache(engine),
	}

	seen := make(map[int64]bool)
	next := NodeIndex(1)
	for _, v := range visits {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		d.visits = append(d.visits, v)

		count := v.RequiredCarerCount
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			d.nodeVisit = append(d.nodeVisit, len(d.visits)-1)
			d.visitNodes[v.ID] = append(d.visitNodes[v.ID], next)
			next++
		}

		d.locations.Add(v.Location)
		if d.startHorizon.IsZero() || v.PreferredStart.Before(d.startHorizon) {
			d.startHorizon = startOfDay(v.PreferredStart)
		}
	}

	if d.startHorizon.IsZero() {
		d.startHorizon = startOfDay(time.Now())
	}

	if err := d.locations.ComputeAll(ctx); err != nil {
		return nil, fmt.Errorf("problem: precompute travel-time matrix: %w", err)
	}

	d.droppedVisitPenalty = droppedVisitPenalty(d.locations)

	return d, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func droppedVisitPenalty(cache *routing.LocationCache) int64 {
	largest := cache.LargestDistances(3)
	if len(largest) == 0 {
		return 1
	}
	var total int64
	for _, v := range largest {
		total += v
	}
	return total
}

// Vehicles returns the number of carers (vehicles, in routing-model terms)
// in the problem.
func (d *Data) Vehicles() int {
	return len(d.carers)
}

// Nodes returns the total node count, including the depot.
func (d *Data) Nodes() int {
	return len(d.nodeVisit)
}

// Carer returns the carer bound to vehicle index v.
func (d *Data) Carer(v int) domain.Carer {
	return d.carers[v]
}

// StartHorizon returns the start of the scheduling horizon (midnight of the
// earliest visit's day).
func (d *Data) StartHorizon() time.Time {
	return d.startHorizon
}

// EndHorizon returns StartHorizon() + HorizonLength.
func (d *Data) EndHorizon() time.Time {
	return d.startHorizon.Add(HorizonLength)
}

// VisitStart returns the time elapsed between the horizon start and node n's
// visit's preferred start. It panics for the depot node.
func (d *Data) VisitStart(n NodeIndex) time.Duration {
	v := d.mustVisit(n)
	return v.PreferredStart.Sub(d.startHorizon)
}

// TotalWorkingHours returns the sum of vehicle v's diary event durations for
// the scheduling day.
func (d *Data) TotalWorkingHours(vehicle int) time.Duration {
	return d.carers[vehicle].Diary.Duration()
}

// Distance returns the travel time in seconds between two nodes, 0 if
// either is the depot.
func (d *Data) Distance(ctx context.Context, from, to NodeIndex) (int64, error) {
	if from == Depot || to == Depot {
		return 0, nil
	}
	fv := d.mustVisit(from)
	tv := d.mustVisit(to)
	return d.locations.Distance(ctx, fv.Location, tv.Location)
}

// LocationDistance returns the travel time in seconds between two raw
// locations, filling the shared location cache on first use. It exists for
// callers (e.g. the validator) that check travel time between visits that
// may no longer have live nodes in this Data.
func (d *Data) LocationDistance(ctx context.Context, a, b domain.Location) (int64, error) {
	return d.locations.Distance(ctx, a, b)
}

// ServiceTime returns node n's visit's service duration in seconds, 0 for
// the depot.
func (d *Data) ServiceTime(n NodeIndex) int64 {
	if n == Depot {
		return 0
	}
	return int64(d.mustVisit(n).ServiceDuration.Seconds())
}

// ServicePlusTravelTime returns ServiceTime(from) + Distance(from, to), 0
// when from is the depot.
func (d *Data) ServicePlusTravelTime(ctx context.Context, from, to NodeIndex) (int64, error) {
	if from == Depot {
		return 0, nil
	}
	dist, err := d.Distance(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return d.ServiceTime(from) + dist, nil
}

// GetNodes returns the nodes allocated to the visit with the given id: one
// node for a single-carer visit, two for a two-carer visit.
func (d *Data) GetNodes(visitID int64) []NodeIndex {
	return d.visitNodes[visitID]
}

// NodeToVisit returns the CalendarVisit node n resolves to. It returns false
// for the depot.
func (d *Data) NodeToVisit(n NodeIndex) (domain.CalendarVisit, bool) {
	if n == Depot {
		return domain.CalendarVisit{}, false
	}
	idx := d.nodeVisit[n]
	if idx < 0 {
		return domain.CalendarVisit{}, false
	}
	return d.visits[idx], true
}

func (d *Data) mustVisit(n NodeIndex) domain.CalendarVisit {
	v, ok := d.NodeToVisit(n)
	if !ok {
		panic(fmt.Sprintf("problem: node %d has no visit", n))
	}
	return v
}

// Contains reports whether a visit with the given id was allocated nodes in
// this problem.
func (d *Data) Contains(visitID int64) bool {
	_, ok := d.visitNodes[visitID]
	return ok
}

// Visits returns the distinct visits in the problem, in allocation order.
func (d *Data) Visits() []domain.CalendarVisit {
	return d.visits
}

// DroppedVisitPenalty returns the default per-visit cost of leaving a visit
// unassigned: the sum of the three largest travel times in the matrix, or 1
// if the matrix is empty.
func (d *Data) DroppedVisitPenalty() int64 {
	return d.droppedVisitPenalty
}
