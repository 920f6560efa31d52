package delay

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/problem"
)

// Tracker samples duration scenarios over a committed route and reports,
// for every node in that route, how much later its simulated arrival falls
// relative to the committed (planned) cumulative start — the delay[n, s]
// matrix of spec §4.6. Results are cached by the route's path signature
// (vehicle, node order, committed cumuls) so a repeated query against an
// unchanged path is free.
type Tracker struct {
	Model     *cpengine.Model
	History   *History
	Scenarios int
	Rand      *rand.Rand

	mu    sync.Mutex
	cache map[string][][]int64 // signature -> delay[routeIndex][scenario]
}

// NewTracker returns a Tracker sampling scenarios scenarios per query from
// rng, which callers own and seed themselves — the tracker never reaches
// for global randomness.
func NewTracker(model *cpengine.Model, history *History, scenarios int, rng *rand.Rand) *Tracker {
	return &Tracker{
		Model:     model,
		History:   history,
		Scenarios: scenarios,
		Rand:      rng,
		cache:     make(map[string][][]int64),
	}
}

// Delay returns the delay matrix for vehicle's committed route in a:
// delay[i][s] is route[i]'s simulated arrival in scenario s (held back to
// its time window's opening, as Schedule does) minus its committed
// (planned) cumulative start. A positive value is lateness; a
// negative or zero value means the scenario ran on time or early.
func (t *Tracker) Delay(ctx context.Context, a *cpengine.Assignment, vehicle cpengine.VehicleIndex) ([][]int64, error) {
	route := a.Routes[vehicle]
	if len(route) == 0 {
		return nil, nil
	}

	sig := pathSignature(vehicle, route, a.Cumul)

	t.mu.Lock()
	if cached, ok := t.cache[sig]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.mu.Unlock()

	delayMatrix := make([][]int64, len(route))
	for i := range delayMatrix {
		delayMatrix[i] = make([]int64, t.Scenarios)
	}

	for s := 0; s < t.Scenarios; s++ {
		departure := t.Model.VehicleWindow(vehicle).Begin
		prev := problem.Depot
		for i, n := range route {
			travel, err := t.Model.Data.Distance(ctx, prev, n)
			if err != nil {
				return nil, err
			}
			arrival := departure + travel
			if begin := t.Model.Window(n).Begin; arrival < begin {
				arrival = begin
			}
			delayMatrix[i][s] = arrival - a.Cumul[n]
			departure = arrival + t.sampleDuration(n)
			prev = n
		}
	}

	t.mu.Lock()
	t.cache[sig] = delayMatrix
	t.mu.Unlock()

	return delayMatrix, nil
}

// sampleDuration draws one duration for node n: a bootstrap resample from
// its visit's recorded History if any observations exist, otherwise the
// visit's nominal service duration (zero variance, so every scenario
// agrees with the plan).
func (t *Tracker) sampleDuration(n problem.NodeIndex) int64 {
	visit, ok := t.Model.Data.NodeToVisit(n)
	if !ok {
		return 0
	}
	obs := t.History.Observations(visit.ID)
	if len(obs) == 0 {
		return int64(visit.ServiceDuration.Seconds())
	}
	return int64(obs[t.Rand.Intn(len(obs))].Seconds())
}

func pathSignature(vehicle cpengine.VehicleIndex, route []problem.NodeIndex, cumul []int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "v%d", vehicle)
	for _, n := range route {
		fmt.Fprintf(&b, "|%d:%d", n, cumul[n])
	}
	return b.String()
}
