package warmstart

import (
	"sync"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/metrics"
)

// Repository is the in-process, append-only store of improving solutions a
// running solve produces (spec.md §4.7's SolutionRepository). It is
// protected by a single mutex — contention is only ever between the search
// loop and whichever monitor calls Store, never across goroutines running
// concurrent solves, since the pipeline is single-threaded (spec.md §5).
type Repository struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is one improving solution Repository has retained, in the order it
// was found.
type Entry struct {
	Assignment *cpengine.Assignment
	Cost       int64
	Dropped    int
}

// NewRepository returns an empty Repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Store appends a to the repository if it strictly improves on the current
// best (fewer dropped visits, or equal dropped visits and strictly lower
// cost — the same monotonic-improvement rule spec.md §8 invariant 9 and
// pkg/cpengine's MinDroppedVisitsSolutionCollector apply). It reports
// whether the entry was accepted.
func (r *Repository) Store(a *cpengine.Assignment, cost int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := a.DroppedCount()
	if len(r.entries) > 0 {
		best := r.entries[len(r.entries)-1]
		if dropped > best.Dropped || (dropped == best.Dropped && cost >= best.Cost) {
			return false
		}
	}
	r.entries = append(r.entries, Entry{Assignment: a.Clone(), Cost: cost, Dropped: dropped})
	metrics.WarmStartStores.Inc()
	return true
}

// OnSolution implements cpengine.SearchMonitor so a Repository can be
// registered directly as a solve monitor, per spec.md §4.4's SecondStepSolver
// ("a SolutionRepository ... updated by the log monitor").
func (r *Repository) OnSolution(a *cpengine.Assignment, cost int64) {
	r.Store(a, cost)
}

// Best returns the most recently accepted (and therefore best) entry, and
// whether the repository has accepted anything yet.
func (r *Repository) Best() (*cpengine.Assignment, int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil, 0, false
	}
	best := r.entries[len(r.entries)-1]
	return best.Assignment, best.Cost, true
}

// History returns every improving entry the repository has retained, in the
// order it was found.
func (r *Repository) History() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
