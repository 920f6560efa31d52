package cpengine

import (
	"sync/atomic"
	"time"
)

// SearchLimit decides whether the search loop should stop.
type SearchLimit interface {
	Check() bool
}

// SearchMonitor observes solutions as the search loop finds them. Solvers
// register monitors (a progress printer, a solution collector, a log
// monitor) before starting the search.
type SearchMonitor interface {
	OnSolution(a *Assignment, cost int64)
}

// CancelToken is a shared flag that external code (a CLI signal handler, an
// orchestrator aborting a stage) can set to request the search stop as soon
// as possible.
type CancelToken struct {
	flag atomic.Bool
}

// Cancel requests the search stop.
func (t *CancelToken) Cancel() { t.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool { return t.flag.Load() }

// CancelSearchLimit stops the search as soon as its shared token is
// cancelled.
type CancelSearchLimit struct {
	Token *CancelToken
}

// Check implements SearchLimit.
func (l CancelSearchLimit) Check() bool {
	return l.Token != nil && l.Token.Cancelled()
}

// StalledSearchLimit stops the search once too long has elapsed since the
// best objective last improved. It only engages after a first solution is
// found, so an unbounded construction phase is never cut short.
type StalledSearchLimit struct {
	Limit time.Duration

	best        int64
	hasSolution bool
	lastImprove time.Time
	now         func() time.Time
}

// NewStalledSearchLimit returns a StalledSearchLimit that stops the search
// after limit has elapsed with no improving solution.
func NewStalledSearchLimit(limit time.Duration) *StalledSearchLimit {
	return &StalledSearchLimit{Limit: limit, now: time.Now}
}

// OnSolution implements SearchMonitor.
func (l *StalledSearchLimit) OnSolution(_ *Assignment, cost int64) {
	now := l.clock()
	if !l.hasSolution || cost < l.best {
		l.best = cost
		l.hasSolution = true
		l.lastImprove = now
	}
}

// Check implements SearchLimit.
func (l *StalledSearchLimit) Check() bool {
	if !l.hasSolution {
		return false
	}
	return l.clock().Sub(l.lastImprove) > l.Limit
}

func (l *StalledSearchLimit) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}
