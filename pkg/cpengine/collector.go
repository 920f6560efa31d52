package cpengine

// SolutionCollector is a SearchMonitor specialised to retain some subset of
// solutions the search visits.
type SolutionCollector interface {
	SearchMonitor
	Best() (*Assignment, int64, bool)
}

// MinDroppedVisitsSolutionCollector retains a single solution: the one with
// the fewest dropped visits, breaking ties by strictly lower cost.
type MinDroppedVisitsSolutionCollector struct {
	best        *Assignment
	bestDropped int
	bestCost    int64
	has         bool
}

// NewMinDroppedVisitsSolutionCollector returns an empty collector.
func NewMinDroppedVisitsSolutionCollector() *MinDroppedVisitsSolutionCollector {
	return &MinDroppedVisitsSolutionCollector{}
}

// OnSolution implements SearchMonitor.
func (c *MinDroppedVisitsSolutionCollector) OnSolution(a *Assignment, cost int64) {
	dropped := a.DroppedCount()
	if !c.has || dropped < c.bestDropped || (dropped == c.bestDropped && cost < c.bestCost) {
		c.best = a.Clone()
		c.bestDropped = dropped
		c.bestCost = cost
		c.has = true
	}
}

// Best returns the retained solution, its cost, and whether any solution
// has been observed yet.
func (c *MinDroppedVisitsSolutionCollector) Best() (*Assignment, int64, bool) {
	return c.best, c.bestCost, c.has
}

// SolutionLogMonitor watches a sliding window of the last few dropped-visit
// counts and signals the search should stop once the window's minimum does
// not appear among its last cutOffThreshold entries — a plateau heuristic
// for giving up on a stalled search rather than running out the full time
// budget.
type SolutionLogMonitor struct {
	windowSize      int
	cutOffThreshold int

	window       []int
	bestDropped  int
	sinceBest    int
	hasSolution  bool
}

// NewSolutionLogMonitor returns a monitor with a window of the last 5
// dropped-visit counts and a cut-off threshold of 2, per the scheduling
// pipeline's plateau heuristic.
func NewSolutionLogMonitor() *SolutionLogMonitor {
	return &SolutionLogMonitor{windowSize: 5, cutOffThreshold: 2}
}

// OnSolution implements SearchMonitor.
func (m *SolutionLogMonitor) OnSolution(a *Assignment, _ int64) {
	dropped := a.DroppedCount()
	m.window = append(m.window, dropped)
	if len(m.window) > m.windowSize {
		m.window = m.window[len(m.window)-m.windowSize:]
	}

	if !m.hasSolution || dropped < m.bestDropped {
		m.bestDropped = dropped
		m.hasSolution = true
		m.sinceBest = 0
	} else {
		m.sinceBest++
	}
}

// ShouldStop reports whether the minimum dropped-visit count has not been
// observed again within the last cutOffThreshold solutions.
func (m *SolutionLogMonitor) ShouldStop() bool {
	if len(m.window) <= m.cutOffThreshold {
		return false
	}
	lowest := m.window[0]
	for _, d := range m.window {
		if d < lowest {
			lowest = d
		}
	}
	for _, d := range m.window[len(m.window)-m.cutOffThreshold:] {
		if d == lowest {
			return false
		}
	}
	return true
}

// Check implements SearchLimit so SolutionLogMonitor can double as a stop
// condition in the search loop.
func (m *SolutionLogMonitor) Check() bool {
	return m.ShouldStop()
}
