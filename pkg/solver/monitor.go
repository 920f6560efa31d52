package solver

import (
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/metrics"
	"github.com/homeplan/scheduler/pkg/problem"
)

// ProgressMonitor logs and counts every improving solution a solve visits,
// ported from the original engine's ProgressPrinterMonitor: one structured
// log line per improvement, carrying cost, the corrected dropped-visit
// count SummariseDropped computes, and the cost delta from the previous
// improvement.
type ProgressMonitor struct {
	model *cpengine.Model
	stage string

	hasSolution bool
	lastCost    int64
	solutions   int
}

// NewProgressMonitor returns a ProgressMonitor that reports against model
// and tags its log lines and metrics with stage (e.g. "stage1", "stage2",
// "stage3", "team-formation").
func NewProgressMonitor(model *cpengine.Model, stage string) *ProgressMonitor {
	return &ProgressMonitor{model: model, stage: stage}
}

// OnSolution implements cpengine.SearchMonitor.
func (p *ProgressMonitor) OnSolution(a *cpengine.Assignment, cost int64) {
	p.solutions++
	dropped := SummariseDropped(p.model, a)

	event := log.WithStage(p.stage).Info().
		Int("solution", p.solutions).
		Int64("cost", cost).
		Int("dropped_visits", dropped)
	if p.hasSolution {
		event = event.Int64("cost_delta", cost-p.lastCost)
	}
	event.Msg("improving solution found")

	p.lastCost = cost
	p.hasSolution = true
	metrics.SearchSolutionsTotal.WithLabelValues(p.stage).Inc()
}

// SummariseDropped returns the number of distinct visits dropped in a,
// correcting Assignment.DroppedCount's raw node tally for two-carer
// visits: ported from the original engine's DeclinedVisitEvaluator, which
// weights every single-carer-visit node 2 and every two-carer-visit node
// 1, sums the weights of dropped nodes, and halves the total to recover a
// per-visit count rather than a per-node one.
func SummariseDropped(model *cpengine.Model, a *cpengine.Assignment) int {
	data := model.Data
	weights := nodeWeights(data)

	var total int
	for n := problem.NodeIndex(1); int(n) < data.Nodes(); n++ {
		if a.Vehicle[n] == cpengine.UnassignedVehicle {
			total += weights[n]
		}
	}
	return total / 2
}

// nodeWeights builds the per-node weighting DeclinedVisitEvaluator uses:
// nodes belonging to a visit with a single required carer are worth 2,
// nodes belonging to a two-carer visit are worth 1, so a fully dropped
// visit of either kind contributes exactly 2 to the running total before
// it is halved.
func nodeWeights(data *problem.Data) []int {
	weights := make([]int, data.Nodes())
	for _, visit := range data.Visits() {
		nodes := data.GetNodes(visit.ID)
		weight := 2
		if len(nodes) > 1 {
			weight = 1
		}
		for _, n := range nodes {
			weights[n] = weight
		}
	}
	return weights
}
