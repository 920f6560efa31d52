// Package solver holds the search-observing components that sit outside
// pkg/cpengine's core search loop: a ProgressMonitor that logs and counts
// every improving solution a solve visits, and SummariseDropped, which
// turns an Assignment's raw per-node drop pattern into the distinct
// dropped-visit count a two-carer visit's paired nodes should report as
// one, not two.
package solver
