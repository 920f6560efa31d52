// Package delay models the probability and cost of visits running late.
// A History accumulates observed service durations as visits complete; a
// Tracker resamples duration scenarios over a committed route and
// recomputes, lazily and cached by path signature, each node's delay
// across those scenarios. DelayProbabilityConstraint and
// DelayRiskinessConstraint turn that delay matrix into the two scalar
// scores the delay-reduction solver variants optimise for.
package delay
