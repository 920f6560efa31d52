// Package cpengine is the routing/constraint engine the solvers build on:
// a Model assembled from problem.Data (time dimension, visit disjunctions,
// skill and synchronisation constraints, per-vehicle break intervals), an
// Assignment representing a candidate solution under construction, a
// Constraint interface constraints like BreakConstraint implement, search
// limits/monitors, and the solution collectors the search loop reports
// through. Solve combines a sequential-insertion construction phase
// with local-search improvement moves under a caller-supplied budget.
package cpengine
