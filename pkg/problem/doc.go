// Package problem builds ProblemData, the solver-facing derived view over a
// set of carers and calendar visits: the depot/visit node mapping, the
// scheduling horizon, and the travel-time/service-time helpers the CP
// engine's constraints are built from. ProblemData is built once per problem
// and shared read-only across every stage of the pipeline.
package problem
