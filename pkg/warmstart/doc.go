// Package warmstart holds the two solution-persistence pieces spec.md §4.7
// and §4.5's stage 2 need: an in-process Repository that keeps the best
// improving route set a running solve has found so far, and a Store that
// persists a problem's best solution to disk so a later CLI invocation can
// seed its own solve from it (after RouteValidator's repair loop, see
// pkg/validator, has made sure it still fits the live problem).
package warmstart
