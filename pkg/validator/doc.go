// Package validator independently checks a solution against the hard
// constraints a solve is supposed to have respected, reporting the
// structured error taxonomy spec.md §4.9 names. It never touches the CP
// engine: it walks a domain.Solution and the problem data it was solved
// against, so a persisted solution can be validated even after the
// underlying problem has changed. RepairLoop turns a dirty solution (one
// with a stale or inconsistent assignment) into a warm start the solver can
// seed a fresh solve from: repeated validate/patch/re-validate until no
// errors remain.
package validator
