// Package orchestrator drives the three-stage scheduling pipeline spec.md
// §4.5 describes: team formation and a team-level solve (stage 1), a full
// individual solve seeded from the team routes (stage 2), and a refinement
// pass (stage 3) under one of several objective variants. It also hosts the
// specialised solver compositions §4.4 names and the incremental
// enforcement loop §4.10 describes for the experimental soft-synchronised
// workflow.
package orchestrator
