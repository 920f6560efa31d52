// Package metrics defines the Prometheus instrumentation for the
// scheduling pipeline: problem-shape gauges, per-stage solve duration and
// dropped-visit/objective gauges, location-cache hit/miss counters, and
// validator/warm-start counters. Handler exposes them for scraping; no
// command in cmd/homeplan mounts it.
package metrics
