// Package routing holds the travel-time matrix: a deduplicated set of
// locations, a lazily filled symmetric distance matrix in integer seconds,
// and the RoutingEngine abstraction used to fill matrix cells that have not
// been asked for yet (a local Haversine estimator, or an HTTP call to an
// external routing service). ProblemData builds its travel-time and
// service-plus-travel callbacks on top of a warmed LocationCache.
package routing
