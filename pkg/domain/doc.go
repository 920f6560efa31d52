// Package domain defines the immutable value types shared by every stage of
// the scheduling pipeline: locations, carers, service users, calendar
// visits, diaries, and the scheduled visits/routes/solutions a solve
// produces. Values are constructed once by a loader and never mutated after;
// downstream packages build derived, read-only views over them.
package domain
