package warmstart

import (
	"testing"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndLoadSolutionRoundTrips(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err, "Open failed")
	defer store.Close()

	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", PlannedStart: start, PlannedDuration: 30 * time.Minute,
			Visit: domain.CalendarVisit{ID: 1, Location: domain.NewLocation(51.5, -0.1)}},
	}}

	require.NoError(t, store.SaveSolution("problem-1", sol), "SaveSolution failed")

	loaded, ok, err := store.LoadSolution("problem-1")
	require.NoError(t, err, "LoadSolution failed")
	require.True(t, ok, "expected a saved solution")
	require.Lenf(t, loaded.Visits, 1, "loaded solution mismatch: %+v", loaded)
	assert.Equal(t, "c1", loaded.Visits[0].CarerID)
	assert.True(t, loaded.Visits[0].Visit.Location.Equal(domain.NewLocation(51.5, -0.1)), "location did not round-trip through JSON")

	route, ok, err := store.LoadRoute("problem-1", "c1")
	require.NoError(t, err, "LoadRoute failed")
	require.True(t, ok)
	require.Len(t, route.Visits, 1, "expected a single-visit route")

	_, ok, _ = store.LoadSolution("missing")
	assert.False(t, ok, "expected no solution for an unknown problem id")

	require.NoError(t, store.DeleteSolution("problem-1"), "DeleteSolution failed")
	_, ok, _ = store.LoadSolution("problem-1")
	assert.False(t, ok, "expected solution to be deleted")
	_, ok, _ = store.LoadRoute("problem-1", "c1")
	assert.False(t, ok, "expected route to be deleted")
}
