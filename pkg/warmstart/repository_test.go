package warmstart

import (
	"context"
	"testing"
	"time"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildModel(t *testing.T) *cpengine.Model {
	t.Helper()
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.5, -0.1), PreferredStart: day.Add(10 * time.Hour),
			WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1},
	}
	data, err := problem.Build(context.Background(), carers, visits, routing.HaversineEngine{})
	require.NoError(t, err, "problem.Build failed")
	return cpengine.NewModel(data, cpengine.ModelParams{VisitTimeWindow: 15 * time.Minute})
}

func TestRepositoryStoreKeepsOnlyImprovingSolutions(t *testing.T) {
	model := buildModel(t)
	repo := NewRepository()

	worse := cpengine.NewAssignment(model) // nothing assigned: 1 dropped
	require.True(t, repo.Store(worse, 1000), "first Store should be accepted")

	same := cpengine.NewAssignment(model)
	assert.False(t, repo.Store(same, 2000), "equal dropped count with higher cost should be rejected")

	better := cpengine.NewAssignment(model)
	better.Vehicle[1] = 0
	better.Routes[0] = []problem.NodeIndex{1}
	require.True(t, repo.Store(better, 50), "fewer dropped visits should be accepted even at different cost")

	best, cost, ok := repo.Best()
	require.True(t, ok, "expected a retained solution")
	assert.Zero(t, best.DroppedCount())
	assert.Equal(t, int64(50), cost)
	assert.Lenf(t, repo.History(), 2, "expected only improving entries retained")
}

func TestRepositoryOnSolutionImplementsSearchMonitor(t *testing.T) {
	model := buildModel(t)
	repo := NewRepository()
	var monitor cpengine.SearchMonitor = repo

	a := cpengine.NewAssignment(model)
	monitor.OnSolution(a, 10)

	_, _, ok := repo.Best()
	assert.True(t, ok, "expected OnSolution to store the solution")
}
