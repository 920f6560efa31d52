package orchestrator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCarerFixtureModel(t *testing.T) *problem.Data {
	t.Helper()
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
		{ID: "c2", Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.50, -0.10), PreferredStart: day.Add(9 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 45 * time.Minute, RequiredCarerCount: 2},
	}
	data, err := problem.Build(context.Background(), carers, visits, routing.HaversineEngine{})
	require.NoError(t, err, "Build failed")
	return data
}

func TestRunEnforcementLoopTerminatesWithNoRelaxedPairs(t *testing.T) {
	data := twoCarerFixtureModel(t)
	model := cpengine.NewModel(data, cpengine.ModelParams{
		VisitTimeWindow: 15 * time.Minute,
		BreakTimeWindow: 15 * time.Minute,
	})

	result, err := RunEnforcementLoop(context.Background(), model, SolverConfig{TimeLimit: time.Second}, rand.New(rand.NewSource(1)))
	require.NoError(t, err, "RunEnforcementLoop failed")

	a, err := cpengine.SeedAssignment(context.Background(), model, result.Routes)
	require.NoError(t, err, "seeding final routes failed")
	assert.Empty(t, relaxedSyncPairs(model, a), "expected no relaxed pairs left")
}
