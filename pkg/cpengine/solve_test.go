package cpengine

import (
	"context"
	"testing"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveEndToEndFeasibleFixture(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Skills: []string{"general"}, Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
		{ID: "c2", Skills: []string{"general"}, Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
		{ID: "c3", Skills: []string{"general"}, Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.50, -0.10), PreferredStart: day.Add(9 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1, RequiredSkills: []string{"general"}},
		{ID: 2, Location: domain.NewLocation(51.51, -0.11), PreferredStart: day.Add(10 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1, RequiredSkills: []string{"general"}},
		{ID: 3, Location: domain.NewLocation(51.52, -0.12), PreferredStart: day.Add(11 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 2, RequiredSkills: []string{"general"}},
	}

	ctx := context.Background()
	data, err := problem.Build(ctx, carers, visits, routing.HaversineEngine{})
	require.NoError(t, err)
	model := NewModel(data, ModelParams{
		VisitTimeWindow: 15 * time.Minute,
		BreakTimeWindow: 30 * time.Minute,
		ShiftAdjustment: 10 * time.Minute,
	})

	collector := NewMinDroppedVisitsSolutionCollector()
	result, err := Solve(ctx, model, SearchParams{
		TimeLimit: 2 * time.Second,
		Limits:    []SearchLimit{NewStalledSearchLimit(500 * time.Millisecond)},
		Monitors:  []SearchMonitor{collector},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.GreaterOrEqual(t, result.Cost, int64(0))

	_, _, ok := collector.Best()
	assert.True(t, ok, "collector should have observed at least construction's solution")

	assert.True(t, syncPairsSatisfied(model, result.Best), "final solution must satisfy every two-carer visit's synchronisation invariant")

	sol := result.Best.ToSolution()
	assert.Len(t, sol.Visits, len(visits)+1, "visit 3 contributes two ScheduledVisit entries")
}

func TestSolveRespectsCancelToken(t *testing.T) {
	carers, visits := simpleFixture()
	ctx := context.Background()
	data, err := problem.Build(ctx, carers, visits, routing.HaversineEngine{})
	require.NoError(t, err)
	model := NewModel(data, ModelParams{VisitTimeWindow: 15 * time.Minute, BreakTimeWindow: 30 * time.Minute})

	token := &CancelToken{}
	token.Cancel()

	result, err := Solve(ctx, model, SearchParams{
		TimeLimit: time.Minute,
		Limits:    []SearchLimit{CancelSearchLimit{Token: token}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Iterations, "Iterations should be 0 since the token was cancelled before the loop started")
}
