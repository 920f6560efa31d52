package validator

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

func buildData(t *testing.T, carers []domain.Carer, visits []domain.CalendarVisit) *problem.Data {
	t.Helper()
	data, err := problem.Build(context.Background(), carers, visits, routing.HaversineEngine{})
	require.NoError(t, err, "problem.Build failed")
	return data
}

func fixture(day time.Time) ([]domain.Carer, []domain.CalendarVisit) {
	carers := []domain.Carer{
		{ID: "c1", Skills: []string{"general"}, Diary: domain.NewDiary(day, []domain.Event{
			{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)},
		})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.50, -0.10), PreferredStart: day.Add(10 * time.Hour),
			WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1, RequiredSkills: []string{"general"}},
	}
	return carers, visits
}

func TestValidateFullCleanSolutionHasNoErrors(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers, visits := fixture(day)
	data := buildData(t, carers, visits)

	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", Visit: visits[0], PlannedStart: visits[0].PreferredStart, PlannedDuration: visits[0].ServiceDuration},
	}}

	errs, err := New(data).ValidateFull(context.Background(), sol)
	require.NoError(t, err, "ValidateFull returned error")
	assert.Empty(t, errs)
}

func TestValidateFullReportsAbsentCarer(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers, visits := fixture(day)
	data := buildData(t, carers, visits)

	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "ghost", Visit: visits[0], PlannedStart: visits[0].PreferredStart, PlannedDuration: visits[0].ServiceDuration},
	}}

	errs, err := New(data).ValidateFull(context.Background(), sol)
	require.NoError(t, err, "ValidateFull returned error")
	require.Lenf(t, errs, 1, "expected a single ABSENT_CARER error, got %v", errs)
	assert.Equal(t, AbsentCarer, errs[0].Kind)
}

func TestValidateFullReportsBreakViolationWhenOutsideShift(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers, visits := fixture(day)
	data := buildData(t, carers, visits)

	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", Visit: visits[0], PlannedStart: day.Add(20 * time.Hour), PlannedDuration: visits[0].ServiceDuration},
	}}

	errs, err := New(data).ValidateFull(context.Background(), sol)
	require.NoError(t, err, "ValidateFull returned error")
	require.Lenf(t, errs, 1, "expected a single BREAK_VIOLATION error, got %v", errs)
	assert.Equal(t, BreakViolation, errs[0].Kind)
}

func TestValidateFullReportsLateArrival(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Skills: []string{"general"}, Diary: domain.NewDiary(day, []domain.Event{
			{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)},
		})},
	}
	far := domain.NewLocation(51.80, -0.80)
	near := domain.NewLocation(51.50, -0.10)
	visits := []domain.CalendarVisit{
		{ID: 1, Location: near, PreferredStart: day.Add(10 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 15 * time.Minute, RequiredCarerCount: 1},
		{ID: 2, Location: far, PreferredStart: day.Add(10*time.Hour + 16*time.Minute), WindowSlack: 15 * time.Minute, ServiceDuration: 15 * time.Minute, RequiredCarerCount: 1},
	}
	data := buildData(t, carers, visits)

	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", Visit: visits[0], PlannedStart: visits[0].PreferredStart, PlannedDuration: visits[0].ServiceDuration},
		{Status: domain.VisitOk, CarerID: "c1", Visit: visits[1], PlannedStart: visits[1].PreferredStart, PlannedDuration: visits[1].ServiceDuration},
	}}

	errs, err := New(data).ValidateFull(context.Background(), sol)
	require.NoError(t, err, "ValidateFull returned error")
	found := false
	for _, e := range errs {
		if e.Kind == LateArrival {
			found = true
		}
	}
	assert.Truef(t, found, "expected a LATE_ARRIVAL error, got %v", errs)
}

func TestValidateFullReportsNotEnoughCarers(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
		{ID: "c2", Diary: domain.NewDiary(day, []domain.Event{{Begin: day.Add(8 * time.Hour), End: day.Add(16 * time.Hour)}})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.50, -0.10), PreferredStart: day.Add(10 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 2},
	}
	data := buildData(t, carers, visits)

	sol := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", Visit: visits[0], PlannedStart: visits[0].PreferredStart, PlannedDuration: visits[0].ServiceDuration},
	}}

	errs, err := New(data).ValidateFull(context.Background(), sol)
	require.NoError(t, err, "ValidateFull returned error")
	require.Lenf(t, errs, 1, "expected a single NOT_ENOUGH_CARERS error, got %v", errs)
	assert.Equal(t, NotEnoughCarers, errs[0].Kind)
}

// TestRepairLoopMovedVisit is scenario S6: a prior solution assigns a visit
// at its old time, but the live problem has since moved it. The repair
// loop must clear the stale assignment and mark it moved so the solver can
// re-place it.
func TestRepairLoopMovedVisit(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers, visits := fixture(day)
	// The live problem now has the visit at 11:00, not the 10:00 the stale
	// solution remembers.
	visits[0].PreferredStart = day.Add(11 * time.Hour)
	data := buildData(t, carers, visits)

	stale := domain.Solution{Visits: []domain.ScheduledVisit{
		{Status: domain.VisitOk, CarerID: "c1", Visit: domain.CalendarVisit{
			ID: 1, Location: visits[0].Location, PreferredStart: day.Add(10 * time.Hour),
			WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1,
		}, PlannedStart: day.Add(10 * time.Hour), PlannedDuration: 30 * time.Minute},
	}}

	repaired, errs, err := New(data).RepairLoop(context.Background(), stale)
	require.NoError(t, err, "RepairLoop returned error")
	assert.Nilf(t, errs, "expected no leftover errors, got %v", errs)
	assert.Equal(t, domain.VisitMoved, repaired.Visits[0].Status)
	assert.Empty(t, repaired.Visits[0].CarerID, "expected carer id cleared")

	// Idempotence (invariant 10): re-validating the repaired solution finds
	// nothing further to fix, and applying the repair loop again is a
	// no-op.
	again, errsAgain, err := New(data).RepairLoop(context.Background(), repaired)
	require.NoError(t, err, "second RepairLoop returned error")
	assert.Nilf(t, errsAgain, "expected second pass to find nothing, got %v", errsAgain)
	assert.Equal(t, repaired.Visits[0].Status, again.Visits[0].Status, "second pass changed status")
}
