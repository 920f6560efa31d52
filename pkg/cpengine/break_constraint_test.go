package cpengine

import (
	"context"
	"testing"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakConstraintEmptyRouteNoOp(t *testing.T) {
	carers, visits := simpleFixture()
	m, _ := buildModel(t, carers, visits)
	a := NewAssignment(m)

	assert.NoError(t, NewBreakConstraint(m, 0).OnPathClosed(a))
}

func TestBreakConstraintPlacesLunchBreakInIdleGap(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Diary: domain.NewDiary(day, []domain.Event{
			{Begin: day.Add(8 * time.Hour), End: day.Add(12 * time.Hour)},
			{Begin: day.Add(13 * time.Hour), End: day.Add(16 * time.Hour)},
		})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.5, -0.1), PreferredStart: day.Add(9 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1},
		{ID: 2, Location: domain.NewLocation(51.5, -0.1), PreferredStart: day.Add(14 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1},
	}
	m, data := buildModel(t, carers, visits)

	n1 := data.GetNodes(1)[0]
	n2 := data.GetNodes(2)[0]

	cumul, feasible, err := Schedule(context.Background(), m, 0, []problem.NodeIndex{n1, n2})
	require.NoError(t, err)
	require.True(t, feasible, "expected feasible route")

	a := NewAssignment(m)
	a.Routes[0] = []problem.NodeIndex{n1, n2}
	a.applyCumul(a.Routes[0], cumul)

	assert.NoError(t, NewBreakConstraint(m, 0).OnPathClosed(a), "expected the lunch gap to absorb the break")
}

func TestBreakConstraintViolationWhenNoIdleTime(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	carers := []domain.Carer{
		{ID: "c1", Diary: domain.NewDiary(day, []domain.Event{
			{Begin: day.Add(8 * time.Hour), End: day.Add(12 * time.Hour)},
			{Begin: day.Add(13 * time.Hour), End: day.Add(16 * time.Hour)},
		})},
	}
	visits := []domain.CalendarVisit{
		{ID: 1, Location: domain.NewLocation(51.5, -0.1), PreferredStart: day.Add(9 * time.Hour), WindowSlack: 15 * time.Minute, ServiceDuration: 30 * time.Minute, RequiredCarerCount: 1},
	}
	m, data := buildModel(t, carers, visits)

	// Manually force the lunch break to a length no idle gap can hold, with
	// no slack on its start.
	for i := range m.breaks[0] {
		if !m.breaks[0][i].Fixed {
			m.breaks[0][i].Duration = int64((7 * time.Hour).Seconds())
			m.breaks[0][i].Window = 0
		}
	}

	n1 := data.GetNodes(1)[0]
	cumul, feasible, err := Schedule(context.Background(), m, 0, []problem.NodeIndex{n1})
	require.NoError(t, err)
	require.True(t, feasible, "expected feasible route")

	a := NewAssignment(m)
	a.Routes[0] = []problem.NodeIndex{n1}
	a.applyCumul(a.Routes[0], cumul)

	assert.Equal(t, ErrBreakViolation, NewBreakConstraint(m, 0).OnPathClosed(a))
}

func TestMergeIntervalsCoalescesOverlaps(t *testing.T) {
	in := []interval{{begin: 0, end: 10}, {begin: 5, end: 15}, {begin: 20, end: 30}}
	out := mergeIntervals(in)
	want := []interval{{begin: 0, end: 15}, {begin: 20, end: 30}}
	assert.Equal(t, want, out)
}

func TestIdleGapsComplementsBusyWithinWindow(t *testing.T) {
	window := TimeWindow{Begin: 0, End: 100}
	busy := []interval{{begin: 20, end: 40}, {begin: 60, end: 70}}
	gaps := idleGaps(window, busy)
	want := []interval{{begin: 0, end: 20}, {begin: 40, end: 60}, {begin: 70, end: 100}}
	assert.Equal(t, want, gaps)
}

func TestSplitGapKeepsLargerRemainder(t *testing.T) {
	g := interval{begin: 0, end: 100}
	used := interval{begin: 0, end: 10} // remainder [10,100) is larger
	assert.Equal(t, interval{begin: 10, end: 100}, splitGap(g, used))

	used2 := interval{begin: 90, end: 100} // remainder [0,90) is larger
	assert.Equal(t, interval{begin: 0, end: 90}, splitGap(g, used2))
}
