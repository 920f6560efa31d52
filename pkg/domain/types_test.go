package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarerHasSkills(t *testing.T) {
	c := Carer{ID: "c1", Skills: []string{"medication", "dementia"}}

	assert.True(t, c.HasSkills([]string{"medication"}), "expected carer to satisfy a subset of held skills")
	assert.True(t, c.HasSkills(nil), "expected carer to satisfy an empty skill requirement")
	assert.False(t, c.HasSkills([]string{"medication", "hoist"}), "expected carer to fail a requirement it does not fully hold")
}

func TestServiceUserPreferenceForDefaultsZero(t *testing.T) {
	u := ServiceUser{ID: "u1", Preferences: map[string]float64{"c1": 0.8}}

	assert.Equal(t, 0.8, u.PreferenceFor("c1"))
	assert.Zero(t, u.PreferenceFor("unknown"))
}

func TestSolutionByCarerGroupsAndPreservesOrder(t *testing.T) {
	sol := Solution{Visits: []ScheduledVisit{
		{Status: VisitOk, CarerID: "c1", Visit: CalendarVisit{ID: 1}},
		{Status: VisitOk, CarerID: "c2", Visit: CalendarVisit{ID: 2}},
		{Status: VisitOk, CarerID: "c1", Visit: CalendarVisit{ID: 3}},
		{Status: VisitUnknown, CarerID: "", Visit: CalendarVisit{ID: 4}},
	}}

	routes := sol.ByCarer()
	require.Len(t, routes, 2)
	assert.Equal(t, "c1", routes[0].CarerID)
	assert.Len(t, routes[0].Visits, 2)
	assert.Equal(t, "c2", routes[1].CarerID)
	assert.Len(t, routes[1].Visits, 1)
}

func TestSolutionDropped(t *testing.T) {
	sol := Solution{Visits: []ScheduledVisit{
		{Status: VisitOk, CarerID: "c1", Visit: CalendarVisit{ID: 1}},
		{Status: VisitUnknown, CarerID: "", Visit: CalendarVisit{ID: 2}},
	}}

	dropped := sol.Dropped()
	require.Len(t, dropped, 1)
	assert.EqualValues(t, 2, dropped[0].Visit.ID)
}

func TestScheduledVisitPlannedEnd(t *testing.T) {
	sv := ScheduledVisit{PlannedStart: day(9, 0), PlannedDuration: 30 * time.Minute}
	assert.True(t, sv.PlannedEnd().Equal(day(9, 30)))
}
