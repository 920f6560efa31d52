package problem

import (
	"fmt"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// HumanSchedule records which carers a human planner historically assigned
// to each visit on a single day, for comparing against the solver's own
// assignment (e.g. a declined-visit evaluation pass).
type HumanSchedule struct {
	Date     time.Time
	byVisit  map[int64][]string
}

// NewHumanSchedule builds a HumanSchedule from a solved Solution. All
// assigned visits must fall on the same calendar day.
func NewHumanSchedule(sol domain.Solution) (HumanSchedule, error) {
	h := HumanSchedule{byVisit: make(map[int64][]string)}

	for _, sv := range sol.Visits {
		if !sv.Assigned() {
			continue
		}
		day := startOfDay(sv.PlannedStart)
		if h.Date.IsZero() {
			h.Date = day
		} else if !h.Date.Equal(day) {
			return HumanSchedule{}, fmt.Errorf("problem: human schedule spans more than one day: %s and %s", h.Date, day)
		}
		h.byVisit[sv.Visit.ID] = append(h.byVisit[sv.Visit.ID], sv.CarerID)
	}

	return h, nil
}

// FindVisit returns the carers the human planner assigned to visitID, or
// nil if the planner left it unassigned.
func (h HumanSchedule) FindVisit(visitID int64) []string {
	return h.byVisit[visitID]
}
