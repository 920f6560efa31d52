package problem

import (
	"fmt"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// BenchmarkConfig parameterizes a synthetic problem instance: how many
// carers and visits to generate, and the shape of the grid visits are
// scattered over.
type BenchmarkConfig struct {
	Carers          int
	Visits          int
	TwoCarerVisits  int // how many of Visits require two carers, <= Visits
	Day             time.Time
	GridStepDegrees float64 // spacing between generated locations
	VisitDuration   time.Duration
	WindowSlack     time.Duration
	ShiftStart      time.Duration // offset from midnight
	ShiftLength     time.Duration
}

// GenerateBenchmark builds a deterministic synthetic problem: carers with
// identical single-shift diaries (ShiftLength, 8h by default), and visits
// laid out on a grid of locations with evenly spaced preferred start times. It
// exists for load-testing the solver and for scenario tests that do not
// need a real loaded problem.
func GenerateBenchmark(cfg BenchmarkConfig) ([]domain.Carer, []domain.CalendarVisit, error) {
	if cfg.Carers <= 0 || cfg.Visits <= 0 {
		return nil, nil, fmt.Errorf("problem: benchmark requires at least one carer and one visit")
	}
	if cfg.TwoCarerVisits > cfg.Visits {
		return nil, nil, fmt.Errorf("problem: two-carer visit count %d exceeds total visits %d", cfg.TwoCarerVisits, cfg.Visits)
	}
	day := cfg.Day
	if day.IsZero() {
		day = time.Now()
	}
	day = startOfDay(day)

	step := cfg.GridStepDegrees
	if step == 0 {
		step = 0.01
	}
	visitDuration := cfg.VisitDuration
	if visitDuration == 0 {
		visitDuration = 30 * time.Minute
	}
	windowSlack := cfg.WindowSlack
	if windowSlack == 0 {
		windowSlack = 15 * time.Minute
	}
	shiftStart := cfg.ShiftStart
	shiftLength := cfg.ShiftLength
	if shiftLength == 0 {
		shiftLength = 8 * time.Hour
	}

	carers := make([]domain.Carer, cfg.Carers)
	for i := range carers {
		begin := day.Add(shiftStart)
		carers[i] = domain.Carer{
			ID:       fmt.Sprintf("carer-%03d", i),
			Mobility: domain.MobilityVehicle,
			Skills:   []string{"general"},
			Diary: domain.NewDiary(day, []domain.Event{
				{Begin: begin, End: begin.Add(shiftLength)},
			}),
		}
	}

	visits := make([]domain.CalendarVisit, cfg.Visits)
	spacing := shiftLength / time.Duration(cfg.Visits+1)
	for i := range visits {
		row := i / 10
		col := i % 10
		loc := domain.NewLocation(51.5+float64(row)*step, -0.1+float64(col)*step)
		carerCount := 1
		if i < cfg.TwoCarerVisits {
			carerCount = 2
		}
		visits[i] = domain.CalendarVisit{
			ID:                 int64(i + 1),
			ServiceUser:        domain.ServiceUser{ID: fmt.Sprintf("user-%03d", i), Location: loc},
			Location:           loc,
			PreferredStart:     day.Add(shiftStart).Add(spacing * time.Duration(i+1)),
			WindowSlack:        windowSlack,
			ServiceDuration:    visitDuration,
			RequiredCarerCount: carerCount,
			RequiredSkills:     []string{"general"},
		}
	}

	return carers, visits, nil
}
