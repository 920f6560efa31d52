package orchestrator

import (
	"context"
	"time"

	"github.com/homeplan/scheduler/pkg/config"
	"github.com/homeplan/scheduler/pkg/cpengine"
	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/problem"
	"github.com/homeplan/scheduler/pkg/routing"
)

// Stage1Result is team formation and the team-level solve's output: the
// teams that were formed, and the stage-2 seed routes built by projecting
// every resolved team visit onto its two members.
type Stage1Result struct {
	Teams  []Team
	Routes [][]problem.NodeIndex
}

// RunStage1 executes the team-formation first stage: sort carers into teams,
// solve a sub-problem of only the two-carer visits over team "vehicles",
// and project the result onto a pair of individual-carer seed nodes in
// stage2Data's vehicle space. stage2Data is the full second-stage problem
// the result must seed; its vehicle ordering determines the seed routes'
// indexing. The NONE strategy returns empty routes outright, and
// SOFT_TIME_WINDOWS skips team pre-pairing, running the same sub-problem
// directly over individual carers and keeping only the pairs the search
// happened to synchronise.
func RunStage1(ctx context.Context, engine routing.RoutingEngine, carers []domain.Carer, visits []domain.CalendarVisit, stage2Data *problem.Data, params cpengine.ModelParams, cfg SolverConfig, strategy config.FirstStageStrategy) (Stage1Result, error) {
	routes := make([][]problem.NodeIndex, stage2Data.Vehicles())
	if strategy == config.FirstStageNone {
		return Stage1Result{Routes: routes}, nil
	}

	twoCarer := downgradedTwoCarerVisits(visits)
	if len(twoCarer) == 0 {
		return Stage1Result{Routes: routes}, nil
	}

	switch strategy {
	case config.FirstStageSoftTimeWindows:
		return runSoftTimeWindowsStage1(ctx, engine, carers, twoCarer, stage2Data, params, cfg)
	default:
		return runTeamsStage1(ctx, engine, carers, twoCarer, stage2Data, params, cfg)
	}
}

// downgradedTwoCarerVisits returns a copy of every two-carer visit in
// visits with RequiredCarerCount forced to 1, so a sub-problem built from
// them allocates a single node per visit — the team, or a lone individual
// under SOFT_TIME_WINDOWS, occupies one vehicle slot rather than two.
func downgradedTwoCarerVisits(visits []domain.CalendarVisit) []domain.CalendarVisit {
	var out []domain.CalendarVisit
	for _, v := range visits {
		if v.RequiredCarerCount != 2 {
			continue
		}
		downgraded := v
		downgraded.RequiredCarerCount = 1
		out = append(out, downgraded)
	}
	return out
}

func runTeamsStage1(ctx context.Context, engine routing.RoutingEngine, carers []domain.Carer, twoCarer []domain.CalendarVisit, stage2Data *problem.Data, params cpengine.ModelParams, cfg SolverConfig) (Stage1Result, error) {
	routes := make([][]problem.NodeIndex, stage2Data.Vehicles())

	teams := FormTeams(carers)
	if len(teams) == 0 {
		return Stage1Result{Routes: routes}, nil
	}

	teamCarers := make([]domain.Carer, len(teams))
	for i, t := range teams {
		teamCarers[i] = t.AsCarer()
	}

	subData, err := problem.Build(ctx, teamCarers, twoCarer, engine)
	if err != nil {
		return Stage1Result{}, err
	}

	subParams := params
	subParams.BreakTimeWindow = 0

	subModel := cpengine.NewModel(subData, subParams)
	result, err := SingleStepSolver(ctx, subModel, nil, cfg)
	if err != nil {
		return Stage1Result{}, err
	}

	for teamVehicle, route := range result.Best.Routes {
		team := teams[teamVehicle]
		projectTeamRoute(subData, stage2Data, route, result.Best.Cumul, team.A, team.B, routes)
	}

	return Stage1Result{Teams: teams, Routes: routes}, nil
}

// runSoftTimeWindowsStage1 solves the same downgraded sub-problem directly
// over individual carers instead of pre-paired teams, then keeps only the
// visits whose two chosen members are in fact available at the same
// moment — standing in for a soft desynchronisation penalty the local
// search engine has no propagator for.
func runSoftTimeWindowsStage1(ctx context.Context, engine routing.RoutingEngine, carers []domain.Carer, twoCarer []domain.CalendarVisit, stage2Data *problem.Data, params cpengine.ModelParams, cfg SolverConfig) (Stage1Result, error) {
	routes := make([][]problem.NodeIndex, stage2Data.Vehicles())

	subData, err := problem.Build(ctx, carers, twoCarer, engine)
	if err != nil {
		return Stage1Result{}, err
	}

	subParams := params
	subModel := cpengine.NewModel(subData, subParams)
	result, err := SingleStepSolver(ctx, subModel, nil, cfg)
	if err != nil {
		return Stage1Result{}, err
	}

	// Pick, for every assigned visit, a partner carer whose diary is also
	// available at that visit's arrival time; any carer clears the bar
	// since there is no team structure to respect here.
	for vehicle, route := range result.Best.Routes {
		member := subData.Carer(vehicle)
		for _, n := range route {
			v, ok := subData.NodeToVisit(n)
			if !ok {
				continue
			}
			arrival := stage2Data.StartHorizon().Add(secondsToDuration(result.Best.Cumul[n]))
			partner, ok := findAvailablePartner(carers, member, arrival)
			if !ok {
				continue
			}
			projectVisit(stage2Data, v.ID, member, partner, routes)
		}
	}

	return Stage1Result{Routes: routes}, nil
}

func findAvailablePartner(carers []domain.Carer, member domain.Carer, at time.Time) (domain.Carer, bool) {
	for _, c := range carers {
		if c.ID == member.ID {
			continue
		}
		if c.Diary.IsAvailable(at, 0) && member.Diary.IsAvailable(at, 0) {
			return c, true
		}
	}
	return domain.Carer{}, false
}

func projectTeamRoute(subData, stage2Data *problem.Data, route []problem.NodeIndex, cumul []int64, a, b domain.Carer, routes [][]problem.NodeIndex) {
	for _, n := range route {
		v, ok := subData.NodeToVisit(n)
		if !ok {
			continue
		}
		arrival := stage2Data.StartHorizon().Add(secondsToDuration(cumul[n]))
		if !a.Diary.IsAvailable(arrival, 0) || !b.Diary.IsAvailable(arrival, 0) {
			continue
		}
		projectVisit(stage2Data, v.ID, a, b, routes)
	}
}

func projectVisit(stage2Data *problem.Data, visitID int64, a, b domain.Carer, routes [][]problem.NodeIndex) {
	stageNodes := stage2Data.GetNodes(visitID)
	if len(stageNodes) != 2 {
		return
	}
	va := findVehicle(stage2Data, a.ID)
	vb := findVehicle(stage2Data, b.ID)
	if va < 0 || vb < 0 {
		return
	}
	routes[va] = append(routes[va], stageNodes[0])
	routes[vb] = append(routes[vb], stageNodes[1])
}

func findVehicle(data *problem.Data, carerID string) int {
	for v := 0; v < data.Vehicles(); v++ {
		if data.Carer(v).ID == carerID {
			return v
		}
	}
	return -1
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
