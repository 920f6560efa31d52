package orchestrator

import (
	"sort"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// minTeamOverlap is the smallest diary intersection spec.md §4.5 allows two
// carers to be paired over: below this, a pair can never jointly cover a
// two-carer visit's service duration plus slack.
const minTeamOverlap = 2*time.Hour + 15*time.Minute

// Team is two individual carers paired for the first-stage team solve: a
// synthetic carer whose diary and skills are the intersection of its two
// members'.
type Team struct {
	A, B   domain.Carer
	Diary  domain.Diary
	Skills []string
}

// AsCarer projects the team into a domain.Carer usable as a stage-1 vehicle:
// its ID concatenates both members' so it can be split back apart, and its
// mobility is inherited from the first member (stage 1 never reasons about
// mobility directly).
func (t Team) AsCarer() domain.Carer {
	return domain.Carer{
		ID:       t.A.ID + "+" + t.B.ID,
		Mobility: t.A.Mobility,
		Skills:   t.Skills,
		Diary:    t.Diary,
	}
}

// FormTeams pairs carers by largest diary overlap, descending by total
// diary duration so the carers with the most availability are matched
// first. A carer left unmatched (no partner clears minTeamOverlap) is
// dropped from the team roster; stage 1 only ever sees carers that can
// actually form a team.
func FormTeams(carers []domain.Carer) []Team {
	order := append([]domain.Carer(nil), carers...)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Diary.Duration() > order[j].Diary.Duration()
	})

	matched := make([]bool, len(order))
	var teams []Team

	for i := range order {
		if matched[i] {
			continue
		}
		best := -1
		bestOverlap := time.Duration(0)
		bestSkillShare := -1
		for j := range order {
			if j == i || matched[j] {
				continue
			}
			overlap := overlapDuration(order[i].Diary, order[j].Diary)
			if overlap < minTeamOverlap {
				continue
			}
			skillShare := len(sharedSkills(order[i].Skills, order[j].Skills))
			if overlap > bestOverlap || (overlap == bestOverlap && skillShare > bestSkillShare) {
				best = j
				bestOverlap = overlap
				bestSkillShare = skillShare
			}
		}
		if best == -1 {
			continue
		}
		matched[i] = true
		matched[best] = true
		teams = append(teams, Team{
			A:      order[i],
			B:      order[best],
			Diary:  intersectDiary(order[i].Diary, order[best].Diary),
			Skills: sharedSkills(order[i].Skills, order[best].Skills),
		})
	}

	return teams
}

func overlapDuration(a, b domain.Diary) time.Duration {
	var total time.Duration
	for _, ev := range a.Intersect(b) {
		total += ev.Duration()
	}
	return total
}

func intersectDiary(a, b domain.Diary) domain.Diary {
	events := a.Intersect(b)
	date := a.Date
	return domain.NewDiary(date, events)
}

func sharedSkills(a, b []string) []string {
	held := make(map[string]struct{}, len(a))
	for _, s := range a {
		held[s] = struct{}{}
	}
	var shared []string
	for _, s := range b {
		if _, ok := held[s]; ok {
			shared = append(shared, s)
		}
	}
	sort.Strings(shared)
	return shared
}
