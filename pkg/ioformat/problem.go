package ioformat

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// problemDocument is the wire shape of a problem file: service_users,
// visits and carers, per spec.md §6.
type problemDocument struct {
	ServiceUsers []serviceUserDoc  `json:"service_users"`
	Visits       []visitGroupDoc   `json:"visits"`
	Carers       []carerGroupDoc   `json:"carers"`
}

type addressDoc struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	City         string `json:"city"`
	PostCode     string `json:"post_code"`
}

type preferencePair struct {
	CarerID string
	Weight  float64
}

// UnmarshalJSON reads a preference pair from its wire shape, a 2-element
// array: [carer_id, weight].
func (p *preferencePair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ioformat: decode carer_preference pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.CarerID); err != nil {
		return fmt.Errorf("ioformat: decode carer_preference carer id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Weight); err != nil {
		return fmt.Errorf("ioformat: decode carer_preference weight: %w", err)
	}
	return nil
}

type serviceUserDoc struct {
	Key             string           `json:"key"`
	Address         addressDoc       `json:"address"`
	Location        domain.Location  `json:"location"`
	CarerPreference []preferencePair `json:"carer_preference"`
}

type visitGroupDoc struct {
	ServiceUser string    `json:"service_user"`
	Visits      []visitDoc `json:"visits"`
}

type visitDoc struct {
	Key        int64    `json:"key"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Duration   string   `json:"duration"` // seconds, as a string
	CarerCount *int     `json:"carer_count,omitempty"`
	Tasks      []string `json:"tasks,omitempty"`
}

type carerGroupDoc struct {
	Carer   carerIDDoc `json:"carer"`
	Diaries []diaryDoc `json:"diaries"`
}

type carerIDDoc struct {
	SapNumber string `json:"sap_number"`
}

type diaryDoc struct {
	Date   string     `json:"date"`
	Events []eventDoc `json:"events"`
}

type eventDoc struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

const dateLayout = "2006-01-02"
const timestampLayout = time.RFC3339

// DecodeProblem parses a problem file (spec.md §6) into the domain value
// types problem.Build consumes: the carer roster and the flattened list of
// calendar visits.
func DecodeProblem(r io.Reader) ([]domain.Carer, []domain.CalendarVisit, error) {
	var doc problemDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("ioformat: decode problem document: %w", err)
	}

	users := make(map[string]domain.ServiceUser, len(doc.ServiceUsers))
	for _, su := range doc.ServiceUsers {
		prefs := make(map[string]float64, len(su.CarerPreference))
		for _, p := range su.CarerPreference {
			prefs[p.CarerID] = p.Weight
		}
		users[su.Key] = domain.ServiceUser{
			ID:       su.Key,
			Location: su.Location,
			Address: domain.Address{
				ID:       su.Key,
				Line1:    su.Address.HouseNumber + " " + su.Address.Road,
				City:     su.Address.City,
				PostCode: su.Address.PostCode,
				Location: su.Location,
			},
			Preferences: prefs,
		}
	}

	var visits []domain.CalendarVisit
	for _, group := range doc.Visits {
		user, ok := users[group.ServiceUser]
		if !ok {
			return nil, nil, fmt.Errorf("ioformat: visit group references unknown service user %q", group.ServiceUser)
		}
		for _, v := range group.Visits {
			cv, err := decodeVisit(v, user)
			if err != nil {
				return nil, nil, err
			}
			visits = append(visits, cv)
		}
	}

	carers := make([]domain.Carer, 0, len(doc.Carers))
	for _, group := range doc.Carers {
		carer, err := decodeCarer(group)
		if err != nil {
			return nil, nil, err
		}
		carers = append(carers, carer)
	}

	return carers, visits, nil
}

func decodeVisit(v visitDoc, user domain.ServiceUser) (domain.CalendarVisit, error) {
	preferredStart, err := parseDateTime(v.Date, v.Time)
	if err != nil {
		return domain.CalendarVisit{}, fmt.Errorf("ioformat: visit %d: %w", v.Key, err)
	}
	seconds, err := strconv.ParseInt(v.Duration, 10, 64)
	if err != nil {
		return domain.CalendarVisit{}, fmt.Errorf("ioformat: visit %d: parse duration %q: %w", v.Key, v.Duration, err)
	}
	carerCount := 1
	if v.CarerCount != nil {
		carerCount = *v.CarerCount
	}
	return domain.CalendarVisit{
		ID:                 v.Key,
		ServiceUser:        user,
		Address:            user.Address,
		Location:           user.Location,
		PreferredStart:     preferredStart,
		ServiceDuration:    time.Duration(seconds) * time.Second,
		RequiredCarerCount: carerCount,
		RequiredSkills:     v.Tasks,
	}, nil
}

// decodeCarer builds a domain.Carer from a wire carer group. The pipeline
// schedules a single day at a time (spec.md §1 non-goals excludes multi-day
// scheduling), so when a carer group carries diaries for more than one
// date, the last one wins rather than merging across days.
func decodeCarer(group carerGroupDoc) (domain.Carer, error) {
	var diary domain.Diary
	for _, d := range group.Diaries {
		day, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			return domain.Carer{}, fmt.Errorf("ioformat: carer %s: parse diary date %q: %w", group.Carer.SapNumber, d.Date, err)
		}
		var events []domain.Event
		for _, e := range d.Events {
			begin, err := time.Parse(timestampLayout, e.Begin)
			if err != nil {
				return domain.Carer{}, fmt.Errorf("ioformat: carer %s: parse event begin %q: %w", group.Carer.SapNumber, e.Begin, err)
			}
			end, err := time.Parse(timestampLayout, e.End)
			if err != nil {
				return domain.Carer{}, fmt.Errorf("ioformat: carer %s: parse event end %q: %w", group.Carer.SapNumber, e.End, err)
			}
			events = append(events, domain.Event{Begin: begin, End: end})
		}
		diary = domain.NewDiary(day, events)
		if err := diary.Validate(); err != nil {
			return domain.Carer{}, fmt.Errorf("ioformat: carer %s: %w", group.Carer.SapNumber, err)
		}
	}

	return domain.Carer{
		ID:       group.Carer.SapNumber,
		Mobility: domain.MobilityVehicle,
		Diary:    diary,
	}, nil
}

func parseDateTime(date, clock string) (time.Time, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}
