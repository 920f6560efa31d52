package ioformat

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// solutionDocument is the wire shape of a solution file: a flat list of
// visits, per spec.md §6.
type solutionDocument struct {
	Visits []solutionVisitDoc `json:"visits"`
}

type solutionVisitDoc struct {
	Cancelled *bool        `json:"cancelled,omitempty"`
	Carer     *carerIDDoc  `json:"carer,omitempty"`
	CheckIn   *string      `json:"check_in,omitempty"`
	CheckOut  *string      `json:"check_out,omitempty"`
	Date      string       `json:"date"`
	Time      string       `json:"time"`
	Duration  string       `json:"duration"`
	Visit     *int64       `json:"visit,omitempty"`
}

// EncodeSolution writes sol as a solution document.
func EncodeSolution(w io.Writer, sol domain.Solution) error {
	doc := solutionDocument{}
	for _, sv := range sol.Visits {
		doc.Visits = append(doc.Visits, encodeScheduledVisit(sv))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("ioformat: encode solution document: %w", err)
	}
	return nil
}

func encodeScheduledVisit(sv domain.ScheduledVisit) solutionVisitDoc {
	doc := solutionVisitDoc{
		Date:     sv.PlannedStart.Format(dateLayout),
		Time:     sv.PlannedStart.Format("15:04:05"),
		Duration: fmt.Sprintf("%d", int64(sv.PlannedDuration.Seconds())),
	}
	if sv.Visit.ID != 0 {
		id := sv.Visit.ID
		doc.Visit = &id
	}
	if sv.Status == domain.VisitCancelled {
		cancelled := true
		doc.Cancelled = &cancelled
	}
	if sv.CarerID != "" {
		doc.Carer = &carerIDDoc{SapNumber: sv.CarerID}
	}
	if sv.CheckIn != nil {
		s := sv.CheckIn.Format(timestampLayout)
		doc.CheckIn = &s
	}
	if sv.CheckOut != nil {
		s := sv.CheckOut.Format(timestampLayout)
		doc.CheckOut = &s
	}
	return doc
}

// DecodeSolution parses a solution document. Visit references are resolved
// against visits, the CalendarVisit set the solution was produced against
// (typically problem.Data.Visits()); an entry referencing an id not present
// in visits is reported as an error rather than silently dropped.
func DecodeSolution(r io.Reader, visits []domain.CalendarVisit) (domain.Solution, error) {
	byID := make(map[int64]domain.CalendarVisit, len(visits))
	for _, v := range visits {
		byID[v.ID] = v
	}

	var doc solutionDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Solution{}, fmt.Errorf("ioformat: decode solution document: %w", err)
	}

	sol := domain.Solution{}
	for _, d := range doc.Visits {
		sv, err := decodeScheduledVisit(d, byID)
		if err != nil {
			return domain.Solution{}, err
		}
		sol.Visits = append(sol.Visits, sv)
	}
	return sol, nil
}

func decodeScheduledVisit(d solutionVisitDoc, byID map[int64]domain.CalendarVisit) (domain.ScheduledVisit, error) {
	sv := domain.ScheduledVisit{Status: domain.VisitUnknown}

	if d.Visit != nil {
		cv, ok := byID[*d.Visit]
		if !ok {
			return domain.ScheduledVisit{}, fmt.Errorf("ioformat: solution references unknown visit %d", *d.Visit)
		}
		sv.Visit = cv
	}

	start, err := parseDateTime(d.Date, d.Time)
	if err != nil {
		return domain.ScheduledVisit{}, fmt.Errorf("ioformat: solution visit %v: %w", d.Visit, err)
	}
	sv.PlannedStart = start

	var seconds int64
	if _, err := fmt.Sscanf(d.Duration, "%d", &seconds); err != nil {
		return domain.ScheduledVisit{}, fmt.Errorf("ioformat: solution visit %v: parse duration %q: %w", d.Visit, d.Duration, err)
	}
	sv.PlannedDuration = time.Duration(seconds) * time.Second

	if d.Cancelled != nil && *d.Cancelled {
		sv.Status = domain.VisitCancelled
	}
	if d.Carer != nil {
		sv.CarerID = d.Carer.SapNumber
		if sv.Status == domain.VisitUnknown {
			sv.Status = domain.VisitOk
		}
	}
	if d.CheckIn != nil {
		t, err := time.Parse(timestampLayout, *d.CheckIn)
		if err != nil {
			return domain.ScheduledVisit{}, fmt.Errorf("ioformat: solution visit %v: parse check_in: %w", d.Visit, err)
		}
		sv.CheckIn = &t
	}
	if d.CheckOut != nil {
		t, err := time.Parse(timestampLayout, *d.CheckOut)
		if err != nil {
			return domain.ScheduledVisit{}, fmt.Errorf("ioformat: solution visit %v: parse check_out: %w", d.Visit, err)
		}
		sv.CheckOut = &t
	}

	return sv, nil
}
