package cycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tartampluch/go-cycle/internal/config"
)

var (
	ErrUnknownFlow    = errors.New(config.ErrUnknownFlow)
	ErrEndBeforeStart = errors.New(config.ErrEndBeforeStart)
	ErrStartRequired  = errors.New(config.ErrStartRequired)
	ErrDuplicateDate  = errors.New(config.ErrDuplicateDate)
)

// FlowIntensity is the ordinal volume of a logged period day.
type FlowIntensity string

const (
	FlowLight  FlowIntensity = "light"
	FlowMedium FlowIntensity = "medium"
	FlowHeavy  FlowIntensity = "heavy"
)

// FlowIntensities lists the intensities in display order.
var FlowIntensities = []FlowIntensity{FlowLight, FlowMedium, FlowHeavy}

// Valid reports whether f is one of the known intensities.
func (f FlowIntensity) Valid() bool {
	switch f {
	case FlowLight, FlowMedium, FlowHeavy:
		return true
	}
	return false
}

// OrDefault returns medium when f is unset.
func (f FlowIntensity) OrDefault() FlowIntensity {
	if f == "" {
		return FlowMedium
	}
	return f
}

// ParseFlowIntensity accepts the lowercase names, case-insensitively.
func ParseFlowIntensity(s string) (FlowIntensity, error) {
	f := FlowIntensity(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFlow, s)
	}
	return f, nil
}

// Phase is the server-computed cycle phase of a day.
type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
)

// DayAnnotation is the backend's view of one calendar date. It is read-only on the client.
type DayAnnotation struct {
	Date              string        `json:"date"`
	IsPeriod          bool          `json:"is_period"`
	FlowIntensity     FlowIntensity `json:"flow_intensity,omitempty"`
	IsPredictedPeriod bool          `json:"is_predicted_period"`
	IsOvulation       bool          `json:"is_ovulation"`
	IsFertile         bool          `json:"is_fertile"`
	Phase             Phase         `json:"phase,omitempty"`
	Notes             string        `json:"notes,omitempty"`
}

// Validate checks the fields the client relies on.
func (a DayAnnotation) Validate() error {
	if _, err := ParseDate(a.Date); err != nil {
		return err
	}
	if a.FlowIntensity != "" && !a.FlowIntensity.Valid() {
		return fmt.Errorf("%w: %q on %s", ErrUnknownFlow, a.FlowIntensity, a.Date)
	}
	return nil
}

// Annotations indexes a month's annotations by YYYY-MM-DD date.
// It is built once per fetch and never mutated afterwards.
type Annotations map[string]DayAnnotation

// IndexAnnotations validates the list and rejects a date that appears twice.
func IndexAnnotations(list []DayAnnotation) (Annotations, error) {
	idx := make(Annotations, len(list))
	for _, a := range list {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := idx[a.Date]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, a.Date)
		}
		idx[a.Date] = a
	}
	return idx, nil
}

// Lookup returns the annotation for date, or nil.
func (as Annotations) Lookup(date string) *DayAnnotation {
	a, ok := as[date]
	if !ok {
		return nil
	}
	return &a
}

// PeriodAt returns the period record to edit when a logged period covers date.
// Annotations carry no record identity, so the clicked date stands in as the start.
func (as Annotations) PeriodAt(date string) (PeriodRecord, bool) {
	a, ok := as[date]
	if !ok || !a.IsPeriod {
		return PeriodRecord{}, false
	}
	rec := PeriodRecord{
		StartDate:     date,
		FlowIntensity: a.FlowIntensity.OrDefault(),
	}
	if a.Notes != "" {
		notes := a.Notes
		rec.Notes = &notes
	}
	return rec, true
}

// PeriodRecord is a user-entered period log, as posted to the backend.
type PeriodRecord struct {
	StartDate     string        `json:"start_date"`
	EndDate       *string       `json:"end_date"`
	FlowIntensity FlowIntensity `json:"flow_intensity"`
	Notes         *string       `json:"notes"`
}

// Validate enforces a parseable start, an end not before the start, and a known flow.
func (r PeriodRecord) Validate() error {
	if strings.TrimSpace(r.StartDate) == "" {
		return ErrStartRequired
	}
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return err
	}
	if r.EndDate != nil {
		end, err := ParseDate(*r.EndDate)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, *r.EndDate, r.StartDate)
		}
	}
	if !r.FlowIntensity.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFlow, r.FlowIntensity)
	}
	return nil
}

// Regularity is the server's qualitative label of cycle-length consistency.
type Regularity string

const (
	RegularityRegular   Regularity = "Regular"
	RegularitySomewhat  Regularity = "Somewhat Regular"
	RegularityIrregular Regularity = "Irregular"
	RegularityUnknown   Regularity = "unknown"
)

// Prediction is the server-computed cycle aggregate for the user.
// Empty date strings mean the server had no prediction.
type Prediction struct {
	AverageCycleLength *float64 `json:"average_cycle_length"`
	CycleRegularity    string   `json:"cycle_regularity"`
	NextPeriodStart    string   `json:"next_period_start,omitempty"`
	NextPeriodEnd      string   `json:"next_period_end,omitempty"`
	NextOvulation      string   `json:"next_ovulation,omitempty"`
	NextFertileStart   string   `json:"next_fertile_start,omitempty"`
	NextFertileEnd     string   `json:"next_fertile_end,omitempty"`
}

// Regularity maps the server label onto the known set.
// Labels such as "Not enough data" become RegularityUnknown.
func (p Prediction) Regularity() Regularity {
	switch r := Regularity(p.CycleRegularity); r {
	case RegularityRegular, RegularitySomewhat, RegularityIrregular:
		return r
	}
	return RegularityUnknown
}

// Validate checks that every present date parses.
func (p Prediction) Validate() error {
	for _, d := range []string{p.NextPeriodStart, p.NextPeriodEnd, p.NextOvulation, p.NextFertileStart, p.NextFertileEnd} {
		if d == "" {
			continue
		}
		if _, err := ParseDate(d); err != nil {
			return err
		}
	}
	return nil
}

// MonthData is everything fetched for one displayed month.
type MonthData struct {
	Month       Month
	Annotations Annotations
	Predictions Prediction
}
