package cycle

import (
	"errors"
	"strings"

	"github.com/tartampluch/go-cycle/internal/config"
)

// ErrFormClosed is returned by edits and saves on a closed form.
var ErrFormClosed = errors.New(config.ErrFormClosed)

// FormState is the lifecycle state of a PeriodForm.
type FormState int

const (
	FormClosed FormState = iota
	FormOpenNew
	FormOpenExisting
)

func (s FormState) String() string {
	switch s {
	case FormOpenNew:
		return "open_new"
	case FormOpenExisting:
		return "open_existing"
	default:
		return "closed"
	}
}

// FormFields is a copy of the editable state of a PeriodForm.
type FormFields struct {
	TargetDate    string
	StartDate     string
	EndDate       string
	FlowIntensity FlowIntensity
	Notes         string

	// PredictedEnd is a suggestion for EndDate on new entries. It is never applied implicitly.
	PredictedEnd string
}

// PeriodForm holds the transient state of the period modal.
// It performs no I/O: Save hands the record to the caller and closes.
type PeriodForm struct {
	state  FormState
	fields FormFields

	// Kept after Save so a failed persistence call can restore the form.
	saved FormState
}

// NewPeriodForm returns a closed form.
func NewPeriodForm() *PeriodForm {
	return &PeriodForm{}
}

// OpenNew prepares a new entry starting on date.
func (f *PeriodForm) OpenNew(date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	f.state = FormOpenNew
	f.saved = FormClosed
	f.fields = FormFields{
		TargetDate:    date,
		StartDate:     date,
		FlowIntensity: FlowMedium,
	}
	f.fields.PredictedEnd = predictEnd(date)
	return nil
}

// OpenExisting loads an existing record verbatim. No end date is predicted.
func (f *PeriodForm) OpenExisting(date string, rec PeriodRecord) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	f.state = FormOpenExisting
	f.saved = FormClosed
	f.fields = FormFields{
		TargetDate:    date,
		StartDate:     rec.StartDate,
		FlowIntensity: rec.FlowIntensity.OrDefault(),
	}
	if rec.EndDate != nil {
		f.fields.EndDate = *rec.EndDate
	}
	if rec.Notes != nil {
		f.fields.Notes = *rec.Notes
	}
	return nil
}

// State returns the current lifecycle state.
func (f *PeriodForm) State() FormState { return f.state }

// IsOpen reports whether the form is accepting edits.
func (f *PeriodForm) IsOpen() bool { return f.state != FormClosed }

// IsEdit reports whether the form was opened for an existing record.
func (f *PeriodForm) IsEdit() bool { return f.state == FormOpenExisting }

// Fields returns a copy of the current field values.
func (f *PeriodForm) Fields() FormFields { return f.fields }

// SetStartDate updates the start date. On a new entry the suggested end follows it;
// an unparseable start clears the suggestion.
func (f *PeriodForm) SetStartDate(date string) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}
	f.fields.StartDate = date
	if f.state == FormOpenNew {
		f.fields.PredictedEnd = predictEnd(date)
	}
	return nil
}

// SetEndDate updates the end date. Blank clears it.
func (f *PeriodForm) SetEndDate(date string) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}
	f.fields.EndDate = date
	return nil
}

// SetFlow updates the flow intensity.
func (f *PeriodForm) SetFlow(flow FlowIntensity) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}
	if !flow.Valid() {
		return ErrUnknownFlow
	}
	f.fields.FlowIntensity = flow
	return nil
}

// SetNotes updates the free-text notes.
func (f *PeriodForm) SetNotes(notes string) error {
	if !f.IsOpen() {
		return ErrFormClosed
	}
	f.fields.Notes = notes
	return nil
}

// UsePrediction copies the suggested end date into the end field.
// It reports false when there is nothing to apply.
func (f *PeriodForm) UsePrediction() bool {
	if !f.IsOpen() || f.fields.PredictedEnd == "" {
		return false
	}
	f.fields.EndDate = f.fields.PredictedEnd
	return true
}

// Save validates the fields, closes the form and returns the record to persist.
// Blank end date and notes become absent. On a validation error the form stays open.
func (f *PeriodForm) Save() (PeriodRecord, error) {
	if !f.IsOpen() {
		return PeriodRecord{}, ErrFormClosed
	}

	rec := PeriodRecord{
		StartDate:     strings.TrimSpace(f.fields.StartDate),
		FlowIntensity: f.fields.FlowIntensity.OrDefault(),
	}
	if end := strings.TrimSpace(f.fields.EndDate); end != "" {
		rec.EndDate = &end
	}
	if strings.TrimSpace(f.fields.Notes) != "" {
		notes := f.fields.Notes
		rec.Notes = &notes
	}
	if err := rec.Validate(); err != nil {
		return PeriodRecord{}, err
	}

	f.saved = f.state
	f.state = FormClosed
	return rec, nil
}

// Reopen restores the form as it was before the last Save.
// It reports false if the form was not closed by a Save.
func (f *PeriodForm) Reopen() bool {
	if f.state != FormClosed || f.saved == FormClosed {
		return false
	}
	f.state = f.saved
	f.saved = FormClosed
	return true
}

// Cancel closes the form and discards its fields.
func (f *PeriodForm) Cancel() {
	f.state = FormClosed
	f.saved = FormClosed
	f.fields = FormFields{}
}

func predictEnd(start string) string {
	end, err := AddDays(start, config.PredictedPeriodOffsetDays)
	if err != nil {
		return ""
	}
	return end
}
