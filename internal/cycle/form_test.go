package cycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

func strPtr(s string) *string { return &s }

func TestPeriodForm_OpenNew(t *testing.T) {
	f := cycle.NewPeriodForm()
	assert.Equal(t, cycle.FormClosed, f.State())

	require.NoError(t, f.OpenNew("2024-03-01"))
	assert.Equal(t, cycle.FormOpenNew, f.State())
	assert.False(t, f.IsEdit())

	got := f.Fields()
	assert.Equal(t, "2024-03-01", got.StartDate)
	assert.Empty(t, got.EndDate, "prediction must not be auto-applied")
	assert.Equal(t, cycle.FlowMedium, got.FlowIntensity)
	assert.Empty(t, got.Notes)
	assert.Equal(t, "2024-03-05", got.PredictedEnd)
}

func TestPeriodForm_OpenNew_InvalidDate(t *testing.T) {
	f := cycle.NewPeriodForm()
	assert.ErrorIs(t, f.OpenNew("2024-13-01"), cycle.ErrInvalidDate)
	assert.False(t, f.IsOpen())
}

func TestPeriodForm_UsePrediction(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-02-27"))

	assert.True(t, f.UsePrediction())
	assert.Equal(t, "2024-03-02", f.Fields().EndDate)
}

// TestPeriodForm_StartChangeRecomputesPrediction pins the chosen behavior for new entries.
func TestPeriodForm_StartChangeRecomputesPrediction(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-03-01"))

	require.NoError(t, f.SetStartDate("2024-03-10"))
	assert.Equal(t, "2024-03-14", f.Fields().PredictedEnd)

	require.NoError(t, f.SetStartDate("not a date"))
	assert.Empty(t, f.Fields().PredictedEnd)
	assert.False(t, f.UsePrediction())
}

func TestPeriodForm_OpenExisting(t *testing.T) {
	f := cycle.NewPeriodForm()
	rec := cycle.PeriodRecord{
		StartDate:     "2024-03-01",
		EndDate:       strPtr("2024-03-04"),
		FlowIntensity: cycle.FlowLight,
		Notes:         strPtr("tired"),
	}
	require.NoError(t, f.OpenExisting("2024-03-02", rec))
	assert.True(t, f.IsEdit())

	got := f.Fields()
	assert.Equal(t, "2024-03-02", got.TargetDate)
	assert.Equal(t, "2024-03-01", got.StartDate)
	assert.Equal(t, "2024-03-04", got.EndDate)
	assert.Equal(t, cycle.FlowLight, got.FlowIntensity)
	assert.Equal(t, "tired", got.Notes)
	assert.Empty(t, got.PredictedEnd, "existing records get no prediction")

	// Changing the start of an existing record never creates a suggestion.
	require.NoError(t, f.SetStartDate("2024-03-02"))
	assert.Empty(t, f.Fields().PredictedEnd)
}

// TestPeriodForm_RoundTrip opens existing records and saves without edits.
func TestPeriodForm_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   cycle.PeriodRecord
		want cycle.PeriodRecord
	}{
		{
			name: "All fields",
			in:   cycle.PeriodRecord{StartDate: "2024-03-01", EndDate: strPtr("2024-03-05"), FlowIntensity: cycle.FlowHeavy, Notes: strPtr("ok")},
			want: cycle.PeriodRecord{StartDate: "2024-03-01", EndDate: strPtr("2024-03-05"), FlowIntensity: cycle.FlowHeavy, Notes: strPtr("ok")},
		},
		{
			name: "Absent optionals",
			in:   cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowLight},
			want: cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowLight},
		},
		{
			name: "Empty optionals normalize to absent",
			in:   cycle.PeriodRecord{StartDate: "2024-03-01", EndDate: strPtr(""), FlowIntensity: cycle.FlowMedium, Notes: strPtr("  ")},
			want: cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowMedium},
		},
		{
			name: "Unset flow defaults to medium",
			in:   cycle.PeriodRecord{StartDate: "2024-03-01"},
			want: cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowMedium},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cycle.NewPeriodForm()
			require.NoError(t, f.OpenExisting(tt.in.StartDate, tt.in))

			got, err := f.Save()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, f.IsOpen())
		})
	}
}

func TestPeriodForm_SaveValidation(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(f *cycle.PeriodForm)
		wantErr error
	}{
		{"End before start", func(f *cycle.PeriodForm) { _ = f.SetEndDate("2024-02-28") }, cycle.ErrEndBeforeStart},
		{"Bad end", func(f *cycle.PeriodForm) { _ = f.SetEndDate("2024-02-30") }, cycle.ErrInvalidDate},
		{"Blank start", func(f *cycle.PeriodForm) { _ = f.SetStartDate(" ") }, cycle.ErrStartRequired},
		{"Bad start", func(f *cycle.PeriodForm) { _ = f.SetStartDate("yesterday") }, cycle.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cycle.NewPeriodForm()
			require.NoError(t, f.OpenNew("2024-03-01"))
			tt.edit(f)

			_, err := f.Save()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, f.IsOpen(), "invalid input keeps the form open")
		})
	}
}

func TestPeriodForm_SaveNormalizesBlanks(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-03-01"))
	require.NoError(t, f.SetFlow(cycle.FlowHeavy))
	require.NoError(t, f.SetNotes("   "))
	require.NoError(t, f.SetEndDate(" "))

	rec, err := f.Save()
	require.NoError(t, err)
	assert.Equal(t, cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowHeavy}, rec)
}

func TestPeriodForm_ReopenAfterSave(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-03-01"))
	require.NoError(t, f.SetNotes("keep me"))
	_, err := f.Save()
	require.NoError(t, err)

	require.True(t, f.Reopen())
	assert.Equal(t, cycle.FormOpenNew, f.State())
	assert.Equal(t, "keep me", f.Fields().Notes)

	assert.False(t, f.Reopen(), "reopen only undoes a single save")
}

func TestPeriodForm_CancelAndClosedEdits(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-03-01"))
	f.Cancel()

	assert.False(t, f.IsOpen())
	assert.False(t, f.Reopen(), "a cancelled form cannot be restored")
	assert.Equal(t, cycle.FormFields{}, f.Fields())

	assert.ErrorIs(t, f.SetStartDate("2024-03-01"), cycle.ErrFormClosed)
	assert.ErrorIs(t, f.SetEndDate("2024-03-01"), cycle.ErrFormClosed)
	assert.ErrorIs(t, f.SetFlow(cycle.FlowLight), cycle.ErrFormClosed)
	assert.ErrorIs(t, f.SetNotes("x"), cycle.ErrFormClosed)
	_, err := f.Save()
	assert.ErrorIs(t, err, cycle.ErrFormClosed)
}

func TestPeriodForm_SetFlowRejectsUnknown(t *testing.T) {
	f := cycle.NewPeriodForm()
	require.NoError(t, f.OpenNew("2024-03-01"))
	assert.ErrorIs(t, f.SetFlow("spotting"), cycle.ErrUnknownFlow)
	assert.Equal(t, cycle.FlowMedium, f.Fields().FlowIntensity)
}
