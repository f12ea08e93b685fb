package cycle_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

func TestIndexAnnotations(t *testing.T) {
	idx, err := cycle.IndexAnnotations([]cycle.DayAnnotation{
		{Date: "2024-03-01", IsPeriod: true},
		{Date: "2024-03-02"},
	})
	require.NoError(t, err)
	assert.Len(t, idx, 2)
	assert.NotNil(t, idx.Lookup("2024-03-01"))
	assert.Nil(t, idx.Lookup("2024-03-03"))

	var empty cycle.Annotations
	assert.Nil(t, empty.Lookup("2024-03-01"), "nil index is a valid empty month")
}

func TestIndexAnnotations_Rejects(t *testing.T) {
	_, err := cycle.IndexAnnotations([]cycle.DayAnnotation{{Date: "2024-03-01"}, {Date: "2024-03-01"}})
	assert.ErrorIs(t, err, cycle.ErrDuplicateDate)

	_, err = cycle.IndexAnnotations([]cycle.DayAnnotation{{Date: "03/01/2024"}})
	assert.ErrorIs(t, err, cycle.ErrInvalidDate)

	_, err = cycle.IndexAnnotations([]cycle.DayAnnotation{{Date: "2024-03-01", FlowIntensity: "torrential"}})
	assert.ErrorIs(t, err, cycle.ErrUnknownFlow)
}

func TestAnnotations_PeriodAt(t *testing.T) {
	idx := cycle.Annotations{
		"2024-03-01": {Date: "2024-03-01", IsPeriod: true, FlowIntensity: cycle.FlowHeavy, Notes: "n"},
		"2024-03-02": {Date: "2024-03-02", IsPeriod: true},
		"2024-03-14": {Date: "2024-03-14", IsOvulation: true, Notes: "not a period"},
	}

	rec, ok := idx.PeriodAt("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", rec.StartDate)
	assert.Equal(t, cycle.FlowHeavy, rec.FlowIntensity)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "n", *rec.Notes)
	assert.Nil(t, rec.EndDate)

	rec, ok = idx.PeriodAt("2024-03-02")
	require.True(t, ok)
	assert.Equal(t, cycle.FlowMedium, rec.FlowIntensity)
	assert.Nil(t, rec.Notes)

	_, ok = idx.PeriodAt("2024-03-14")
	assert.False(t, ok, "only period days are editable records")
	_, ok = idx.PeriodAt("2024-03-20")
	assert.False(t, ok)
}

// TestDayAnnotation_DecodeNulls mirrors the backend, which emits null for unset optionals.
func TestDayAnnotation_DecodeNulls(t *testing.T) {
	raw := `{"date":"2024-03-05","phase":"luteal","is_period":false,"is_predicted_period":null,
		"is_ovulation":false,"is_fertile":null,"flow_intensity":null,"notes":null}`

	var a cycle.DayAnnotation
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.NoError(t, a.Validate())
	assert.Equal(t, cycle.PhaseLuteal, a.Phase)
	assert.False(t, a.IsPredictedPeriod)
	assert.Empty(t, a.FlowIntensity)
}

func TestPeriodRecord_EncodesNulls(t *testing.T) {
	rec := cycle.PeriodRecord{StartDate: "2024-03-01", FlowIntensity: cycle.FlowMedium}
	body, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_date":"2024-03-01","end_date":null,"flow_intensity":"medium","notes":null}`, string(body))
}

func TestParseFlowIntensity(t *testing.T) {
	f, err := cycle.ParseFlowIntensity(" Heavy ")
	require.NoError(t, err)
	assert.Equal(t, cycle.FlowHeavy, f)

	_, err = cycle.ParseFlowIntensity("none")
	assert.ErrorIs(t, err, cycle.ErrUnknownFlow)
}

func TestPrediction_Regularity(t *testing.T) {
	tests := []struct {
		label string
		want  cycle.Regularity
	}{
		{"Regular", cycle.RegularityRegular},
		{"Somewhat Regular", cycle.RegularitySomewhat},
		{"Irregular", cycle.RegularityIrregular},
		{"Not enough data", cycle.RegularityUnknown},
		{"Unknown", cycle.RegularityUnknown},
		{"", cycle.RegularityUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, cycle.Prediction{CycleRegularity: tt.label}.Regularity())
		})
	}
}

func TestPrediction_Validate(t *testing.T) {
	assert.NoError(t, cycle.Prediction{}.Validate())
	assert.NoError(t, cycle.Prediction{NextPeriodStart: "2024-04-01", NextOvulation: "2024-03-18"}.Validate())
	assert.ErrorIs(t, cycle.Prediction{NextOvulation: "soon"}.Validate(), cycle.ErrInvalidDate)
}
