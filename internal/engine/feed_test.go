package engine_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/engine"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func marchData() cycle.MonthData {
	avg := 28.0
	return cycle.MonthData{
		Month: march2024,
		Annotations: cycle.Annotations{
			"2024-03-01": {Date: "2024-03-01", IsPeriod: true, FlowIntensity: cycle.FlowHeavy},
			"2024-03-02": {Date: "2024-03-02", IsPeriod: true},
			"2024-03-03": {Date: "2024-03-03", IsPeriod: true, FlowIntensity: cycle.FlowLight},
			"2024-03-14": {Date: "2024-03-14", IsOvulation: true},
			"2024-03-30": {Date: "2024-03-30", IsPeriod: true},
		},
		Predictions: cycle.Prediction{
			AverageCycleLength: &avg,
			CycleRegularity:    "Regular",
			NextPeriodStart:    "2024-03-29",
			NextPeriodEnd:      "2024-04-02",
			NextOvulation:      "2024-04-12",
			NextFertileStart:   "2024-04-07",
			NextFertileEnd:     "2024-04-13",
		},
	}
}

func decodeEvents(t *testing.T, ics []byte) map[string]ical.Event {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(ics)).Decode()
	require.NoError(t, err)

	out := map[string]ical.Event{}
	for _, e := range cal.Events() {
		start := e.Props.Get(config.PropDTStart)
		require.NotNil(t, start)
		kind, err := e.Props.Text(config.PropCategories)
		require.NoError(t, err)
		out[kind+"@"+start.Value] = e
	}
	return out
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestFeedBuilder_Build(t *testing.T) {
	b := &engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}}

	ics, count, err := b.Build(context.Background(), marchData(), engine.FeedOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, count, "two period runs, predicted period, fertile window, ovulation")

	events := decodeEvents(t, ics)
	require.Len(t, events, 5)

	run, ok := events["period@20240301"]
	require.True(t, ok, "consecutive period days merge into one event")
	end := run.Props.Get(config.PropDTEnd)
	require.NotNil(t, end)
	assert.Equal(t, "20240304", end.Value, "DTEND is exclusive")

	_, ok = events["period@20240330"]
	assert.True(t, ok, "a separate run starts after a gap")

	pred, ok := events["predicted_period@20240329"]
	require.True(t, ok)
	end = pred.Props.Get(config.PropDTEnd)
	require.NotNil(t, end)
	assert.Equal(t, "20240403", end.Value)

	_, ok = events["fertile_window@20240407"]
	assert.True(t, ok)
	_, ok = events["ovulation@20240412"]
	assert.True(t, ok)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "SUMMARY:"+config.FallbackEvtPredictedPeriod)
	assert.Contains(t, icsStr, "DTSTAMP:20240310T090000Z")
	assert.NotContains(t, icsStr, "BEGIN:VALARM", "reminders are off by default")
}

func TestFeedBuilder_Reminders(t *testing.T) {
	b := &engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}}

	ics, _, err := b.Build(context.Background(), marchData(), engine.FeedOptions{ReminderDays: 2})
	require.NoError(t, err)

	events := decodeEvents(t, ics)
	for key, e := range events {
		var alarms int
		for _, child := range e.Children {
			if child.Name == config.ICalComponent {
				alarms++
				trigger := child.Props.Get(config.PropTrigger)
				require.NotNil(t, trigger)
				assert.Equal(t, "-P2D", trigger.Value)
			}
		}
		kind, _ := e.Props.Text(config.PropCategories)
		if kind == string(engine.EventPredictedPeriod) || kind == string(engine.EventOvulation) {
			assert.Equal(t, 1, alarms, key)
		} else {
			assert.Zero(t, alarms, key)
		}
	}
}

func TestFeedBuilder_StableUIDs(t *testing.T) {
	data := marchData()
	first, _, err := (&engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}).
		Build(context.Background(), data, engine.FeedOptions{})
	require.NoError(t, err)
	second, _, err := (&engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}}).
		Build(context.Background(), data, engine.FeedOptions{})
	require.NoError(t, err)

	uids := func(ics []byte) []string {
		var out []string
		for _, e := range decodeEvents(t, ics) {
			uid, err := e.Props.Text(config.PropUID)
			require.NoError(t, err)
			assert.Contains(t, uid, "@"+config.ICalDomain)
			out = append(out, uid)
		}
		return out
	}
	assert.ElementsMatch(t, uids(first), uids(second))
}

func TestFeedBuilder_LocalizedSummary(t *testing.T) {
	b := &engine.FeedBuilder{
		Clock: engine.FixedClock{At: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		FormatSummary: func(kind engine.EventKind) string {
			if kind == engine.EventOvulation {
				return "Ovulation prévue"
			}
			return ""
		},
	}
	ics, _, err := b.Build(context.Background(), marchData(), engine.FeedOptions{})
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "SUMMARY:Ovulation prévue")
	assert.Contains(t, icsStr, "SUMMARY:"+config.FallbackEvtPeriod, "empty translations fall back")
}

func TestFeedBuilder_PredictionEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		pred      cycle.Prediction
		wantCount int
	}{
		{"Nothing predicted", cycle.Prediction{}, 0},
		{"Period without end uses default length", cycle.Prediction{NextPeriodStart: "2024-03-29"}, 1},
		{"Half open fertile window is skipped", cycle.Prediction{NextFertileStart: "2024-04-07"}, 0},
		{"Ovulation only", cycle.Prediction{NextOvulation: "2024-04-12"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}}
			ics, count, err := b.Build(context.Background(), cycle.MonthData{Month: march2024, Predictions: tt.pred}, engine.FeedOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
			if tt.wantCount == 0 {
				assert.Equal(t, config.StubVCalendar, string(ics))
			}
		})
	}

	b := &engine.FeedBuilder{Clock: engine.FixedClock{At: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}}
	ics, _, err := b.Build(context.Background(), cycle.MonthData{Month: march2024, Predictions: cycle.Prediction{NextPeriodStart: "2024-03-29"}}, engine.FeedOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(ics), "DTEND;VALUE=DATE:20240403")
}

func TestFeedBuilder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &engine.FeedBuilder{Clock: engine.FixedClock{At: time.Now()}}
	_, _, err := b.Build(ctx, marchData(), engine.FeedOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
