package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

// EventKind identifies what a feed event represents.
type EventKind string

const (
	EventPeriod          EventKind = "period"
	EventPredictedPeriod EventKind = "predicted_period"
	EventOvulation       EventKind = "ovulation"
	EventFertile         EventKind = "fertile_window"
)

// FeedOptions configures a single feed build.
type FeedOptions struct {
	// ReminderDays adds a DISPLAY alarm this many days before predicted events. Zero disables it.
	ReminderDays int
}

// span is an inclusive range of calendar dates.
type span struct {
	kind  EventKind
	start string
	end   string
}

// FeedBuilder renders the loaded month and its predictions as an iCalendar document.
type FeedBuilder struct {
	Clock Clock

	// FormatSummary allows the UI to inject localized event titles.
	FormatSummary func(kind EventKind) string
}

// Build returns the ICS bytes and the number of events they contain.
func (b *FeedBuilder) Build(ctx context.Context, data cycle.MonthData, opts FeedOptions) ([]byte, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMonth, data.Month.String(),
	)

	spans := append(periodRuns(data), predictionSpans(data.Predictions)...)
	if len(spans) == 0 {
		log.Debug(config.MsgFeedGenerated, config.LogKeyEvents, 0)
		return []byte(config.StubVCalendar), 0, nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(b.now().UTC())

	for _, s := range spans {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		event, err := b.createEvent(s, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", config.ErrFeedBuild, err)
		}
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Info(config.MsgFeedGenerated,
		config.LogKeyEvents, len(spans),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), len(spans), nil
}

func (b *FeedBuilder) now() time.Time {
	if b.Clock == nil {
		return time.Now()
	}
	return b.Clock.Now()
}

func (b *FeedBuilder) createEvent(s span, opts FeedOptions) (*ical.Event, error) {
	startDate, err := cycle.ParseDate(s.start)
	if err != nil {
		return nil, err
	}
	endDate, err := cycle.ParseDate(s.end)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, eventUID(s))

	summary := b.summary(s.kind)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropCategories, string(s.kind))

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(startDate)
	event.Props.Set(dtStartProp)

	// DTEND is exclusive for all-day events.
	dtEndProp := ical.NewProp(config.PropDTEnd)
	dtEndProp.SetDate(endDate.AddDate(0, 0, 1))
	event.Props.Set(dtEndProp)

	if opts.ReminderDays > 0 && (s.kind == EventPredictedPeriod || s.kind == EventOvulation) {
		addAlarm(event, reminderTrigger(opts.ReminderDays), summary)
	}
	return event, nil
}

func (b *FeedBuilder) summary(kind EventKind) string {
	if b.FormatSummary != nil {
		if s := b.FormatSummary(kind); s != "" {
			return s
		}
	}
	switch kind {
	case EventPeriod:
		return config.FallbackEvtPeriod
	case EventPredictedPeriod:
		return config.FallbackEvtPredictedPeriod
	case EventOvulation:
		return config.FallbackEvtOvulation
	default:
		return config.FallbackEvtFertile
	}
}

// eventUID is stable across rebuilds so subscribed clients update rather than duplicate events.
func eventUID(s span) string {
	input := fmt.Sprintf(config.FormatHashInput, s.kind, s.start, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

// reminderTrigger renders an ISO8601 negative day duration, e.g. "-P2D".
func reminderTrigger(days int) string {
	return config.ISONegativePrefix + strconv.Itoa(days) + config.ISODay
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// periodRuns groups consecutive logged period days into spans.
func periodRuns(data cycle.MonthData) []span {
	var dates []string
	for date, a := range data.Annotations {
		if a.IsPeriod {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	var runs []span
	for _, date := range dates {
		if n := len(runs); n > 0 {
			if next, err := cycle.AddDays(runs[n-1].end, 1); err == nil && next == date {
				runs[n-1].end = date
				continue
			}
		}
		runs = append(runs, span{kind: EventPeriod, start: date, end: date})
	}
	return runs
}

// predictionSpans converts the backend predictions into events. Incomplete ranges are skipped,
// except the predicted period which falls back to the usual period length.
func predictionSpans(p cycle.Prediction) []span {
	var out []span
	if p.NextPeriodStart != "" {
		end := p.NextPeriodEnd
		if end == "" || end < p.NextPeriodStart {
			end, _ = cycle.AddDays(p.NextPeriodStart, config.PredictedPeriodOffsetDays)
		}
		if end != "" {
			out = append(out, span{kind: EventPredictedPeriod, start: p.NextPeriodStart, end: end})
		}
	}
	if p.NextFertileStart != "" && p.NextFertileEnd != "" && p.NextFertileEnd >= p.NextFertileStart {
		out = append(out, span{kind: EventFertile, start: p.NextFertileStart, end: p.NextFertileEnd})
	}
	if p.NextOvulation != "" {
		out = append(out, span{kind: EventOvulation, start: p.NextOvulation, end: p.NextOvulation})
	}
	return out
}
