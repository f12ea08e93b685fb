// Package tracker owns the application state: the displayed month, the data loaded for it,
// the period form and the selected theme. The UI drives it and renders its snapshots.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/engine"
)

// API is the backend the controller loads months from and saves periods to.
type API interface {
	FetchMonth(ctx context.Context, month cycle.Month) (cycle.MonthData, error)
	SavePeriod(ctx context.Context, rec cycle.PeriodRecord) error
}

// Environment persists and applies the visual theme.
type Environment interface {
	LoadTheme() string
	SaveTheme(key string)
	ApplyTheme(theme cycle.Theme)
}

// Notification is a transient, dismissible message for the user.
// Key is a translation key; Detail is server text shown verbatim when present.
type Notification struct {
	Key    string
	Detail string
}

// State is an immutable snapshot handed to listeners.
type State struct {
	Month        cycle.Month
	Today        string
	Data         cycle.MonthData
	DataVersion  uint64 // Incremented each time Data is replaced
	Revision     uint64 // Incremented after each successful save
	Loaded       bool
	Loading      bool
	FormState    cycle.FormState
	Form         cycle.FormFields
	Theme        cycle.Theme
	Notification *Notification
}

// Controller orchestrates navigation, fetching, saving and theme persistence.
// All methods are safe for concurrent use; network calls run without holding the lock.
type Controller struct {
	api   API
	env   Environment
	clock engine.Clock

	mu          sync.Mutex
	month       cycle.Month
	data        cycle.MonthData
	version     uint64
	revision    uint64
	loaded      bool
	loading     bool
	form        *cycle.PeriodForm
	theme       cycle.Theme
	note        *Notification
	seq         uint64
	cancelFetch context.CancelFunc
	listeners   []func(State)
}

// NewController creates a controller positioned on the current month.
func NewController(api API, env Environment, clock engine.Clock) *Controller {
	return &Controller{
		api:   api,
		env:   env,
		clock: clock,
		month: cycle.MonthOf(clock.Now()),
		form:  cycle.NewPeriodForm(),
		theme: cycle.ResolveTheme(config.DefaultThemeKey),
	}
}

// SetAPI swaps the backend, e.g. after the user edits the connection settings.
func (c *Controller) SetAPI(api API) {
	c.mu.Lock()
	c.api = api
	c.mu.Unlock()
}

// Subscribe registers a listener called after every state change.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Loading reports whether a month fetch is outstanding.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) snapshotLocked() State {
	var note *Notification
	if c.note != nil {
		n := *c.note
		note = &n
	}
	return State{
		Month:        c.month,
		Today:        cycle.DateOf(c.clock.Now()),
		Data:         c.data,
		DataVersion:  c.version,
		Revision:     c.revision,
		Loaded:       c.loaded,
		Loading:      c.loading,
		FormState:    c.form.State(),
		Form:         c.form.Fields(),
		Theme:        c.theme,
		Notification: note,
	}
}

// commit publishes the current state. It must be called without holding the lock.
func (c *Controller) commit() {
	c.mu.Lock()
	state := c.snapshotLocked()
	listeners := append([]func(State){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// Start applies the persisted theme and loads the current month.
func (c *Controller) Start(ctx context.Context) error {
	theme := cycle.ResolveTheme(c.env.LoadTheme())
	c.env.ApplyTheme(theme)

	month := cycle.MonthOf(c.clock.Now())
	return c.load(ctx, func() {
		c.theme = theme
		c.month = month
	})
}

// Refresh fetches the current month and replaces the loaded data wholesale.
// Starting a refresh cancels any fetch still in flight; a superseded response is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, nil)
}

// load optionally repositions the month and starts its fetch in one critical
// section, so a response for the previous position can never be committed
// under the new one.
func (c *Controller) load(ctx context.Context, move func()) error {
	c.mu.Lock()
	if move != nil {
		move()
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.seq++
	seq := c.seq
	month := c.month
	api := c.api
	c.cancelFetch = cancel
	c.loading = true
	c.mu.Unlock()
	c.commit()

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompTracker),
		slog.String(config.LogKeyMonth, month.String()),
		slog.Uint64(config.LogKeySeq, seq),
	)

	data, err := api.FetchMonth(fetchCtx, month)
	cancel()

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug(config.MsgFetchStale)
		return nil
	}
	c.loading = false
	c.cancelFetch = nil
	if err != nil {
		// Prior data stays on screen.
		c.note = &Notification{Key: config.TKeyErrLoadCalendar}
	} else {
		c.data = data
		c.version++
		c.loaded = true
	}
	c.mu.Unlock()
	c.commit()

	if err != nil {
		log.Error(config.ErrFetchFailed, slog.String(config.LogKeyError, err.Error()))
		return err
	}
	log.Debug(config.MsgFetchDone, slog.Int(config.LogKeyDays, len(data.Annotations)))
	return nil
}

// Navigate shifts the displayed month by delta and loads it.
func (c *Controller) Navigate(ctx context.Context, delta int) error {
	return c.load(ctx, func() {
		c.month = c.month.Add(delta)
		slog.Info(config.MsgNavigate,
			config.LogKeyComponent, config.CompTracker,
			config.LogKeyMonth, c.month.String(),
		)
	})
}

// GoToToday jumps back to the month containing today.
func (c *Controller) GoToToday(ctx context.Context) error {
	target := cycle.MonthOf(c.clock.Now())

	c.mu.Lock()
	settled := target == c.month && c.loaded
	c.mu.Unlock()
	if settled {
		return nil
	}
	return c.load(ctx, func() { c.month = target })
}

// FetchMonth loads any month without touching the displayed state.
// The feed uses it to stay on the current month while the user browses.
func (c *Controller) FetchMonth(ctx context.Context, month cycle.Month) (cycle.MonthData, error) {
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()
	return api.FetchMonth(ctx, month)
}

// SelectDay opens the period form for the chosen day, pre-filled when a period is logged there.
func (c *Controller) SelectDay(sel cycle.DaySelection) error {
	date := sel.Date()

	c.mu.Lock()
	rec, existing := c.data.Annotations.PeriodAt(date)
	var err error
	if existing {
		err = c.form.OpenExisting(date, rec)
	} else {
		err = c.form.OpenNew(date)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	slog.Debug(config.MsgFormOpened,
		config.LogKeyComponent, config.CompTracker,
		config.LogKeyDate, date,
		config.LogKeyEdit, existing,
	)
	c.commit()
	return nil
}

// UpdateForm applies an edit to the open form and publishes the result.
func (c *Controller) UpdateForm(edit func(f *cycle.PeriodForm) error) error {
	c.mu.Lock()
	err := edit(c.form)
	c.mu.Unlock()
	c.commit()
	return err
}

// CancelForm closes the form without saving.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	c.form.Cancel()
	c.mu.Unlock()
	c.commit()
}

// SaveForm validates and submits the open form. On failure the form reopens with the user's input.
func (c *Controller) SaveForm(ctx context.Context) error {
	c.mu.Lock()
	rec, err := c.form.Save()
	if err != nil {
		if !errors.Is(err, cycle.ErrFormClosed) {
			c.note = &Notification{Key: config.TKeyErrInvalidForm}
		}
		c.mu.Unlock()
		slog.Warn(config.MsgInvalidFormSave,
			config.LogKeyComponent, config.CompTracker,
			config.LogKeyError, err,
		)
		c.commit()
		return err
	}
	c.mu.Unlock()
	c.commit()

	if err := c.submit(ctx, rec); err != nil {
		c.mu.Lock()
		c.form.Reopen()
		c.mu.Unlock()
		c.commit()
		return err
	}
	return c.Refresh(ctx)
}

// QuickAdd logs a period starting today without going through the form.
func (c *Controller) QuickAdd(ctx context.Context, flow cycle.FlowIntensity) error {
	flow = flow.OrDefault()
	if !flow.Valid() {
		c.mu.Lock()
		c.note = &Notification{Key: config.TKeyErrInvalidForm}
		c.mu.Unlock()
		c.commit()
		return fmt.Errorf("%w: %q", cycle.ErrUnknownFlow, flow)
	}

	notes := config.QuickAddNote
	rec := cycle.PeriodRecord{
		StartDate:     cycle.DateOf(c.clock.Now()),
		FlowIntensity: flow,
		Notes:         &notes,
	}
	if err := c.submit(ctx, rec); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// submit sends a record and posts a notification on failure.
func (c *Controller) submit(ctx context.Context, rec cycle.PeriodRecord) error {
	c.mu.Lock()
	api := c.api
	c.mu.Unlock()

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompTracker),
		slog.String(config.LogKeyDate, rec.StartDate),
		slog.String(config.LogKeyFlow, string(rec.FlowIntensity)),
	)
	log.Info(config.MsgSaveStart)

	err := api.SavePeriod(ctx, rec)
	if err == nil {
		c.mu.Lock()
		c.revision++
		c.mu.Unlock()
		return nil
	}

	note := &Notification{Key: config.TKeyErrSaveGeneric}
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		note.Detail = apiErr.Message
	}
	c.mu.Lock()
	c.note = note
	c.mu.Unlock()
	c.commit()

	log.Error(config.ErrSaveFailed, slog.String(config.LogKeyError, err.Error()))
	return err
}

// SetTheme applies and persists a theme. Unknown keys fall back to the default theme.
func (c *Controller) SetTheme(key string) cycle.Theme {
	theme := cycle.ResolveTheme(key)
	c.env.SaveTheme(theme.Key)
	c.env.ApplyTheme(theme)

	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()

	slog.Info(config.MsgThemeApplied,
		config.LogKeyComponent, config.CompTracker,
		config.LogKeyTheme, theme.Key,
	)
	c.commit()
	return theme
}

// DismissNotification clears the current notification.
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	c.note = nil
	c.mu.Unlock()
	c.commit()
}
