package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/engine"
	"github.com/tartampluch/go-cycle/internal/server"
	"github.com/tartampluch/go-cycle/internal/tracker"
	"github.com/zalando/go-keyring"
)

// CycleApp encapsulates the UI state, preferences, and the controller driving them.
type CycleApp struct {
	App            fyne.App
	Window         fyne.Window
	SettingsWindow fyne.Window
	Preferences    fyne.Preferences
	I18nBundle     *i18n.Bundle
	Localizer      *i18n.Localizer
	Ctx            context.Context

	Server     *server.FeedServer
	Controller *tracker.Controller
	Clock      engine.Clock // Injected clock for testability

	SupportedLanguages []string

	// APIURLOverride comes from the environment and wins over the stored preference.
	APIURLOverride string

	// runAsync runs controller calls off the UI goroutine. Tests replace it to run inline.
	runAsync func(fn func())

	view         *mainView
	periodDialog *periodDialog

	// Feed bookkeeping. The feed always describes the current month,
	// whatever month the window shows.
	feedMu       sync.Mutex
	wasLoading   bool
	feedBuilt    bool
	feedRevision uint64
}

// NewCycleApp constructs the application and wires dependencies.
func NewCycleApp(a fyne.App, ctx context.Context, srv *server.FeedServer) *CycleApp {
	app := &CycleApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		runAsync:           func(fn func()) { go fn() },
	}
	app.Controller = tracker.NewController(app.newAPIClient(), app, app.Clock)
	return app
}

// Run launches the feed server, the main window and the UI loop.
func (app *CycleApp) Run() {
	app.SetupI18n()
	app.Controller.Subscribe(app.onStateChange)

	if app.Preferences.BoolWithFallback(config.PrefFeedEnabled, true) && app.Server != nil {
		go func() {
			if err := app.Server.Start(app.Ctx); err != nil {
				slog.Error(config.ErrServerStartup,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompUI)

				app.App.SendNotification(fyne.NewNotification(
					config.TitleStartupError,
					fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
			}
		}()
	} else {
		slog.Info(config.MsgFeedDisabled, config.LogKeyComponent, config.CompUI)
	}

	app.ShowMainWindow()
	app.runAsync(func() { _ = app.Controller.Start(app.Ctx) })
	app.App.Run()
}

// newAPIClient assembles the backend client from preferences and the keyring.
func (app *CycleApp) newAPIClient() *engine.HTTPClient {
	baseURL := app.APIURLOverride
	if baseURL == "" {
		baseURL = app.Preferences.StringWithFallback(config.PrefAPIURL, config.DefaultAPIURL)
	}
	user := strings.TrimSpace(app.Preferences.String(config.PrefUsername))

	var pass string
	if user != "" {
		if p, err := keyring.Get(config.KeyringService, user); err == nil {
			pass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, user,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return engine.NewHTTPClient(baseURL, user, pass)
}

// SetAPIURLOverride applies an API URL from the environment and rebuilds the client.
func (app *CycleApp) SetAPIURLOverride(url string) {
	app.APIURLOverride = strings.TrimSpace(url)
	app.Controller.SetAPI(app.newAPIClient())
}

// -----------------------------------------------------------------------------
// tracker.Environment
// -----------------------------------------------------------------------------

// LoadTheme returns the persisted theme key.
func (app *CycleApp) LoadTheme() string {
	return app.Preferences.StringWithFallback(config.PrefTheme, config.DefaultThemeKey)
}

// SaveTheme persists the theme key.
func (app *CycleApp) SaveTheme(key string) {
	app.Preferences.SetString(config.PrefTheme, key)
}

// ApplyTheme switches the Fyne theme immediately.
func (app *CycleApp) ApplyTheme(t cycle.Theme) {
	fyne.Do(func() {
		app.App.Settings().SetTheme(newCycleTheme(t))
		if app.view != nil {
			app.view.palette = paletteFor(t.Key)
		}
	})
}

// -----------------------------------------------------------------------------
// State Rendering
// -----------------------------------------------------------------------------

// onStateChange is the controller listener. It renders on the UI goroutine and feeds the server.
func (app *CycleApp) onStateChange(state tracker.State) {
	fyne.Do(func() { app.render(state) })
	app.updateFeed(state)
}

// updateFeed republishes the feed when a fetch settles. Loads of the current
// month are used directly. Browsing other months leaves the feed alone unless
// a save or a settings change made it stale, in which case the current month
// is fetched separately.
func (app *CycleApp) updateFeed(state tracker.State) {
	app.feedMu.Lock()
	finished := app.wasLoading && !state.Loading
	app.wasLoading = state.Loading
	if !finished || !state.Loaded || app.Server == nil {
		app.feedMu.Unlock()
		return
	}
	current := cycle.MonthOf(app.Clock.Now())
	onCurrent := state.Month == current
	stale := !app.feedBuilt || state.Revision != app.feedRevision
	if !onCurrent && !stale {
		app.feedMu.Unlock()
		return
	}
	app.feedBuilt = true
	app.feedRevision = state.Revision
	app.feedMu.Unlock()

	if onCurrent {
		app.publishFeed(state.Data)
		return
	}
	app.runAsync(func() {
		data, err := app.Controller.FetchMonth(app.Ctx, current)
		if err != nil {
			app.invalidateFeed()
			slog.Error(config.ErrFeedBuild, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
			return
		}
		app.publishFeed(data)
	})
}

// invalidateFeed forces the next settled fetch to republish the feed.
func (app *CycleApp) invalidateFeed() {
	app.feedMu.Lock()
	app.feedBuilt = false
	app.feedMu.Unlock()
}

func (app *CycleApp) publishFeed(data cycle.MonthData) {
	builder := &engine.FeedBuilder{
		Clock:         app.Clock,
		FormatSummary: app.buildSummaryFormatter(),
	}
	ics, events, err := builder.Build(app.Ctx, data, app.feedOptions())
	if err != nil {
		slog.Error(config.ErrFeedBuild, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		return
	}
	slog.Debug(config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyMonth, data.Month.String(),
		config.LogKeyEvents, events)
	app.Server.Update(ics)
}

// feedOptions maps the reminder preferences onto the feed builder options.
func (app *CycleApp) feedOptions() engine.FeedOptions {
	var opts engine.FeedOptions
	if !app.Preferences.Bool(config.PrefReminderEnabled) {
		return opts
	}
	if days := app.Preferences.IntWithFallback(config.PrefReminderDays, config.DefaultReminderDays); days > 0 {
		opts.ReminderDays = days
	}
	return opts
}

// buildSummaryFormatter returns a closure that localizes feed event titles.
func (app *CycleApp) buildSummaryFormatter() func(kind engine.EventKind) string {
	keys := map[engine.EventKind]string{
		engine.EventPeriod:          config.TKeyEvtPeriod,
		engine.EventPredictedPeriod: config.TKeyEvtPredictedPeriod,
		engine.EventOvulation:       config.TKeyEvtOvulation,
		engine.EventFertile:         config.TKeyEvtFertile,
	}
	return func(kind engine.EventKind) string {
		key, ok := keys[kind]
		if !ok || app.Localizer == nil {
			return ""
		}
		if msg := app.GetMsg(key); msg != key {
			return msg
		}
		return ""
	}
}

// notificationText picks the server's own message when present, else the localized fallback.
func (app *CycleApp) notificationText(n *tracker.Notification) string {
	if n == nil {
		return ""
	}
	if n.Detail != "" {
		return n.Detail
	}
	return app.GetMsg(n.Key)
}
