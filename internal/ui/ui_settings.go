package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds the inputs read back on save.
type settingsWidgets struct {
	langSelect    *widget.Select
	urlEntry      *widget.Entry
	userEntry     *widget.Entry
	passEntry     *widget.Entry
	checkFeed     *widget.Check
	entryPort     *NumericalEntry
	checkReminder *widget.Check
	entryRemDays  *NumericalEntry
}

// ShowSettingsWindow opens the preferences window, or focuses it when already open.
func (app *CycleApp) ShowSettingsWindow() {
	if app.SettingsWindow != nil {
		slog.Debug(config.MsgSettingsFocus, config.LogKeyComponent, config.CompUISet)
		app.SettingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgSettingsOpen, config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.SettingsWindow = w

	sw := app.newSettingsWidgets()

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	connectionCard := app.buildConnectionCard(sw)

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)
	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", widget.NewForm(itemLang))

	feedCard := app.buildFeedCard(sw, onLayoutChange)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), w.Close)

	footer := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		connectionCard,
		generalCard,
		feedCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footer,
	))

	refreshLayout = func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.SettingsWindow = nil })

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates the inputs pre-filled from preferences and the keyring.
func (app *CycleApp) newSettingsWidgets() *settingsWidgets {
	sw := &settingsWidgets{}

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetPlaceHolder(config.PlaceholderURL)
	sw.urlEntry.SetText(app.Preferences.StringWithFallback(config.PrefAPIURL, config.DefaultAPIURL))
	if app.APIURLOverride != "" {
		// The environment override wins over the stored preference.
		sw.urlEntry.SetText(app.APIURLOverride)
		sw.urlEntry.Disable()
	}

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefUsername))

	sw.passEntry = widget.NewPasswordEntry()
	if user := strings.TrimSpace(sw.userEntry.Text); user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.checkFeed = widget.NewCheck(app.GetMsg(config.TKeyLblEnableFeed), nil)
	sw.checkFeed.SetChecked(app.Preferences.BoolWithFallback(config.PrefFeedEnabled, true))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.portValidator

	sw.checkReminder = widget.NewCheck(app.GetMsg(config.TKeyLblEnableRem), nil)
	sw.checkReminder.SetChecked(app.Preferences.Bool(config.PrefReminderEnabled))

	sw.entryRemDays = NewNumericalEntry()
	sw.entryRemDays.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefReminderDays, config.DefaultReminderDays)))

	return sw
}

// portValidator enforces a TCP port in range, with localized messages.
func (app *CycleApp) portValidator(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

func (app *CycleApp) buildConnectionCard(sw *settingsWidgets) *widget.Card {
	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpAPIURL)

	form := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	return widget.NewCard(app.GetMsg(config.TKeyLblConnection), "", form)
}

// buildFeedCard groups the feed toggle, its port and the reminder options.
// Port and reminders collapse while the feed is disabled.
func (app *CycleApp) buildFeedCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)
	portForm := widget.NewForm(itemPort)

	itemDays := widget.NewFormItem(app.GetMsg(config.TKeyLblReminder), sw.entryRemDays)
	itemDays.HintText = app.GetMsg(config.TKeyHelpReminder)
	daysForm := widget.NewForm(itemDays)

	restart := widget.NewLabel(app.GetMsg(config.TKeyLblRestartNote))
	restart.Wrapping = fyne.TextWrapWord
	restart.Importance = widget.LowImportance

	options := container.NewVBox(portForm, sw.checkReminder, daysForm)

	setVisible := func(obj fyne.CanvasObject, visible bool) {
		if visible {
			obj.Show()
		} else {
			obj.Hide()
		}
	}
	applyVisibility := func() {
		setVisible(options, sw.checkFeed.Checked)
		setVisible(daysForm, sw.checkReminder.Checked)
	}

	sw.checkFeed.OnChanged = func(bool) {
		applyVisibility()
		onLayoutChange()
	}
	sw.checkReminder.OnChanged = func(bool) {
		applyVisibility()
		onLayoutChange()
	}
	applyVisibility()

	return widget.NewCard(app.GetMsg(config.TKeyLblFeed), "", container.NewVBox(sw.checkFeed, options, restart))
}

// saveSettings persists the inputs, reconnects the controller and reloads the calendar.
func (app *CycleApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUISet)

	user := strings.TrimSpace(sw.userEntry.Text)

	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)
	if app.APIURLOverride == "" {
		app.Preferences.SetString(config.PrefAPIURL, strings.TrimSpace(sw.urlEntry.Text))
	}
	app.Preferences.SetString(config.PrefUsername, user)

	if user != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, user, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyringSave,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	}

	app.Preferences.SetBool(config.PrefFeedEnabled, sw.checkFeed.Checked)
	if sw.entryPort.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	// An empty or zero day count disables reminders regardless of the checkbox.
	days, ok := sw.entryRemDays.Int()
	if !ok || days <= 0 {
		app.Preferences.SetBool(config.PrefReminderEnabled, false)
		slog.Info(config.MsgRemindersOff, config.LogKeyComponent, config.CompUISet)
	} else {
		app.Preferences.SetBool(config.PrefReminderEnabled, sw.checkReminder.Checked)
		app.Preferences.SetInt(config.PrefReminderDays, days)
	}

	app.UpdateLocalizer()
	app.Controller.SetAPI(app.newAPIClient())
	app.rebuildMainView()
	app.invalidateFeed()
	app.runAsync(func() { _ = app.Controller.Refresh(app.Ctx) })

	w.Close()
}
