package ui

import (
	"image/color"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/tracker"
)

// mainView holds the widgets of the main window that change with the state.
type mainView struct {
	palette palette

	title      *widget.Label
	loading    *widget.ProgressBarInfinite
	loadingRow *fyne.Container
	banner     *fyne.Container
	bannerText *widget.Label
	weekdays   *fyne.Container
	days       *fyne.Container
	sidebar    *sidebar
	content    fyne.CanvasObject

	// gridKey identifies what the day grid was last built from.
	gridKey string
	grid    cycle.Grid
}

// ShowMainWindow creates the calendar window, or focuses it when already open.
func (app *CycleApp) ShowMainWindow() {
	if app.Window != nil {
		app.Window.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	w.SetMaster()
	app.Window = w

	app.view = app.buildMainView()
	w.SetContent(app.view.content)
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	w.Show()

	app.render(app.Controller.Snapshot())
}

// rebuildMainView recreates the widgets, e.g. after a language change.
func (app *CycleApp) rebuildMainView() {
	if app.Window == nil {
		return
	}
	app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	app.view = app.buildMainView()
	app.Window.SetContent(app.view.content)
	app.render(app.Controller.Snapshot())
}

func (app *CycleApp) buildMainView() *mainView {
	state := app.Controller.Snapshot()
	v := &mainView{palette: paletteFor(state.Theme.Key)}

	async := func(fn func()) func() {
		return func() { app.runAsync(fn) }
	}

	btnPrev := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnPrev), theme.NavigateBackIcon(), async(func() {
		_ = app.Controller.Navigate(app.Ctx, -1)
	}))
	btnNext := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnNext), theme.NavigateNextIcon(), async(func() {
		_ = app.Controller.Navigate(app.Ctx, 1)
	}))
	btnToday := widget.NewButton(app.GetMsg(config.TKeyBtnToday), async(func() {
		_ = app.Controller.GoToToday(app.Ctx)
	}))
	btnSettings := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow)

	v.title = widget.NewLabel("")
	v.title.Alignment = fyne.TextAlignCenter
	v.title.TextStyle = fyne.TextStyle{Bold: true}

	subtitle := widget.NewLabel(app.GetMsg(config.TKeyAppSubtitle))
	subtitle.TextStyle = fyne.TextStyle{Italic: true}

	header := container.NewBorder(nil, nil,
		container.NewHBox(btnPrev, btnToday),
		container.NewHBox(btnNext, btnSettings),
		v.title,
	)

	v.loading = widget.NewProgressBarInfinite()
	v.loading.Stop()
	v.loadingRow = container.NewBorder(nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblLoading)), nil, v.loading)
	v.loadingRow.Hide()

	v.bannerText = widget.NewLabel("")
	v.bannerText.Wrapping = fyne.TextWrapWord
	v.bannerText.Importance = widget.DangerImportance
	btnDismiss := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDismiss), theme.CancelIcon(), app.Controller.DismissNotification)
	v.banner = container.NewBorder(nil, nil, nil, btnDismiss, v.bannerText)
	v.banner.Hide()

	headers := make([]fyne.CanvasObject, config.CalendarColumns)
	for i := range headers {
		lbl := widget.NewLabel(app.weekdayName(i))
		lbl.Alignment = fyne.TextAlignCenter
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		headers[i] = lbl
	}
	v.weekdays = container.NewGridWithColumns(config.CalendarColumns, headers...)
	v.days = container.NewGridWithColumns(config.CalendarColumns)

	v.sidebar = app.buildSidebar()

	top := container.NewVBox(subtitle, header, v.banner, v.loadingRow)
	calendar := container.NewVBox(v.weekdays, v.days)
	v.content = container.NewBorder(top, nil, nil, v.sidebar.content, container.NewVScroll(calendar))
	return v
}

// render applies a controller snapshot to the widgets. It must run on the UI goroutine.
func (app *CycleApp) render(state tracker.State) {
	v := app.view
	if v == nil {
		return
	}

	v.title.SetText(app.monthTitle(state.Month))

	if state.Loading {
		v.loadingRow.Show()
		v.loading.Start()
	} else {
		v.loading.Stop()
		v.loadingRow.Hide()
	}

	if state.Notification != nil {
		v.bannerText.SetText(app.notificationText(state.Notification))
		v.banner.Show()
	} else {
		v.banner.Hide()
	}

	key := state.Month.String() + "|" + strconv.FormatUint(state.DataVersion, 10) + "|" + state.Theme.Key + "|" + state.Today
	if key != v.gridKey {
		v.gridKey = key
		v.palette = paletteFor(state.Theme.Key)
		v.grid = cycle.RenderMonth(state.Month.Year, state.Month.Month, state.Data.Annotations, state.Today)
		v.days.Objects = app.buildDayCells(v.grid, v.palette)
		v.days.Refresh()
	}

	v.sidebar.update(app, state, v.palette)
	app.syncPeriodDialog(state)
}

// buildDayCells turns the grid into tappable cells.
func (app *CycleApp) buildDayCells(g cycle.Grid, p palette) []fyne.CanvasObject {
	cells := make([]fyne.CanvasObject, len(g.Cells))
	for i, cell := range g.Cells {
		if cell.Empty {
			spacer := canvas.NewRectangle(color.Transparent)
			spacer.SetMinSize(fyne.NewSize(0, config.DayCellMinHeight))
			cells[i] = spacer
			continue
		}
		cells[i] = app.buildDayCell(g, i, p)
	}
	return cells
}

func (app *CycleApp) buildDayCell(g cycle.Grid, index int, p palette) fyne.CanvasObject {
	cell := g.Cells[index]

	bg := canvas.NewRectangle(p.cellColor(cell.Class))
	bg.CornerRadius = theme.InputRadiusSize()
	bg.SetMinSize(fyne.NewSize(0, config.DayCellMinHeight))
	if cell.Class.Today {
		bg.StrokeColor = p.today
		bg.StrokeWidth = 2
	}

	number := canvas.NewText(strconv.Itoa(cell.Day), p.text)
	number.TextStyle = fyne.TextStyle{Bold: cell.Class.Today}

	lines := []fyne.CanvasObject{number}
	for _, s := range app.stickers(cell) {
		t := canvas.NewText(s, p.text)
		t.TextSize = config.StickerTextSize
		lines = append(lines, t)
	}

	tap := widget.NewButton("", func() { app.selectDay(g, index) })
	tap.Importance = widget.LowImportance

	return container.NewStack(bg, container.NewPadded(container.NewVBox(lines...)), tap)
}

// stickers lists the short labels drawn inside a day cell.
func (app *CycleApp) stickers(cell cycle.Cell) []string {
	var out []string
	if cell.Class.Today {
		out = append(out, app.GetMsg(config.TKeyLblToday))
	}
	if cell.ShowPeriod {
		out = append(out, flowSymbol(cell.Intensity)+" "+app.GetMsg(config.TKeyStickerPeriod))
	}
	if cell.ShowPredicted {
		out = append(out, app.GetMsg(config.TKeyStickerExpected))
	}
	if cell.ShowOvulation {
		out = append(out, app.GetMsg(config.TKeyStickerOvulation))
	}
	if cell.ShowFertile {
		out = append(out, app.GetMsg(config.TKeyStickerFertile))
	}
	if cell.ShowNotes {
		out = append(out, app.GetMsg(config.TKeyStickerNotes))
	}
	return out
}

func flowSymbol(f cycle.FlowIntensity) string {
	switch f {
	case cycle.FlowLight:
		return "○"
	case cycle.FlowHeavy:
		return "●●"
	default:
		return "●"
	}
}

// selectDay opens the period form for a tapped cell.
func (app *CycleApp) selectDay(g cycle.Grid, index int) {
	sel, ok := g.Select(index)
	if !ok {
		return
	}
	if err := app.Controller.SelectDay(sel); err != nil {
		slog.Warn(config.MsgInvalidFormSave,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyDate, sel.Date(),
			config.LogKeyError, err)
	}
}

// monthTitle renders e.g. "March 2024" in the active language.
func (app *CycleApp) monthTitle(m cycle.Month) string {
	name := app.GetMsg(config.TKeyMonthName + strconv.Itoa(int(m.Month)))
	if name == config.TKeyMonthName+strconv.Itoa(int(m.Month)) {
		name = m.Month.String()
	}
	return app.GetMsgData(config.TKeyFormatMonth, map[string]any{
		"Month": name,
		"Year":  m.Year,
	})
}

func (app *CycleApp) weekdayName(i int) string {
	key := config.TKeyWeekdayShort + strconv.Itoa(i)
	if name := app.GetMsg(key); name != key {
		return name
	}
	return cycle.WeekdayHeaders[i]
}
