package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/tracker"
)

// sidebar groups quick add, insights, legend and the theme selector.
type sidebar struct {
	content fyne.CanvasObject

	insights      *widget.Card
	avgRow        *fyne.Container
	avgValue      *widget.Label
	regValue      *widget.Label
	nextPeriodRow *fyne.Container
	nextPeriod    *widget.Label
	nextOvulRow   *fyne.Container
	nextOvul      *widget.Label

	legendSwatches map[string]*canvas.Rectangle

	themeSelect *widget.Select
	themeDesc   *widget.Label
	themeKeys   map[string]string // display name -> theme key
	themeNames  map[string]string // theme key -> display name
}

func (app *CycleApp) buildSidebar() *sidebar {
	s := &sidebar{
		legendSwatches: map[string]*canvas.Rectangle{},
		themeKeys:      map[string]string{},
		themeNames:     map[string]string{},
	}

	// --- Quick Add ---
	quick := make([]fyne.CanvasObject, 0, len(cycle.FlowIntensities))
	for _, flow := range cycle.FlowIntensities {
		flow := flow
		btn := widget.NewButton(flowSymbol(flow)+" "+app.flowLabel(flow), func() {
			app.runAsync(func() { _ = app.Controller.QuickAdd(app.Ctx, flow) })
		})
		quick = append(quick, btn)
	}
	quickNote := widget.NewLabel(app.GetMsg(config.TKeyQuickAddNote))
	quickNote.Wrapping = fyne.TextWrapWord
	quickCard := widget.NewCard(app.GetMsg(config.TKeyQuickAddTitle), "", container.NewVBox(
		container.NewGridWithColumns(config.LayoutColumnsTriple, quick...),
		quickNote,
	))

	// --- Insights ---
	insightRow := func(labelKey string, value *widget.Label) *fyne.Container {
		lbl := widget.NewLabel(app.GetMsg(labelKey))
		return container.NewBorder(nil, nil, lbl, nil, container.NewHBox(layout.NewSpacer(), value))
	}
	s.avgValue = widget.NewLabel("")
	s.regValue = widget.NewLabel("")
	s.nextPeriod = widget.NewLabel("")
	s.nextOvul = widget.NewLabel("")
	s.avgRow = insightRow(config.TKeyInsightAvgCycle, s.avgValue)
	regRow := insightRow(config.TKeyInsightRegularity, s.regValue)
	s.nextPeriodRow = insightRow(config.TKeyInsightNextPeriod, s.nextPeriod)
	s.nextOvulRow = insightRow(config.TKeyInsightNextOvul, s.nextOvul)
	s.insights = widget.NewCard(app.GetMsg(config.TKeyInsightsTitle), "",
		container.NewVBox(s.avgRow, regRow, s.nextPeriodRow, s.nextOvulRow))
	s.insights.Hide()

	// --- Legend ---
	legendItems := []struct{ id, key string }{
		{"light", config.TKeyLegendLight},
		{"medium", config.TKeyLegendMedium},
		{"heavy", config.TKeyLegendHeavy},
		{"predicted", config.TKeyLegendPredicted},
		{"ovulation", config.TKeyLegendOvulation},
		{"fertile", config.TKeyLegendFertile},
	}
	legendRows := make([]fyne.CanvasObject, 0, len(legendItems))
	for _, item := range legendItems {
		swatch := canvas.NewRectangle(nil)
		swatch.SetMinSize(fyne.NewSize(config.LegendSwatchSize, config.LegendSwatchSize))
		s.legendSwatches[item.id] = swatch
		legendRows = append(legendRows, container.NewHBox(container.NewCenter(swatch), widget.NewLabel(app.GetMsg(item.key))))
	}
	legendCard := widget.NewCard(app.GetMsg(config.TKeyLegendTitle), "", container.NewVBox(legendRows...))

	// --- Theme ---
	var names []string
	for _, t := range cycle.Themes() {
		name := app.themeName(t)
		s.themeKeys[name] = t.Key
		s.themeNames[t.Key] = name
		names = append(names, name)
	}
	s.themeDesc = widget.NewLabel("")
	s.themeDesc.Wrapping = fyne.TextWrapWord
	s.themeSelect = widget.NewSelect(names, func(name string) {
		key, ok := s.themeKeys[name]
		if !ok || key == app.Controller.Snapshot().Theme.Key {
			return
		}
		app.Controller.SetTheme(key)
	})
	themeCard := widget.NewCard(app.GetMsg(config.TKeyLblTheme), "", container.NewVBox(s.themeSelect, s.themeDesc))

	body := container.NewVBox(quickCard, s.insights, legendCard, themeCard)
	scroll := container.NewVScroll(body)
	scroll.SetMinSize(fyne.NewSize(config.SidebarWidth, 0))
	s.content = scroll
	return s
}

// update refreshes the sidebar from a snapshot.
func (s *sidebar) update(app *CycleApp, state tracker.State, p palette) {
	setFill := func(id string, cls cycle.Classification) {
		if r, ok := s.legendSwatches[id]; ok {
			r.FillColor = p.cellColor(cls)
			r.Refresh()
		}
	}
	setFill("light", cycle.Classification{Category: cycle.CategoryPeriod, Intensity: cycle.FlowLight})
	setFill("medium", cycle.Classification{Category: cycle.CategoryPeriod, Intensity: cycle.FlowMedium})
	setFill("heavy", cycle.Classification{Category: cycle.CategoryPeriod, Intensity: cycle.FlowHeavy})
	setFill("predicted", cycle.Classification{Category: cycle.CategoryPredictedPeriod})
	setFill("ovulation", cycle.Classification{Category: cycle.CategoryOvulation})
	setFill("fertile", cycle.Classification{Category: cycle.CategoryFertile})

	if name := s.themeNames[state.Theme.Key]; name != "" && s.themeSelect.Selected != name {
		s.themeSelect.SetSelected(name)
	}
	s.themeDesc.SetText(app.themeDescription(state.Theme))

	if !state.Loaded {
		s.insights.Hide()
		return
	}
	pred := state.Data.Predictions

	if pred.AverageCycleLength != nil {
		s.avgValue.SetText(app.GetMsgData(config.TKeyInsightAvgValue, map[string]any{
			"Days": strconv.FormatFloat(*pred.AverageCycleLength, 'f', -1, 64),
		}))
		s.avgRow.Show()
	} else {
		s.avgRow.Hide()
	}

	s.regValue.SetText(app.regularityLabel(pred))
	s.regValue.Importance = regularityImportance(pred.Regularity())
	s.regValue.Refresh()

	setDate := func(row *fyne.Container, lbl *widget.Label, date string) {
		if date == "" {
			row.Hide()
			return
		}
		lbl.SetText(app.formatDate(date))
		row.Show()
	}
	setDate(s.nextPeriodRow, s.nextPeriod, pred.NextPeriodStart)
	setDate(s.nextOvulRow, s.nextOvul, pred.NextOvulation)

	s.insights.Show()
}

func regularityImportance(r cycle.Regularity) widget.Importance {
	switch r {
	case cycle.RegularityRegular:
		return widget.SuccessImportance
	case cycle.RegularitySomewhat:
		return widget.WarningImportance
	case cycle.RegularityIrregular:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

// regularityLabel localizes the known labels and shows any other server text as is.
func (app *CycleApp) regularityLabel(p cycle.Prediction) string {
	switch p.Regularity() {
	case cycle.RegularityRegular:
		return app.GetMsg(config.TKeyRegRegular)
	case cycle.RegularitySomewhat:
		return app.GetMsg(config.TKeyRegSomewhat)
	case cycle.RegularityIrregular:
		return app.GetMsg(config.TKeyRegIrregular)
	}
	if p.CycleRegularity != "" {
		return p.CycleRegularity
	}
	return app.GetMsg(config.TKeyRegUnknown)
}

// formatDate renders a YYYY-MM-DD date with the locale's layout.
func (app *CycleApp) formatDate(date string) string {
	t, err := cycle.ParseDate(date)
	if err != nil {
		return date
	}
	layout := app.GetMsg(config.TKeyFormatDate)
	if layout == config.TKeyFormatDate {
		layout = config.DateLayout
	}
	return t.Format(layout)
}

func (app *CycleApp) flowLabel(f cycle.FlowIntensity) string {
	switch f {
	case cycle.FlowLight:
		return app.GetMsg(config.TKeyFlowLight)
	case cycle.FlowHeavy:
		return app.GetMsg(config.TKeyFlowHeavy)
	default:
		return app.GetMsg(config.TKeyFlowMedium)
	}
}

func (app *CycleApp) themeName(t cycle.Theme) string {
	key := config.TKeyThemeNamePrefix + t.Key
	if msg := app.GetMsg(key); msg != key {
		return msg
	}
	return t.Name
}

func (app *CycleApp) themeDescription(t cycle.Theme) string {
	key := config.TKeyThemeDescPrefix + t.Key
	if msg := app.GetMsg(key); msg != key {
		return msg
	}
	return t.Description
}
