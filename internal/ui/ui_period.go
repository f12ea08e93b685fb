package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
	"github.com/tartampluch/go-cycle/internal/tracker"
)

// periodDialog is the modal editor for one period record.
// The controller's form is the source of truth; widgets push every edit to it.
type periodDialog struct {
	form *widget.Form

	dlg          dialog.Dialog
	respond      func(ok bool)
	start        *widget.Entry
	end          *widget.Entry
	flow         *widget.RadioGroup
	notes        *widget.Entry
	usePredicted *widget.Button

	flowByLabel map[string]cycle.FlowIntensity
	labelByFlow map[cycle.FlowIntensity]string
}

// syncPeriodDialog shows, updates or hides the dialog to match the form state.
func (app *CycleApp) syncPeriodDialog(state tracker.State) {
	if state.FormState == cycle.FormClosed {
		if pd := app.periodDialog; pd != nil {
			// Cleared first so the dismiss callback does not treat this as a user cancel.
			app.periodDialog = nil
			pd.dlg.Hide()
		}
		return
	}
	if app.periodDialog != nil {
		app.periodDialog.update(app, state)
		return
	}
	if app.Window == nil {
		return
	}
	app.showPeriodDialog(state)
}

func (app *CycleApp) showPeriodDialog(state tracker.State) {
	pd := &periodDialog{
		flowByLabel: map[string]cycle.FlowIntensity{},
		labelByFlow: map[cycle.FlowIntensity]string{},
	}
	fields := state.Form

	pd.start = widget.NewEntry()
	pd.start.SetPlaceHolder(config.PlaceholderDate)
	pd.start.SetText(fields.StartDate)

	pd.end = widget.NewEntry()
	pd.end.SetPlaceHolder(app.GetMsg(config.TKeyPhEndDate))
	pd.end.SetText(fields.EndDate)

	var labels []string
	for _, f := range cycle.FlowIntensities {
		lbl := app.flowLabel(f)
		pd.flowByLabel[lbl] = f
		pd.labelByFlow[f] = lbl
		labels = append(labels, lbl)
	}
	pd.flow = widget.NewRadioGroup(labels, nil)
	pd.flow.Horizontal = true
	pd.flow.Required = true
	pd.flow.SetSelected(pd.labelByFlow[fields.FlowIntensity.OrDefault()])

	pd.notes = widget.NewMultiLineEntry()
	pd.notes.SetPlaceHolder(app.GetMsg(config.TKeyPhNotes))
	pd.notes.SetText(fields.Notes)

	// The suggestion is the only edit that reaches the end entry from outside it.
	pd.usePredicted = widget.NewButton("", func() {
		var end string
		_ = app.Controller.UpdateForm(func(f *cycle.PeriodForm) error {
			f.UsePrediction()
			end = f.Fields().EndDate
			return nil
		})
		pd.end.SetText(end)
	})
	pd.usePredicted.Importance = widget.LowImportance

	// Handlers are attached after the initial values so filling the widgets is not an edit.
	pd.start.OnChanged = func(s string) {
		_ = app.Controller.UpdateForm(func(f *cycle.PeriodForm) error { return f.SetStartDate(s) })
	}
	pd.end.OnChanged = func(s string) {
		_ = app.Controller.UpdateForm(func(f *cycle.PeriodForm) error { return f.SetEndDate(s) })
	}
	pd.flow.OnChanged = func(lbl string) {
		flow, ok := pd.flowByLabel[lbl]
		if !ok {
			return
		}
		_ = app.Controller.UpdateForm(func(f *cycle.PeriodForm) error { return f.SetFlow(flow) })
	}
	pd.notes.OnChanged = func(s string) {
		_ = app.Controller.UpdateForm(func(f *cycle.PeriodForm) error { return f.SetNotes(s) })
	}

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblStartDate), pd.start),
		widget.NewFormItem(app.GetMsg(config.TKeyLblEndDate), container.NewVBox(pd.end, pd.usePredicted)),
		widget.NewFormItem(app.GetMsg(config.TKeyLblFlow), pd.flow),
		widget.NewFormItem(app.GetMsg(config.TKeyLblNotes), pd.notes),
	)
	pd.form = form

	title, confirm := app.GetMsg(config.TKeyModalTitleNew), app.GetMsg(config.TKeyBtnSavePeriod)
	if state.FormState == cycle.FormOpenExisting {
		title, confirm = app.GetMsg(config.TKeyModalTitleEdit), app.GetMsg(config.TKeyBtnUpdatePeriod)
	}

	pd.respond = func(ok bool) {
		if app.periodDialog != pd {
			return
		}
		app.periodDialog = nil
		if ok {
			app.runAsync(func() { _ = app.Controller.SaveForm(app.Ctx) })
			return
		}
		app.Controller.CancelForm()
	}
	pd.dlg = dialog.NewCustomConfirm(title, confirm, app.GetMsg(config.TKeyBtnCancel), form, pd.respond, app.Window)

	app.periodDialog = pd
	pd.update(app, state)
	pd.dlg.Resize(fyne.NewSize(config.PeriodDialogWidth, pd.dlg.MinSize().Height))
	pd.dlg.Show()
}

// update toggles the predicted end suggestion. Entry texts are owned by the
// widgets; a queued render may carry an older form and must not overwrite them.
func (pd *periodDialog) update(app *CycleApp, state tracker.State) {
	fields := state.Form
	if state.FormState == cycle.FormOpenNew && fields.PredictedEnd != "" && fields.PredictedEnd != fields.EndDate {
		pd.usePredicted.SetText(app.GetMsgData(config.TKeyBtnUsePredicted, map[string]any{
			"Date": app.formatDate(fields.PredictedEnd),
		}))
		pd.usePredicted.Show()
	} else {
		pd.usePredicted.Hide()
	}
}
