package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"gabornoise/internal/params"
)

const (
	dialogWidth  = 520
	dialogHeight = 640
)

var titleColor = color.NRGBA{R: 0x1e, G: 0x6f, B: 0xd9, A: 0xff}

// runParamsDialog shows an editor for every stimulus parameter and saves
// accepted values to path. It blocks until the window is closed.
func runParamsDialog(v *viper.Viper, values map[string]float64, path string, logger *zap.Logger) error {
	a := app.NewWithID("gabornoise.params")
	w := a.NewWindow(params.DisplayName + " parameters")
	w.Resize(fyne.NewSize(dialogWidth, dialogHeight))
	w.CenterOnScreen()

	title := canvas.NewText(params.DisplayName, titleColor)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 18
	title.Alignment = fyne.TextAlignCenter
	description := widget.NewLabel(params.Description)
	description.Alignment = fyne.TextAlignCenter

	entries := make(map[string]*widget.Entry, len(values))
	form := widget.NewForm()
	for _, s := range params.Schema() {
		e := widget.NewEntry()
		current, ok := values[s.Name]
		if !ok {
			current = s.Default
		}
		e.SetText(formatValue(s, current))
		hint := s.Kind.String()
		if s.Unit != "" {
			hint += ", " + s.Unit
		}
		if s.Bound {
			hint += ", live"
		}
		entries[s.Name] = e
		form.AppendItem(&widget.FormItem{Text: s.Name, Widget: e, HintText: hint})
	}

	collect := func() (map[string]float64, error) {
		text := make(map[string]string, len(entries))
		for name, e := range entries {
			text[name] = e.Text
		}
		return parseEntries(text)
	}

	check := widget.NewButton("Validate", func() {
		if _, err := collect(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		dialog.ShowInformation("Parameters", "All parameters are valid.", w)
	})
	save := widget.NewButton("Save", func() {
		values, err := collect()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := saveValues(v, values, path); err != nil {
			dialog.ShowError(err, w)
			return
		}
		logger.Info("Saved stimulus parameters", zap.String("file", path))
		dialog.ShowInformation("Parameters", fmt.Sprintf("Saved to %s", path), w)
	})
	save.Importance = widget.HighImportance

	header := container.NewVBox(container.NewCenter(title), description)
	buttons := container.NewHBox(layout.NewSpacer(), check, save)
	w.SetContent(container.NewBorder(header, buttons, nil, nil, container.NewVScroll(form)))
	w.ShowAndRun()
	return nil
}
