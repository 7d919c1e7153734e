package gui

import (
	"context"
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/sampler"
)

// autoScreen holds the widgets of the auto generation screen
type autoScreen struct {
	sliders     map[card.Category]*widget.Slider
	values      map[card.Category]*widget.Label
	avoid       *widget.Check
	total       *widget.Label
	generateBtn *ttwidget.Button
	progress    *widget.ProgressBarInfinite
}

// waitDelay pauses for d unless ctx ends first
func waitDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// countsFromSliders converts slider positions to word counts within 0..10
func countsFromSliders(values map[card.Category]float64) map[card.Category]int {
	counts := make(map[card.Category]int, len(card.AllCategories))
	for _, category := range card.AllCategories {
		n := int(math.Round(values[category]))
		counts[category] = max(0, min(n, sampler.MaxPerCategory))
	}
	return counts
}

func totalCount(counts map[card.Category]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// buildAutoScreen creates the sliders screen
func (a *Application) buildAutoScreen() fyne.CanvasObject {
	s := &autoScreen{
		sliders: make(map[card.Category]*widget.Slider),
		values:  make(map[card.Category]*widget.Label),
	}
	a.auto = s

	defaults := a.settings.Generate.Counts
	rows := container.NewVBox()
	for _, category := range card.AllCategories {
		category := category

		value := widget.NewLabel("")
		slider := widget.NewSlider(0, sampler.MaxPerCategory)
		slider.Step = 1
		slider.OnChanged = func(v float64) {
			value.SetText(fmt.Sprintf("%d", int(v)))
			a.updateAutoTotal()
		}
		s.sliders[category] = slider
		s.values[category] = value

		label := widget.NewLabel(titleCase(category.Plural()))
		label.TextStyle = fyne.TextStyle{Bold: true}
		rows.Add(container.NewBorder(nil, nil, container.NewGridWrap(fyne.NewSize(110, 36), label), value, slider))
	}

	s.avoid = widget.NewCheck("Avoid words from saved sets", nil)
	s.avoid.SetChecked(a.settings.Generate.AvoidDuplicates)

	s.total = widget.NewLabel("")
	s.total.TextStyle = fyne.TextStyle{Italic: true}

	recommendedBtn := ttwidget.NewButtonWithIcon("Recommended", theme.ViewRestoreIcon(), func() {
		a.setSliders(sampler.RecommendedCounts())
	})
	recommendedBtn.SetToolTip("3 nouns, 3 adjectives, 2 verbs and 2 adverbs")

	s.generateBtn = ttwidget.NewButtonWithIcon("Generate", theme.MediaPlayIcon(), a.onGenerate)
	s.generateBtn.Importance = widget.HighImportance
	s.generateBtn.SetToolTip("Replace the working deck with new words (g)")

	s.progress = widget.NewProgressBarInfinite()
	s.progress.Stop()
	s.progress.Hide()

	a.setSliders(defaults)

	heading := widget.NewLabel("Auto generate ISEE flashcards")
	heading.TextStyle = fyne.TextStyle{Bold: true}

	return container.NewVBox(
		heading,
		widget.NewLabel(fmt.Sprintf("Pick up to %d words per category.", sampler.MaxPerCategory)),
		widget.NewSeparator(),
		rows,
		s.avoid,
		s.total,
		container.NewHBox(recommendedBtn, s.generateBtn),
		s.progress,
	)
}

func (a *Application) setSliders(counts map[card.Category]int) {
	for category, slider := range a.auto.sliders {
		slider.SetValue(float64(counts[category]))
		a.auto.values[category].SetText(fmt.Sprintf("%d", counts[category]))
	}
	a.updateAutoTotal()
}

func (a *Application) sliderCounts() map[card.Category]int {
	values := make(map[card.Category]float64, len(a.auto.sliders))
	for category, slider := range a.auto.sliders {
		values[category] = slider.Value
	}
	return countsFromSliders(values)
}

func (a *Application) updateAutoTotal() {
	if a.auto == nil || a.auto.total == nil {
		return
	}
	total := totalCount(a.sliderCounts())
	a.auto.total.SetText(fmt.Sprintf("%d flashcards", total))
	if a.auto.generateBtn != nil {
		if total == 0 {
			a.auto.generateBtn.Disable()
		} else {
			a.auto.generateBtn.Enable()
		}
	}
}

// onGenerate queues the delayed generation so the window stays responsive
func (a *Application) onGenerate() {
	if a.queue.Busy() {
		return
	}

	counts := a.sliderCounts()
	avoid := a.auto.avoid.Checked
	delay := a.settings.Generate.Delay

	a.auto.generateBtn.Disable()
	a.auto.progress.Show()
	a.auto.progress.Start()
	a.updateStatus(fmt.Sprintf("Generating %d flashcards...", totalCount(counts)))

	a.runJob("generate", func(ctx context.Context) error {
		if err := waitDelay(ctx, delay); err != nil {
			return err
		}
		_, err := a.session.Generate(ctx, counts, avoid)
		return err
	}, func(err error) {
		a.auto.progress.Stop()
		a.auto.progress.Hide()
		a.updateAutoTotal()
		if err != nil {
			a.showError(fmt.Errorf("failed to generate flashcards: %w", err))
			return
		}
		a.showPreview()
	})
}
