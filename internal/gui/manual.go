package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// manualScreen holds the widgets of the manual entry screen
type manualScreen struct {
	word       *EscapeEntry
	definition *EscapeEntry
	example    *EscapeEntry
	category   *widget.Select
	level      *widget.SelectEntry
	addBtn     *ttwidget.Button
	list       *widget.List
	count      *widget.Label
	cards      []card.Card
}

func categoryOptions() []string {
	options := make([]string, len(card.AllCategories))
	for i, category := range card.AllCategories {
		options[i] = string(category)
	}
	return options
}

func levelOptions() []string {
	options := make([]string, 0, len(card.ManualLevels)+1)
	for _, level := range card.ManualLevels {
		options = append(options, string(level))
	}
	return append(options, string(card.LevelISEE))
}

// manualCard builds a card from the form values
func manualCard(word, definition, example, category, level string) card.Card {
	c := card.Card{
		Word:       word,
		Definition: definition,
		Example:    example,
		Category:   card.Category(category),
		Level:      card.Level(level),
	}
	if c.Category == "" {
		c.Category = card.Noun
	}
	if c.Level == "" {
		c.Level = card.LevelMedium
	}
	return c
}

// buildManualScreen creates the manual entry form with the deck list
func (a *Application) buildManualScreen() fyne.CanvasObject {
	s := &manualScreen{}
	a.manual = s

	unfocus := func() { a.window.Canvas().Unfocus() }

	s.word = NewEscapeEntry("Word, e.g. candid")
	s.word.SetOnEscape(unfocus)
	s.definition = NewEscapeMultiLineEntry("Definition")
	s.definition.SetOnEscape(unfocus)
	s.definition.SetMinRowsVisible(2)
	s.example = NewEscapeMultiLineEntry("Example sentence (optional)")
	s.example.SetOnEscape(unfocus)
	s.example.SetMinRowsVisible(2)

	s.category = widget.NewSelect(categoryOptions(), nil)
	s.category.SetSelected(string(card.Noun))
	s.level = widget.NewSelectEntry(levelOptions())
	s.level.SetText(string(card.LevelMedium))

	s.word.OnSubmitted = func(string) { a.onAddManualCard() }

	s.addBtn = ttwidget.NewButtonWithIcon("Add flashcard", theme.ContentAddIcon(), a.onAddManualCard)
	s.addBtn.Importance = widget.HighImportance
	s.addBtn.SetToolTip("Word and definition are required")

	form := widget.NewForm(
		widget.NewFormItem("Word", s.word),
		widget.NewFormItem("Definition", s.definition),
		widget.NewFormItem("Example", s.example),
		widget.NewFormItem("Category", s.category),
		widget.NewFormItem("Level", s.level),
	)

	s.cards = a.session.Cards()
	s.count = widget.NewLabel("")
	s.list = widget.NewList(
		func() int { return len(s.cards) },
		func() fyne.CanvasObject {
			remove := ttwidget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.SetToolTip("Remove card")
			return container.NewHBox(widget.NewLabel(""), layout.NewSpacer(), remove)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(s.cards) {
				return
			}
			c := s.cards[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(fmt.Sprintf("%s (%s): %s", c.Word, c.Category, c.Definition))
			row.Objects[2].(*ttwidget.Button).OnTapped = func() {
				a.onRemoveCard(c.ID, a.refreshManualList)
			}
		},
	)
	a.refreshManualList()

	previewBtn := widget.NewButtonWithIcon("View & print", theme.VisibilityIcon(), a.showPreview)

	heading := widget.NewLabel("Create your own flashcards")
	heading.TextStyle = fyne.TextStyle{Bold: true}

	listArea := container.NewBorder(
		container.NewHBox(s.count, layout.NewSpacer(), previewBtn),
		nil, nil, nil,
		container.NewGridWrap(fyne.NewSize(760, 260), s.list),
	)

	return container.NewVBox(
		heading,
		form,
		container.NewHBox(layout.NewSpacer(), s.addBtn),
		widget.NewSeparator(),
		listArea,
	)
}

// onAddManualCard validates the form and appends the card
func (a *Application) onAddManualCard() {
	s := a.manual
	c := manualCard(s.word.Text, s.definition.Text, s.example.Text, s.category.Selected, s.level.Text)

	if _, err := a.session.Add(a.ctx, c); err != nil {
		a.showError(fmt.Errorf("failed to add card: %w", err))
		return
	}

	// Keep category and level for the next card
	s.word.SetText("")
	s.definition.SetText("")
	s.example.SetText("")
	a.window.Canvas().Focus(s.word)

	a.refreshManualList()
}

func (a *Application) refreshManualList() {
	s := a.manual
	if s == nil {
		return
	}
	s.cards = a.session.Cards()
	s.count.SetText(fmt.Sprintf("Your flashcards (%d)", len(s.cards)))
	s.list.Refresh()
}

// onRemoveCard removes a card and runs refresh afterwards
func (a *Application) onRemoveCard(id string, refresh func()) {
	if err := a.session.Remove(a.ctx, id); err != nil {
		a.showError(fmt.Errorf("failed to remove card: %w", err))
		return
	}
	a.updateStatus("Card removed")
	refresh()
}
