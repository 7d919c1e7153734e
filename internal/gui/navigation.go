package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardfactory/internal/card"
	pagelayout "codeberg.org/snonux/cardfactory/internal/layout"
)

// previewScreen holds the widgets and view state of the grid preview
type previewScreen struct {
	pages     []pagelayout.Page
	pageIndex int
	allFlip   bool
	flipped   map[string]bool // per-card side, keyed by card ID

	grid        *fyne.Container
	pageLabel   *widget.Label
	prevPageBtn *ttwidget.Button
	nextPageBtn *ttwidget.Button
	flipAllBtn  *ttwidget.Button
}

// clampPage keeps index within 0..count-1
func clampPage(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// buildPreviewScreen creates the paged card grid with its toolbar
func (a *Application) buildPreviewScreen() fyne.CanvasObject {
	s := a.preview
	if s == nil {
		s = &previewScreen{allFlip: a.settings.AutoFlip, flipped: make(map[string]bool)}
		a.preview = s
	}

	s.prevPageBtn = ttwidget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.onPrevPage)
	s.prevPageBtn.SetToolTip("Previous page (←)")
	s.nextPageBtn = ttwidget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.onNextPage)
	s.nextPageBtn.SetToolTip("Next page (→)")
	s.flipAllBtn = ttwidget.NewButtonWithIcon("Flip all", theme.ViewRefreshIcon(), a.onFlipAll)
	s.flipAllBtn.SetToolTip("Show all fronts or all backs (f)")

	saveBtn := ttwidget.NewButtonWithIcon("", theme.DocumentSaveIcon(), a.onSaveSet)
	saveBtn.SetToolTip("Save set (s)")
	loadBtn := ttwidget.NewButtonWithIcon("", theme.FolderOpenIcon(), a.onLoadSet)
	loadBtn.SetToolTip("Load or delete saved sets (l)")
	exportBtn := ttwidget.NewButtonWithIcon("Export PDF", theme.DownloadIcon(), a.onExport)
	exportBtn.Importance = widget.HighImportance
	exportBtn.SetToolTip("Export double-sided PDF (x)")
	addBtn := ttwidget.NewButtonWithIcon("", theme.ContentAddIcon(), a.showManual)
	addBtn.SetToolTip("Add cards")

	s.pageLabel = widget.NewLabel("")
	s.grid = container.NewGridWithColumns(a.settings.Layout.Columns)

	toolbar := container.NewHBox(
		s.prevPageBtn,
		s.pageLabel,
		s.nextPageBtn,
		widget.NewSeparator(),
		s.flipAllBtn,
		layout.NewSpacer(),
		addBtn,
		saveBtn,
		loadBtn,
		exportBtn,
	)

	hint := widget.NewLabel("Tap a card to flip it. Backs print mirrored so both sides line up.")
	hint.TextStyle = fyne.TextStyle{Italic: true}

	a.refreshPreview()

	return container.NewBorder(
		container.NewVBox(toolbar, hint),
		nil, nil, nil,
		s.grid,
	)
}

// refreshPreview re-paginates the deck and redraws the current page
func (a *Application) refreshPreview() {
	s := a.preview
	if s == nil || s.grid == nil {
		return
	}

	s.pages = a.session.Pages()
	s.pageIndex = clampPage(s.pageIndex, len(s.pages))
	a.updateNavigation()

	s.grid.Objects = nil
	if len(s.pages) == 0 {
		s.grid.Refresh()
		return
	}

	page := s.pages[s.pageIndex]
	for _, row := range page.Grid(pagelayout.Front) {
		for _, slot := range row {
			if slot == nil {
				s.grid.Add(layout.NewSpacer())
				continue
			}
			s.grid.Add(a.cardCell(slot.Card))
		}
	}
	s.grid.Refresh()
}

// cardCell creates a tile with its edit, regenerate and remove buttons
func (a *Application) cardCell(c card.Card) fyne.CanvasObject {
	s := a.preview
	tile := NewCardTile(c)
	tile.SetFlipped(a.isFlipped(c.ID))
	tile.OnFlip = func(flipped bool) {
		s.flipped[c.ID] = flipped
	}

	editBtn := ttwidget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
		a.onEditCard(c)
	})
	editBtn.SetToolTip("Edit card")
	regenerateBtn := ttwidget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() {
		a.onRegenerateCard(c.ID)
	})
	regenerateBtn.SetToolTip("Replace with another word of the same category")
	removeBtn := ttwidget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		a.onRemoveCard(c.ID, a.afterPreviewChange)
	})
	removeBtn.Importance = widget.DangerImportance
	removeBtn.SetToolTip("Remove card")

	actions := container.NewHBox(layout.NewSpacer(), editBtn, regenerateBtn, removeBtn)
	return container.NewBorder(nil, actions, nil, nil, tile)
}

func (a *Application) isFlipped(id string) bool {
	s := a.preview
	if flipped, ok := s.flipped[id]; ok {
		return flipped
	}
	return s.allFlip
}

// afterPreviewChange redraws the preview or returns home when the deck is empty
func (a *Application) afterPreviewChange() {
	if a.session.Len() == 0 {
		a.showHome()
		return
	}
	a.refreshPreview()
}

// updateNavigation updates the page label and the navigation button states
func (a *Application) updateNavigation() {
	s := a.preview
	count := len(s.pages)

	if count == 0 {
		s.pageLabel.SetText("No pages")
		s.prevPageBtn.Disable()
		s.nextPageBtn.Disable()
		return
	}

	s.pageLabel.SetText(fmt.Sprintf("Page %d of %d (%d cards)", s.pageIndex+1, count, a.session.Len()))

	// Disable at boundaries
	if s.pageIndex <= 0 {
		s.prevPageBtn.Disable()
	} else {
		s.prevPageBtn.Enable()
	}
	if s.pageIndex >= count-1 {
		s.nextPageBtn.Disable()
	} else {
		s.nextPageBtn.Enable()
	}
}

// onPrevPage shows the previous page
func (a *Application) onPrevPage() {
	if s := a.preview; s != nil && s.pageIndex > 0 {
		s.pageIndex--
		a.refreshPreview()
	}
}

// onNextPage shows the next page
func (a *Application) onNextPage() {
	if s := a.preview; s != nil && s.pageIndex < len(s.pages)-1 {
		s.pageIndex++
		a.refreshPreview()
	}
}

// onFlipAll turns every card to the same side, dropping per-card flips
func (a *Application) onFlipAll() {
	s := a.preview
	if s == nil {
		return
	}
	s.allFlip = !s.allFlip
	s.flipped = make(map[string]bool)
	a.refreshPreview()
}

// onRegenerateCard swaps a card for another bank word
func (a *Application) onRegenerateCard(id string) {
	replaced, err := a.session.Regenerate(a.ctx, id)
	if err != nil {
		a.showError(fmt.Errorf("failed to regenerate card: %w", err))
		return
	}
	delete(a.preview.flipped, id)
	a.logger.Debug("card regenerated in preview", "id", id, "word", replaced.Word)
	a.refreshPreview()
}

// onEditCard shows the edit form for c
func (a *Application) onEditCard(c card.Card) {
	word := NewEscapeEntry("Word")
	word.SetText(c.Word)
	definition := NewEscapeMultiLineEntry("Definition")
	definition.SetText(c.Definition)
	definition.SetMinRowsVisible(3)
	example := NewEscapeMultiLineEntry("Example sentence")
	example.SetText(c.Example)
	example.SetMinRowsVisible(2)

	category := widget.NewSelect(categoryOptions(), nil)
	category.SetSelected(string(c.Category))
	level := widget.NewSelectEntry(levelOptions())
	level.SetText(string(c.Level))

	items := []*widget.FormItem{
		widget.NewFormItem("Word", word),
		widget.NewFormItem("Definition", definition),
		widget.NewFormItem("Example", example),
		widget.NewFormItem("Category", category),
		widget.NewFormItem("Level", level),
	}

	d := dialog.NewForm("Edit flashcard", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		edited := manualCard(word.Text, definition.Text, example.Text, category.Selected, level.Text)
		patch := card.Patch{
			Word:       &edited.Word,
			Definition: &edited.Definition,
			Example:    &edited.Example,
			Category:   &edited.Category,
			Level:      &edited.Level,
		}
		if _, err := a.session.Edit(a.ctx, c.ID, patch); err != nil {
			a.showError(fmt.Errorf("failed to edit card: %w", err))
			return
		}
		a.refreshPreview()
	}, a.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}
