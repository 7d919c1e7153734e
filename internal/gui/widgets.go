package gui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// CardTile shows one side of a flashcard. Tapping it turns the card over.
type CardTile struct {
	widget.BaseWidget

	card    card.Card
	flipped bool

	// OnFlip is called after the tile was turned over by a tap
	OnFlip func(flipped bool)

	border    *canvas.Rectangle
	title     *widget.Label
	detail    *widget.Label
	container *fyne.Container
}

// NewCardTile creates a tile showing the front of c
func NewCardTile(c card.Card) *CardTile {
	t := &CardTile{card: c}

	t.border = canvas.NewRectangle(color.Transparent)
	t.border.StrokeColor = theme.Color(theme.ColorNameForeground)
	t.border.StrokeWidth = 1
	t.border.CornerRadius = 4

	t.title = widget.NewLabel("")
	t.title.Alignment = fyne.TextAlignCenter
	t.title.Wrapping = fyne.TextWrapWord

	t.detail = widget.NewLabel("")
	t.detail.Alignment = fyne.TextAlignCenter
	t.detail.Wrapping = fyne.TextWrapWord

	t.container = container.NewStack(
		t.border,
		container.NewPadded(container.NewVBox(t.title, t.detail)),
	)

	t.ExtendBaseWidget(t)
	t.update()
	return t
}

// CreateRenderer implements fyne.Widget
func (t *CardTile) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.container)
}

// MinSize keeps tiles readable in small windows
func (t *CardTile) MinSize() fyne.Size {
	return t.BaseWidget.MinSize().Max(fyne.NewSize(200, 110))
}

// Tapped implements fyne.Tappable
func (t *CardTile) Tapped(*fyne.PointEvent) {
	t.SetFlipped(!t.flipped)
	if t.OnFlip != nil {
		t.OnFlip(t.flipped)
	}
}

// Card returns the displayed card
func (t *CardTile) Card() card.Card {
	return t.card
}

// SetCard replaces the displayed card and keeps the side
func (t *CardTile) SetCard(c card.Card) {
	t.card = c
	t.update()
}

// Flipped reports whether the back is shown
func (t *CardTile) Flipped() bool {
	return t.flipped
}

// SetFlipped shows the back (true) or the front (false)
func (t *CardTile) SetFlipped(flipped bool) {
	t.flipped = flipped
	t.update()
}

func (t *CardTile) update() {
	if t.flipped {
		t.title.TextStyle = fyne.TextStyle{}
		t.title.SetText(t.card.Definition)
		t.detail.TextStyle = fyne.TextStyle{Italic: true}
		if t.card.Example != "" {
			t.detail.SetText(`"` + t.card.Example + `"`)
		} else {
			t.detail.SetText("")
		}
		return
	}

	t.title.TextStyle = fyne.TextStyle{Bold: true}
	t.title.SetText(strings.ToUpper(t.card.Word))
	t.detail.TextStyle = fyne.TextStyle{}
	t.detail.SetText("(" + string(t.card.Category) + ")")
}
