package gui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/cardfactory/internal"
	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/processor"
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// Screen area and shared widgets
	screen           *fyne.Container
	statusLabel      *widget.Label
	queueStatusLabel *widget.Label
	logView          *LogViewer
	homeBtn          *ttwidget.Button
	helpBtn          *ttwidget.Button

	// Screens
	current screenID
	manual  *manualScreen
	auto    *autoScreen
	preview *previewScreen

	// Session and configuration
	settings processor.Settings
	session  *processor.Session
	logger   *slog.Logger

	// Background processing
	queue  *TaskQueue
	ctx    context.Context
	cancel context.CancelFunc
}

type screenID int

const (
	screenHome screenID = iota
	screenManual
	screenAuto
	screenPreview
)

// New creates the desktop application. The session is opened by Run.
func New(settings processor.Settings, logger *slog.Logger) *Application {
	a := &Application{
		app:      app.NewWithID("org.codeberg.snonux.cardfactory"),
		settings: settings,
		logView:  NewLogViewer(),
	}
	a.app.SetIcon(GetAppIcon())

	// Log records at info and above also go to the activity panel
	a.logger = teeLogger(logger, slog.NewTextHandler(a.logView, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	}))

	return a
}

// Run opens the session, shows the window and blocks until it is closed
func (a *Application) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	defer a.cancel()

	session, err := processor.Open(a.ctx, a.settings,
		processor.WithLogger(a.logger),
		processor.WithNotifier(a),
	)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	a.session = session
	defer session.Close()

	a.queue = NewTaskQueue(a.ctx)
	a.queue.SetCallbacks(a.onQueueStatusUpdate, a.onJobComplete)

	a.setupUI()
	a.window.ShowAndRun()
	return nil
}

// Notify implements processor.Notifier. Messages show in the status line
// and the activity panel.
func (a *Application) Notify(msg string) {
	a.logView.Notify(msg)
	fyne.Do(func() {
		if a.statusLabel != nil {
			a.statusLabel.SetText(msg)
		}
	})
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("cardfactory v%s - Printable Flashcards", internal.Version))
	a.window.Resize(fyne.NewSize(900, 760))

	a.homeBtn = ttwidget.NewButtonWithIcon("", theme.HomeIcon(), a.showHome)
	manualBtn := ttwidget.NewButtonWithIcon("", theme.ContentAddIcon(), a.showManual)
	autoBtn := ttwidget.NewButtonWithIcon("", theme.MediaPlayIcon(), a.showAuto)
	previewBtn := ttwidget.NewButtonWithIcon("", theme.VisibilityIcon(), a.showPreview)
	a.helpBtn = ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)

	toolbar := container.NewHBox(
		a.homeBtn,
		widget.NewSeparator(),
		manualBtn,
		autoBtn,
		previewBtn,
		widget.NewSeparator(),
		a.helpBtn,
	)

	a.statusLabel = widget.NewLabel("Ready")
	a.queueStatusLabel = widget.NewLabel("")
	a.queueStatusLabel.TextStyle = fyne.TextStyle{Italic: true}

	a.screen = container.NewStack()

	body := container.NewVSplit(container.NewScroll(a.screen), a.logView)
	body.SetOffset(0.8)

	content := container.NewBorder(
		container.NewVBox(toolbar, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), container.NewHBox(a.statusLabel, a.queueStatusLabel)),
		nil, nil,
		body,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	a.homeBtn.SetToolTip("Home")
	manualBtn.SetToolTip("Create your own (c)")
	autoBtn.SetToolTip("Auto generate (a)")
	previewBtn.SetToolTip("View & print (v)")
	a.helpBtn.SetToolTip("Show hotkeys (h)")

	a.window.SetOnClosed(func() {
		a.cancel()
		a.queue.Stop()
	})

	a.setupKeyboardShortcuts()

	if a.session.Len() > 0 {
		a.showPreview()
	} else {
		a.showHome()
	}
}

// setScreen replaces the visible screen
func (a *Application) setScreen(id screenID, obj fyne.CanvasObject) {
	a.current = id
	a.screen.Objects = []fyne.CanvasObject{obj}
	a.screen.Refresh()
	a.window.Canvas().Unfocus()
}

func (a *Application) showHome() {
	a.setScreen(screenHome, a.buildHomeScreen())
}

func (a *Application) showManual() {
	a.setScreen(screenManual, a.buildManualScreen())
}

func (a *Application) showAuto() {
	a.setScreen(screenAuto, a.buildAutoScreen())
}

func (a *Application) showPreview() {
	if a.session.Len() == 0 {
		dialog.ShowInformation("No Cards", "No flashcards yet. Create some or generate a set first!", a.window)
		return
	}
	a.setScreen(screenPreview, a.buildPreviewScreen())
}

// buildHomeScreen creates the mode selection screen
func (a *Application) buildHomeScreen() fyne.CanvasObject {
	title := widget.NewLabel("cardfactory")
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	subtitle := widget.NewLabel("Create vocabulary flashcards and print them double-sided.")
	subtitle.Alignment = fyne.TextAlignCenter

	manualBtn := widget.NewButtonWithIcon("Create your own", theme.ContentAddIcon(), a.showManual)
	autoBtn := widget.NewButtonWithIcon("Auto generate", theme.MediaPlayIcon(), a.showAuto)
	previewBtn := widget.NewButtonWithIcon(fmt.Sprintf("View & print (%d cards)", a.session.Len()), theme.VisibilityIcon(), a.showPreview)
	if a.session.Len() == 0 {
		previewBtn.Disable()
	}
	loadBtn := widget.NewButtonWithIcon("Load a saved set", theme.FolderOpenIcon(), a.onLoadSet)

	summary := widget.NewLabel(a.bankSummary())
	summary.Alignment = fyne.TextAlignCenter
	summary.TextStyle = fyne.TextStyle{Italic: true}

	return container.NewCenter(container.NewVBox(
		title,
		subtitle,
		widget.NewSeparator(),
		manualBtn,
		autoBtn,
		previewBtn,
		loadBtn,
		widget.NewSeparator(),
		summary,
	))
}

func (a *Application) bankSummary() string {
	bank := a.session.Bank()
	stats := a.session.Stats()
	return fmt.Sprintf("Word bank: %d words. Working deck: %d nouns, %d adjectives, %d verbs, %d adverbs.",
		bank.Size(), stats[card.Noun], stats[card.Adjective], stats[card.Verb], stats[card.Adverb])
}

// runJob runs fn on the task queue and calls done on the UI thread
func (a *Application) runJob(name string, fn func(ctx context.Context) error, done func(err error)) {
	a.queue.Add(name, func(ctx context.Context) error {
		err := fn(ctx)
		fyne.Do(func() {
			done(err)
		})
		return err
	})
}

func (a *Application) onQueueStatusUpdate(job *Job) {
	fyne.Do(a.updateQueueStatus)
}

func (a *Application) onJobComplete(job *Job) {
	if job.Error != nil {
		a.logger.Debug("job failed", "job", job.Name, "error", job.Error)
	}
	fyne.Do(a.updateQueueStatus)
}

// updateQueueStatus shows running background work next to the status line
func (a *Application) updateQueueStatus() {
	queued, processing, _, _ := a.queue.GetQueueStatus()
	switch {
	case processing > 0 && queued > 0:
		a.queueStatusLabel.SetText(fmt.Sprintf("(working, %d waiting)", queued))
	case processing > 0:
		a.queueStatusLabel.SetText("(working)")
	default:
		a.queueStatusLabel.SetText("")
	}
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
	a.updateStatus("Error: " + err.Error())
	a.logger.Error("operation failed", "error", err)
}

// onShowHotkeys shows the keyboard shortcuts
func (a *Application) onShowHotkeys() {
	hotkeys := `## Screens
**c** Create your own
**a** Auto generate
**v** View & print
**Esc** Unfocus field

## Auto generate
**g** Generate

## View & print
**←** Previous page
**→** Next page
**f** Flip all cards
**s** Save set
**l** Load set
**x** Export PDF

## Help
**h** Show hotkeys
**q** Quit application

Tap a card to flip it.`

	content := widget.NewRichTextFromMarkdown(hotkeys)
	content.Wrapping = fyne.TextWrapWord

	scroll := container.NewScroll(container.NewPadded(content))
	scroll.SetMinSize(fyne.NewSize(420, 420))

	dialog.NewCustom("Keyboard Shortcuts", "Close", scroll, a.window).Show()
}

// setupKeyboardShortcuts handles single-key shortcuts while no field has focus
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			a.window.Canvas().Unfocus()
			return
		}
		if a.window.Canvas().Focused() != nil {
			return
		}
		a.handleShortcutKey(ev.Name)
	})
}

// handleShortcutKey handles the actual shortcut action
func (a *Application) handleShortcutKey(key fyne.KeyName) {
	switch key {
	case fyne.KeyC:
		a.showManual()
	case fyne.KeyA:
		a.showAuto()
	case fyne.KeyV:
		a.showPreview()
	case fyne.KeyH:
		a.onShowHotkeys()
	case fyne.KeyQ:
		a.window.Close()
	case fyne.KeyG:
		if a.current == screenAuto && !a.auto.generateBtn.Disabled() {
			a.onGenerate()
		}
	case fyne.KeyLeft:
		if a.current == screenPreview {
			a.onPrevPage()
		}
	case fyne.KeyRight:
		if a.current == screenPreview {
			a.onNextPage()
		}
	case fyne.KeyF:
		if a.current == screenPreview {
			a.onFlipAll()
		}
	case fyne.KeyS:
		if a.current == screenPreview {
			a.onSaveSet()
		}
	case fyne.KeyL:
		a.onLoadSet()
	case fyne.KeyX:
		if a.current == screenPreview {
			a.onExport()
		}
	}
}

// titleCase upper-cases the first letter
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
