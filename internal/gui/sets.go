package gui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/cardfactory/internal"
)

// Export formats offered by the export dialog
const (
	formatPDF  = "Double-sided PDF"
	formatAPKG = "Anki package (APKG)"
	formatCSV  = "Anki CSV"
)

// onSaveSet asks for a name and saves the working deck under it
func (a *Application) onSaveSet() {
	if a.session.Len() == 0 {
		dialog.ShowInformation("No Cards", "There are no flashcards to save.", a.window)
		return
	}

	name := widget.NewEntry()
	name.SetPlaceHolder("e.g. ISEE week 1")
	name.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("name must not be empty")
		}
		return nil
	}

	d := dialog.NewForm("Save flashcard set", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", name)},
		func(ok bool) {
			if !ok {
				return
			}
			if err := a.session.SaveSet(a.ctx, name.Text); err != nil {
				a.showError(fmt.Errorf("failed to save set: %w", err))
			}
		}, a.window)
	d.Resize(fyne.NewSize(400, 160))
	d.Show()
	a.window.Canvas().Focus(name)
}

// onLoadSet lists the saved sets with load and delete actions
func (a *Application) onLoadSet() {
	sets, err := a.session.ListSets(a.ctx)
	if err != nil {
		a.showError(fmt.Errorf("failed to list saved sets: %w", err))
		return
	}
	if len(sets) == 0 {
		dialog.ShowInformation("Saved Sets", "No saved sets yet. Save the working deck from the preview first.", a.window)
		return
	}

	var d dialog.Dialog
	rows := container.NewVBox()
	for _, set := range sets {
		name := set.Name
		label := widget.NewLabel(fmt.Sprintf("%s (%d cards)", name, len(set.Cards)))

		loadBtn := widget.NewButtonWithIcon("Load", theme.FolderOpenIcon(), func() {
			d.Hide()
			if _, err := a.session.LoadSet(a.ctx, name); err != nil {
				a.showError(fmt.Errorf("failed to load set: %w", err))
				return
			}
			a.preview = nil
			a.showPreview()
		})
		deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			d.Hide()
			a.confirmDeleteSet(name)
		})
		deleteBtn.Importance = widget.DangerImportance

		rows.Add(container.NewHBox(label, layout.NewSpacer(), loadBtn, deleteBtn))
	}

	scroll := container.NewVScroll(rows)
	scroll.SetMinSize(fyne.NewSize(460, 280))

	d = dialog.NewCustom("Saved Sets", "Close", scroll, a.window)
	d.Show()
}

// confirmDeleteSet deletes every set with name after confirmation
func (a *Application) confirmDeleteSet(name string) {
	msg := fmt.Sprintf("Delete every saved set named %q? This cannot be undone.", name)
	dialog.ShowConfirm("Delete Set", msg, func(ok bool) {
		if !ok {
			return
		}
		if err := a.session.DeleteSet(a.ctx, name); err != nil {
			a.showError(fmt.Errorf("failed to delete set: %w", err))
		}
	}, a.window)
}

// onExport asks for format and directory, then exports in the background
func (a *Application) onExport() {
	if a.session.Len() == 0 {
		dialog.ShowInformation("No Cards", "There are no flashcards to export.", a.window)
		return
	}

	formatSelect := widget.NewSelect([]string{formatPDF, formatAPKG, formatCSV}, nil)
	formatSelect.SetSelected(formatPDF)

	deckNameEntry := widget.NewEntry()
	deckNameEntry.SetText("cardfactory")

	selectedDir := a.settings.ExportDir
	dirLabel := widget.NewLabel(selectedDir)
	dirButton := widget.NewButton("Browse...", func() {
		folderDialog := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil || dir == nil {
				return
			}
			selectedDir = dir.Path()
			dirLabel.SetText(selectedDir)
		}, a.window)

		// Try to set initial directory
		if uri, err := fynestorage.ParseURI("file://" + selectedDir); err == nil {
			if listableURI, err := fynestorage.ListerForURI(uri); err == nil {
				folderDialog.SetLocation(listableURI)
			}
		}

		folderDialog.Show()
	})

	items := []*widget.FormItem{
		widget.NewFormItem("Format", formatSelect),
		widget.NewFormItem("Deck name", deckNameEntry),
		widget.NewFormItem("Directory", container.NewBorder(nil, nil, nil, dirButton, dirLabel)),
	}

	d := dialog.NewForm("Export Flashcards", "Export", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		a.startExport(formatSelect.Selected, selectedDir, deckNameEntry.Text)
	}, a.window)
	d.Resize(fyne.NewSize(560, 240))
	d.Show()
}

// exportTarget returns the output file for a format inside dir
func exportTarget(format, dir, pdfName, deckName string) string {
	switch format {
	case formatAPKG:
		name := strings.TrimSpace(deckName)
		if name == "" {
			name = "cardfactory"
		}
		return filepath.Join(dir, internal.SanitizeFilename(name)+".apkg")
	case formatCSV:
		return filepath.Join(dir, "cardfactory_anki.csv")
	default:
		return filepath.Join(dir, pdfName)
	}
}

func (a *Application) startExport(format, dir, deckName string) {
	path := exportTarget(format, dir, a.settings.ExportFilename, deckName)
	a.updateStatus("Exporting...")

	a.runJob("export", func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		switch format {
		case formatAPKG:
			return a.session.ExportAPKG(path, deckName)
		case formatCSV:
			return a.session.ExportCSV(path)
		default:
			_, err := a.session.ExportPDFTo(ctx, path)
			return err
		}
	}, func(err error) {
		if err != nil {
			a.showError(fmt.Errorf("failed to export: %w", err))
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Flashcards exported to:\n%s", path), a.window)
	})
}
