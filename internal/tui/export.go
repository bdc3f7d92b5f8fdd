package tui

import (
	"errors"
	"fmt"

	"github.com/rivo/tview"

	"github.com/reviewdeck/reviewdeck/internal/services"
)

// startExport launches the full-source export with a progress modal
func (a *App) startExport() {
	if a.exportService.Exporting() {
		a.errorHandler.ShowWarning(a.ctx, "An export is already running")
		return
	}

	progress := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Preparing export...")
	progress.SetBorder(true).SetTitle(" Exporting ")

	form := tview.NewForm().AddButton("Cancel", func() {
		a.exportService.CancelExport()
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(progress, 0, 1, false).
		AddItem(form, 3, 0, true)

	a.pages.AddPage(pageExport, modal(flex, 50, 9), true, true)
	a.SetFocus(form)

	go a.runExport(progress)
}

func (a *App) runExport(progress *tview.TextView) {
	onProgress := func(p services.DownloadProgress) {
		a.QueueUpdateDraw(func() {
			if p.Total == 0 {
				progress.SetText("Preparing export...")
				return
			}
			progress.SetText(fmt.Sprintf("Downloaded page %d of %d", p.Current, p.Total))
		})
	}

	result, err := a.exportService.ExportAll(a.ctx, onProgress)

	a.QueueUpdateDraw(func() {
		a.pages.RemovePage(pageExport)
	})

	if err != nil {
		switch {
		case services.IsCancel(err):
			a.errorHandler.ShowWarning(a.ctx, "Export cancelled")
		case services.IsAuthError(err):
			a.forceLogout()
		case errors.Is(err, services.ErrExportActive):
			a.errorHandler.ShowWarning(a.ctx, "An export is already running")
		case errors.Is(err, services.ErrNoData):
			a.errorHandler.ShowWarning(a.ctx, "Nothing to export")
		default:
			a.errorHandler.HandleError(a.ctx, err, "Export failed")
		}
		return
	}

	a.errorHandler.ShowSuccess(a.ctx, fmt.Sprintf("Exported %d rows to %s", result.RowCount, result.Path))
}
