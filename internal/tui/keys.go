package tui

import (
	"github.com/gdamore/tcell/v2"
)

// bindKeys installs the global input capture
func (a *App) bindKeys() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Modals and the search field own their keys.
		front, _ := a.pages.GetFrontPage()
		if front != pageMain {
			return event
		}
		if a.GetFocus() == a.searchInput {
			if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyEnter {
				a.SetFocus(a.table)
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyLeft:
			a.prevPage()
			return nil
		case tcell.KeyRight:
			a.nextPage()
			return nil
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		switch string(event.Rune()) {
		case a.Keys.Search:
			a.SetFocus(a.searchInput)
		case a.Keys.ClearSearch:
			a.searchInput.SetText("") // fires setQuery("") via the changed func
		case a.Keys.Upload:
			a.showUploadPrompt()
		case a.Keys.ClearUpload:
			a.clearUpload()
		case a.Keys.Export:
			a.startExport()
		case a.Keys.Cancel:
			a.cancelActiveOperation()
		case a.Keys.Refresh:
			a.scheduler.RefreshNow()
		case a.Keys.NextPage:
			a.nextPage()
		case a.Keys.PrevPage:
			a.prevPage()
		case a.Keys.History:
			a.showHistory()
		case a.Keys.Logout:
			a.logout()
		case a.Keys.Help:
			a.showHelp()
		case a.Keys.Quit:
			a.Stop()
		default:
			return event
		}
		return nil
	})
}

// cancelActiveOperation aborts whichever long-running operation is in
// flight; uploads take priority since they change state on completion.
func (a *App) cancelActiveOperation() {
	if a.uploadService.Uploading() {
		a.uploadService.CancelUpload()
		return
	}
	if a.exportService.Exporting() {
		a.exportService.CancelExport()
	}
}
