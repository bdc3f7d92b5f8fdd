package tui

import (
	"fmt"

	"github.com/rivo/tview"
)

const historyLimit = 20

// showHistory opens the recent-searches picker
func (a *App) showHistory() {
	if a.historyService == nil {
		a.errorHandler.ShowWarning(a.ctx, "Search history is not available")
		return
	}

	entries, err := a.historyService.RecentSearches(a.ctx, historyLimit)
	if err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Could not load search history")
		return
	}
	if len(entries) == 0 {
		a.errorHandler.ShowInfo(a.ctx, "No searches recorded yet")
		return
	}

	list := tview.NewList().ShowSecondaryText(true)
	list.SetBorder(true)
	list.SetTitle(" Recent Searches ")

	for _, entry := range entries {
		query := entry.Query
		list.AddItem(query, fmt.Sprintf("used %d time(s)", entry.UseCount), 0, func() {
			a.pages.RemovePage(pageHistory)
			a.searchInput.SetText(query) // fires setQuery via the changed func
			a.SetFocus(a.table)
		})
	}

	list.SetDoneFunc(func() {
		a.pages.RemovePage(pageHistory)
		a.SetFocus(a.table)
	})

	a.pages.AddPage(pageHistory, modal(list, 60, 16), true, true)
	a.SetFocus(list)
}
