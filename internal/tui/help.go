package tui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/reviewdeck/reviewdeck/internal/version"
)

// showHelp opens the keyboard shortcut reference
func (a *App) showHelp() {
	k := a.Keys

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", version.GetVersionString())
	bindings := []struct{ key, action string }{
		{k.Search, "Focus the search field"},
		{k.ClearSearch, "Clear the search"},
		{"←/→ or " + k.PrevPage + "/" + k.NextPage, "Previous / next page"},
		{k.Upload, "Upload a review sheet"},
		{k.ClearUpload, "Leave the uploaded view"},
		{k.Export, "Export all pages to a spreadsheet"},
		{k.Cancel, "Cancel the running upload or export"},
		{k.Refresh, "Refresh the current page"},
		{k.History, "Recent searches"},
		{k.Logout, "Sign out"},
		{k.Quit, "Quit"},
	}
	for _, binding := range bindings {
		fmt.Fprintf(&b, "  %-14s %s\n", binding.key, binding.action)
	}

	text := tview.NewTextView().SetText(b.String())
	text.SetBorder(true)
	text.SetTitle(" Help ")

	form := tview.NewForm().AddButton("Close", func() {
		a.pages.RemovePage(pageHelp)
		a.SetFocus(a.table)
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(text, 0, 1, false).
		AddItem(form, 3, 0, true)

	a.pages.AddPage(pageHelp, modal(flex, 60, 20), true, true)
	a.SetFocus(form)
}
