package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/reviewdeck/reviewdeck/internal/config"
	"github.com/reviewdeck/reviewdeck/internal/services"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

const (
	pageMain       = "main"
	pageHelp       = "help"
	pageUpload     = "upload"
	pageValidation = "validation"
	pageExport     = "export"
	pageHistory    = "history"
)

var tableHeader = []string{"Title", "Conference", "Decision", "Precheck", "First Set"}

// initViews builds the widget tree
func (a *App) initViews() {
	theme := a.currentTheme

	a.titleView = tview.NewTextView().SetDynamicColors(true)
	a.titleView.SetTextColor(theme.Frame.Title.FgColor.Color())
	a.titleView.SetBackgroundColor(theme.Frame.Title.BgColor.Color())

	a.searchInput = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldBackgroundColor(theme.Body.BgColor.Color()).
		SetChangedFunc(func(text string) {
			a.setQuery(text)
		})

	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBackgroundColor(theme.Table.BgColor.Color())
	if a.Config.Layout.ShowBorders {
		a.table.SetBorder(true)
	}
	if a.Config.Layout.ShowTitles {
		a.table.SetTitle(" Records ")
	}

	a.statusView = tview.NewTextView().SetDynamicColors(true)
	a.statusView.SetText(a.statusBaseline())

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.titleView, 1, 0, false).
		AddItem(a.searchInput, 1, 0, false).
		AddItem(a.table, 0, 1, true).
		AddItem(a.statusView, 1, 0, false)

	a.pages = tview.NewPages().
		AddPage(pageMain, a.layout, true, true)

	a.refreshTitle(a.state.Snapshot())
}

// tableRow is one rendered line of the records table
type tableRow struct {
	Title      string
	Conference string
	Decision   string
	Precheck   string
	Firstset   string
	Color      config.Color
}

// buildTableRows flattens the snapshot into table lines. Conference
// entries matching the operator's uploaded sheet are hidden from display
// while the underlying records stay untouched; a record left with no
// visible entries is omitted entirely.
func buildTableRows(snap services.ViewState, theme *config.ColorsConfig) []tableRow {
	var rows []tableRow

	for _, record := range snap.Records {
		for _, entry := range record.Conferences {
			if _, hidden := snap.Excluded[sheet.NormalizeConferenceName(entry.ConferenceName)]; hidden {
				continue
			}
			rows = append(rows, tableRow{
				Title:      record.Title,
				Conference: entry.ConferenceName,
				Decision:   entry.DecisionWithComments,
				Precheck:   entry.PrecheckComments,
				Firstset:   entry.FirstsetComments,
				Color:      decisionColor(entry.DecisionWithComments, theme),
			})
		}
	}

	return rows
}

// decisionColor picks a color for a decision cell
func decisionColor(decision string, theme *config.ColorsConfig) config.Color {
	d := strings.ToLower(decision)
	switch {
	case strings.Contains(d, "accept"):
		return theme.Decision.AcceptedColor
	case strings.Contains(d, "reject"):
		return theme.Decision.RejectedColor
	case strings.TrimSpace(d) == "":
		return theme.Decision.NoDataColor
	default:
		return theme.Decision.PendingColor
	}
}

// renderTable redraws the records table from a snapshot. Must run on the
// UI goroutine.
func (a *App) renderTable(snap services.ViewState) {
	theme := a.currentTheme
	a.table.Clear()

	for col, name := range tableHeader {
		cell := tview.NewTableCell(name).
			SetTextColor(theme.Table.HeaderFgColor.Color()).
			SetBackgroundColor(theme.Table.HeaderBgColor.Color()).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold)
		if col == 0 {
			cell.SetExpansion(2)
		} else {
			cell.SetExpansion(1)
		}
		a.table.SetCell(0, col, cell)
	}

	rows := buildTableRows(snap, theme)
	for i, row := range rows {
		values := []string{row.Title, row.Conference, row.Decision, row.Precheck, row.Firstset}
		for col, value := range values {
			cell := tview.NewTableCell(value).SetTextColor(theme.Table.FgColor.Color())
			if col == 2 {
				cell.SetTextColor(row.Color.Color())
			}
			a.table.SetCell(i+1, col, cell)
		}
	}

	if len(rows) > 0 {
		a.table.Select(1, 0)
	}
	a.table.ScrollToBeginning()
}

// refreshTitle updates the title bar with mode and pagination info
func (a *App) refreshTitle(snap services.ViewState) {
	var mode string
	switch snap.Mode {
	case services.ModeSearch:
		mode = fmt.Sprintf("Search %q", snap.Query)
	case services.ModeUploadedView:
		mode = fmt.Sprintf("Uploaded %s", snap.UploadName)
	default:
		mode = "Browse"
	}
	a.titleView.SetText(fmt.Sprintf(" ReviewDeck │ %s │ Page %d/%d", mode, snap.Page, snap.TotalPages))
}
