package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/reviewdeck/reviewdeck/internal/services"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

// showUploadPrompt asks for the spreadsheet path and kicks off the upload
func (a *App) showUploadPrompt() {
	input := tview.NewInputField().
		SetLabel("Spreadsheet path: ").
		SetFieldWidth(60)

	form := tview.NewForm().
		AddFormItem(input).
		AddButton("Upload", func() {
			path := strings.TrimSpace(input.GetText())
			a.pages.RemovePage(pageUpload)
			if path == "" {
				return
			}
			go a.runUpload(path)
		}).
		AddButton("Cancel", func() {
			a.pages.RemovePage(pageUpload)
		})
	form.SetBorder(true).SetTitle(" Upload Review Sheet ")

	a.pages.AddPage(pageUpload, modal(form, 70, 9), true, true)
	a.SetFocus(form)
}

// runUpload executes the upload pipeline off the UI goroutine
func (a *App) runUpload(path string) {
	a.errorHandler.ShowPersistentMessage(a.ctx, fmt.Sprintf("Uploading %s... press %s to cancel", path, a.Keys.Cancel), LogLevelInfo)
	defer a.errorHandler.ClearPersistentMessage()

	_, err := a.uploadService.Upload(a.ctx, path)
	if err != nil {
		a.handleUploadError(err)
		return
	}

	snap := a.state.Snapshot()
	a.QueueUpdateDraw(func() {
		a.searchInput.SetText("")
		a.renderTable(snap)
		a.refreshTitle(snap)
	})
	a.errorHandler.ShowSuccess(a.ctx, fmt.Sprintf("Uploaded %s: %d conference(s) hidden from view", snap.UploadName, len(snap.Excluded)))
}

func (a *App) handleUploadError(err error) {
	var verr *sheet.ValidationError
	switch {
	case services.IsCancel(err):
		a.errorHandler.ShowWarning(a.ctx, "Upload cancelled")
	case services.IsAuthError(err):
		a.forceLogout()
	case errors.As(err, &verr):
		a.showValidationErrors(verr)
	case errors.Is(err, services.ErrUnsupportedFileType):
		a.errorHandler.ShowError(a.ctx, "Only .xlsx and .xls files can be uploaded")
	case errors.Is(err, services.ErrFileTooLarge):
		a.errorHandler.ShowError(a.ctx, "File exceeds the 50 MB upload limit")
	default:
		a.errorHandler.HandleError(a.ctx, err, "Upload failed")
	}
}

// showValidationErrors lists every offending row so the operator can fix
// the sheet in one pass.
func (a *App) showValidationErrors(verr *sheet.ValidationError) {
	var b strings.Builder
	fmt.Fprintf(&b, "The sheet has %d invalid row(s); nothing was uploaded.\n\n", len(verr.Rows))
	for _, row := range verr.Rows {
		fmt.Fprintf(&b, "  Row %d: missing %s\n", row.Row, strings.Join(row.MissingFields, ", "))
	}

	text := tview.NewTextView().SetText(b.String())
	text.SetBorder(true).SetTitle(" Validation Errors ")

	form := tview.NewForm().AddButton("Close", func() {
		a.pages.RemovePage(pageValidation)
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(text, 0, 1, false).
		AddItem(form, 3, 0, true)

	a.QueueUpdateDraw(func() {
		a.pages.AddPage(pageValidation, modal(flex, 76, 18), true, true)
		a.SetFocus(form)
	})
}

// modal centers p in a fixed-size window
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
