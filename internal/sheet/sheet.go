// Package sheet reads and writes the xlsx files the review workflow runs
// on: the operator's uploaded sheet on the way in, the export summary on
// the way out.
package sheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxUploadBytes is the client-side size gate for uploaded sheets.
const MaxUploadBytes = 50 << 20 // 50 MB

// Columns every data row of an uploaded sheet must fill.
var requiredColumns = []string{
	"Title",
	"Author_Mail",
	"Conference_Name",
	"Decision_With_Comments",
}

// ReviewRow is one data row of an uploaded review sheet.
type ReviewRow struct {
	Title                string
	AuthorMail           string
	ConferenceName       string
	DecisionWithComments string
	PrecheckComments     string
	FirstsetComments     string
}

// RowError describes one invalid row. Row is the 1-based spreadsheet row
// number, so the first data row under the header is row 2.
type RowError struct {
	Row           int
	MissingFields []string
}

// ValidationError aggregates every invalid row so the operator can fix the
// whole sheet in one pass. It is a local failure; no upload is attempted.
type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("spreadsheet validation failed: %d invalid row(s)", len(e.Rows))
}

// IsAccepted reports whether the file name carries an accepted spreadsheet
// extension. The check happens before any parse or network call.
func IsAccepted(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Parse reads the first worksheet into review rows. Missing cells decode as
// empty strings; column order in the sheet does not matter.
func Parse(data []byte) ([]ReviewRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no worksheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet has no header row")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	out := make([]ReviewRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, ReviewRow{
			Title:                cell(row, "Title"),
			AuthorMail:           cell(row, "Author_Mail"),
			ConferenceName:       cell(row, "Conference_Name"),
			DecisionWithComments: cell(row, "Decision_With_Comments"),
			PrecheckComments:     cell(row, "Precheck_Comments"),
			FirstsetComments:     cell(row, "Firstset_Comments"),
		})
	}
	return out, nil
}

// Validate checks every row for the required fields and collects all
// violations, not just the first.
func Validate(rows []ReviewRow) []RowError {
	var out []RowError
	for i, row := range rows {
		var missing []string
		for _, name := range requiredColumns {
			if strings.TrimSpace(row.field(name)) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			// +2: rows are 1-based and the header occupies row 1.
			out = append(out, RowError{Row: i + 2, MissingFields: missing})
		}
	}
	return out
}

func (r ReviewRow) field(name string) string {
	switch name {
	case "Title":
		return r.Title
	case "Author_Mail":
		return r.AuthorMail
	case "Conference_Name":
		return r.ConferenceName
	case "Decision_With_Comments":
		return r.DecisionWithComments
	case "Precheck_Comments":
		return r.PrecheckComments
	case "Firstset_Comments":
		return r.FirstsetComments
	}
	return ""
}

// NormalizeConferenceName canonicalizes a conference name for exclusion
// matching: whitespace trimmed, upper-cased.
func NormalizeConferenceName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ExclusionSet collects the distinct normalized conference names present in
// an uploaded sheet. Rows elsewhere in the view whose conference is in the
// set are hidden: the table shows other conferences' data alongside the
// upload, not the upload's own rows.
func ExclusionSet(rows []ReviewRow) map[string]struct{} {
	out := make(map[string]struct{})
	for _, row := range rows {
		name := NormalizeConferenceName(row.ConferenceName)
		if name == "" {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}
