package sheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Response Data"

// ExportRow is one deduplicated, grouped row of the export artifact.
type ExportRow struct {
	Title                string
	ConferenceName       string
	DecisionWithComments string
	PrecheckComments     string
	FirstsetComments     string
}

var exportHeader = []string{
	"Title",
	"Conference_Name",
	"Decision_With_Comments",
	"Precheck_Comments",
	"Firstset_Comments",
}

// ExportFileName builds the artifact name: Search_Results_ when a query was
// active, Response_Data_ otherwise, with an ISO date stamp.
func ExportFileName(searching bool, now time.Time) string {
	prefix := "Response_Data_"
	if searching {
		prefix = "Search_Results_"
	}
	return prefix + now.Format("2006-01-02") + ".xlsx"
}

// WriteExport writes the grouped rows to an xlsx file at path.
func WriteExport(path string, rows []ExportRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return fmt.Errorf("create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default worksheet: %w", err)
	}

	write := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(exportSheetName, cell, &values)
	}

	if err := write(1, exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		values := []string{
			row.Title,
			row.ConferenceName,
			row.DecisionWithComments,
			row.PrecheckComments,
			row.FirstsetComments,
		}
		if err := write(i+2, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save export file: %w", err)
	}
	return nil
}
