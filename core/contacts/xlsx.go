package contacts

import (
	"io"

	"github.com/xuri/excelize/v2"

	"filmscope/internal/errors"
)

// SheetName is the worksheet contacts are written to and read from
const SheetName = "Contacts"

// ExportXLSX writes contacts to a workbook with a single Contacts sheet
func ExportXLSX(w io.Writer, contacts []Contact) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to name sheet", err)
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to write header", err)
	}

	for i, c := range contacts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(errors.TypeInternal, "failed to address row", err)
		}
		row := []interface{}{c.Name, c.Email, c.Role, c.Outlet, c.Platform, nil, c.Notes}
		if c.Followers > 0 {
			row[5] = c.Followers
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrap(errors.TypeInternal, "failed to write row", err)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to write workbook", err)
	}
	return nil
}

// ImportXLSX reads contacts from the Contacts sheet, or the active sheet
// when the workbook has none by that name.
func ImportXLSX(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Parsing("Could not open the workbook.", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx == -1 {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, errors.Parsing("Could not read the worksheet.", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.Input("The contact file is empty.")
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, errors.Parsing("Could not read the contact file header.", err)
	}

	row := 1
	return importRows(header, func() ([]string, int, bool, error) {
		if !rows.Next() {
			return nil, 0, false, nil
		}
		row++
		rec, err := rows.Columns()
		return rec, row, true, err
	})
}
