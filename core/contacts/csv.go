package contacts

import (
	"encoding/csv"
	stderrors "errors"
	"io"

	"filmscope/internal/errors"
)

// ImportCSV reads contacts from a CSV document with a header row. Quoted
// fields may contain commas and newlines. Bad rows are reported in the
// result instead of failing the import.
func ImportCSV(r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Input("The contact file is empty.")
	}
	if err != nil {
		return nil, errors.Parsing("Could not read the contact file header.", err)
	}

	row := 1
	var fatal error
	result, err := importRows(header, func() ([]string, int, bool, error) {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, 0, false, nil
		}
		row++
		if err != nil {
			var perr *csv.ParseError
			if !stderrors.As(err, &perr) {
				fatal = err
				return nil, row, false, nil
			}
			return nil, row, true, perr.Err
		}
		return rec, row, true, nil
	})
	if err != nil {
		return nil, err
	}
	if fatal != nil {
		return nil, errors.Wrap(errors.TypeInput, "Could not read the contact file.", fatal)
	}
	return result, nil
}

// ExportCSV writes contacts with the canonical header
func ExportCSV(w io.Writer, contacts []Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to write CSV header", err)
	}
	for _, c := range contacts {
		if err := cw.Write(record(c)); err != nil {
			return errors.Wrap(errors.TypeInternal, "failed to write CSV row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to flush CSV", err)
	}
	return nil
}
