package orgcsv

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Structure"

// XLSXRecords loads the first sheet of a workbook.
func XLSXRecords(r io.Reader) (RecordReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "read sheet")
	}
	return &sliceRecords{rows: rows}, nil
}

func (e *Exporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	records, err := e.Records(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "name sheet")
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &rec); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	_, err = f.WriteTo(w)
	return errors.Wrap(err, "write workbook")
}
