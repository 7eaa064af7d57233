package renderer

import (
	"wms-audit/services"

	"github.com/xuri/excelize/v2"
)

const headerSheet = "Audit"

func renderExcel(header services.ReportHeader, sections []section) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", headerSheet); err != nil {
		return nil, err
	}
	for i, row := range headerRows(header) {
		if err := setRow(f, headerSheet, i+1, row); err != nil {
			return nil, err
		}
	}

	for _, sec := range sections {
		if _, err := f.NewSheet(sec.name); err != nil {
			return nil, err
		}
		columns := make([]interface{}, len(sec.columns))
		for i, c := range sec.columns {
			columns[i] = c
		}
		if err := setRow(f, sec.name, 1, columns); err != nil {
			return nil, err
		}
		for i, row := range sec.rows {
			if err := setRow(f, sec.name, i+2, row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
