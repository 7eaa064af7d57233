package renderer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"wms-audit/services"
)

// renderCSV writes the header block and each section separated by a blank line.
// A section starts with its name on a line of its own.
func renderCSV(header services.ReportHeader, sections []section) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, row := range headerRows(header) {
		if err := w.Write(cells(row)); err != nil {
			return nil, err
		}
	}
	for _, sec := range sections {
		if err := w.Write([]string{}); err != nil {
			return nil, err
		}
		if err := w.Write([]string{sec.name}); err != nil {
			return nil, err
		}
		if err := w.Write(sec.columns); err != nil {
			return nil, err
		}
		for _, row := range sec.rows {
			if err := w.Write(cells(row)); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cells(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
