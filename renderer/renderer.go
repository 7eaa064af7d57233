// Package renderer turns compiled audit reports into downloadable files.
package renderer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wms-audit/services"
)

type Format string

const (
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// section is one table of a report: a sheet in excel, a block in csv.
type section struct {
	name    string
	columns []string
	rows    [][]interface{}
}

// Render encodes report, one of the services *Report types, in format.
func Render(format Format, report any) (*File, error) {
	reportType, header, sections, err := tabulate(report)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s-%s", reportType, header.AuditCode)
	switch format {
	case FormatExcel:
		body, err := renderExcel(header, sections)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	case FormatCSV:
		body, err := renderCSV(header, sections)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + ".csv", ContentType: "text/csv", Body: body}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func tabulate(report any) (services.ReportType, services.ReportHeader, []section, error) {
	switch r := report.(type) {
	case *services.PhysicalEntryReport:
		entries := section{
			name:    "Physical Entry",
			columns: []string{"No", "Item Code", "Item Name", "Batch", "Physical Qty", "Confirmed By", "Confirmed At", "Notes"},
		}
		for _, row := range r.Rows {
			entries.rows = append(entries.rows, []interface{}{
				row.SerialNumber, row.ItemCode, row.ItemName, row.BatchNumber,
				row.PhysicalDisplay, row.ConfirmedBy, formatTime(row.ConfirmedAt), row.Notes,
			})
		}
		return services.ReportPhysicalEntry, r.Header, []section{entries}, nil

	case *services.VarianceReport:
		columns := []string{"No", "Item Code", "Item Name", "Batch", "System Qty", "Physical Qty", "Discrepancy", "Variance", "Reason"}
		short := section{name: "Short", columns: columns}
		for _, row := range r.Short {
			short.rows = append(short.rows, varianceCells(row))
		}
		excess := section{name: "Excess", columns: columns}
		for _, row := range r.Excess {
			excess.rows = append(excess.rows, varianceCells(row))
		}
		summary := section{
			name:    "Summary",
			columns: []string{"Total Variances", "Short", "Excess"},
			rows:    [][]interface{}{{r.Summary.TotalVariances, r.Summary.ShortCount, r.Summary.ExcessCount}},
		}
		return services.ReportVariance, r.Header, []section{short, excess, summary}, nil

	case *services.FinalAuditReport:
		items := section{
			name:    "Final Audit",
			columns: []string{"No", "Item Code", "Item Name", "Batch", "System Qty", "Physical Qty", "Variance", "Status", "Verified By", "Notes"},
		}
		for _, row := range r.Rows {
			items.rows = append(items.rows, []interface{}{
				row.SerialNumber, row.ItemCode, row.ItemName, row.BatchNumber, row.SystemQuantity,
				optionalInt(row.PhysicalQuantity), optionalInt(row.Variance), string(row.Status), row.VerifiedBy, row.Notes,
			})
		}
		s := r.Summary
		summary := section{
			name:    "Summary",
			columns: []string{"Total Items", "Counted", "Pending", "Complete", "Short", "Excess", "Completion %", "System Qty", "Physical Qty", "Net Variance"},
			rows: [][]interface{}{{
				s.TotalItems, s.ConfirmedItems, s.PendingItems, s.CompleteItems, s.ShortItems, s.ExcessItems,
				s.CompletionPercent, s.TotalSystemQuantity, s.TotalPhysicalQuantity, s.NetDiscrepancy,
			}},
		}
		signatures := section{name: "Signatures", columns: []string{"Role", "Name", "Signature", "Date"}}
		for _, slot := range r.Signatures {
			signatures.rows = append(signatures.rows, []interface{}{slot.Role, slot.Name, "", ""})
		}
		return services.ReportFinalAudit, r.Header, []section{items, summary, signatures}, nil
	}
	return "", services.ReportHeader{}, nil, fmt.Errorf("renderer: unknown report %T", report)
}

func varianceCells(row services.VarianceRow) []interface{} {
	return []interface{}{
		row.SerialNumber, row.ItemCode, row.ItemName, row.BatchNumber,
		row.SystemQuantity, row.PhysicalQuantity, row.Discrepancy, row.Variance, row.Reason,
	}
}

// headerRows is the key/value block printed above the tables.
func headerRows(h services.ReportHeader) [][]interface{} {
	return [][]interface{}{
		{"Audit Code", h.AuditCode},
		{"Title", h.Title},
		{"Warehouse", strings.TrimSpace(h.WarehouseCode + " " + h.WarehouseName)},
		{"Period", h.StartDate.Format("2006-01-02") + " to " + h.EndDate.Format("2006-01-02")},
		{"Status", string(h.Status)},
		{"Generated At", h.GeneratedAt.Format(time.RFC3339)},
	}
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
