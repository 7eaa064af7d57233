package services

import (
	"wms-audit/models"

	"github.com/shopspring/decimal"
)

// Classify derives the status and discrepancy of a verification row from its system
// and physical quantities. A nil physical quantity is pending with no discrepancy.
func Classify(systemQuantity int, physicalQuantity *int) (models.VerificationStatus, *int) {
	if physicalQuantity == nil {
		return models.VerificationPending, nil
	}

	discrepancy := *physicalQuantity - systemQuantity
	switch {
	case discrepancy < 0:
		return models.VerificationShort, &discrepancy
	case discrepancy > 0:
		return models.VerificationExcess, &discrepancy
	default:
		return models.VerificationComplete, &discrepancy
	}
}

type Summary struct {
	TotalItems            int `json:"total_items"`
	ConfirmedItems        int `json:"confirmed_items"`
	PendingItems          int `json:"pending_items"`
	CompleteItems         int `json:"complete_items"`
	ShortItems            int `json:"short_items"`
	ExcessItems           int `json:"excess_items"`
	CompletionPercent     int `json:"completion_percent"`
	TotalSystemQuantity   int `json:"total_system_quantity"`
	TotalPhysicalQuantity int `json:"total_physical_quantity"`
	NetDiscrepancy        int `json:"net_discrepancy"`
}

// Summarize aggregates a session's rows. Status is re-derived from the quantities
// rather than read from the row so the summary cannot drift from the ledger.
func Summarize(rows []models.AuditVerification) Summary {
	var s Summary
	s.TotalItems = len(rows)
	for _, row := range rows {
		s.TotalSystemQuantity += row.SystemQuantity

		status, discrepancy := Classify(row.SystemQuantity, row.PhysicalQuantity)
		if row.PhysicalQuantity != nil {
			s.ConfirmedItems++
			s.TotalPhysicalQuantity += *row.PhysicalQuantity
			s.NetDiscrepancy += *discrepancy
		}

		switch status {
		case models.VerificationPending:
			s.PendingItems++
		case models.VerificationComplete:
			s.CompleteItems++
		case models.VerificationShort:
			s.ShortItems++
		case models.VerificationExcess:
			s.ExcessItems++
		}
	}
	s.CompletionPercent = CompletionPercent(s.ConfirmedItems, s.TotalItems)
	return s
}

// CompletionPercent rounds half away from zero; an empty session is 0%.
func CompletionPercent(confirmed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(confirmed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart())
}
