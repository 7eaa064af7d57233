package services

import (
	"testing"

	"wms-audit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		system      int
		physical    *int
		status      models.VerificationStatus
		discrepancy *int
	}{
		{"not counted", 10, nil, models.VerificationPending, nil},
		{"exact match", 10, intPtr(10), models.VerificationComplete, intPtr(0)},
		{"short", 5, intPtr(3), models.VerificationShort, intPtr(-2)},
		{"excess", 0, intPtr(2), models.VerificationExcess, intPtr(2)},
		{"zero counted as zero", 0, intPtr(0), models.VerificationComplete, intPtr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, discrepancy := Classify(tt.system, tt.physical)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.discrepancy, discrepancy)
		})
	}
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, 0, CompletionPercent(0, 0))
	assert.Equal(t, 0, CompletionPercent(0, 4))
	assert.Equal(t, 33, CompletionPercent(1, 3))
	assert.Equal(t, 67, CompletionPercent(2, 3))
	assert.Equal(t, 13, CompletionPercent(1, 8))
	assert.Equal(t, 100, CompletionPercent(4, 4))
}

func TestSummarizeRederivesStatusFromQuantities(t *testing.T) {
	rows := []models.AuditVerification{
		{SystemQuantity: 10, PhysicalQuantity: intPtr(10), Status: models.VerificationComplete},
		{SystemQuantity: 5, PhysicalQuantity: intPtr(3), Status: models.VerificationShort},
		// a legacy row still flagged confirmed counts by its quantities
		{SystemQuantity: 0, PhysicalQuantity: intPtr(2), Status: models.VerificationConfirmed},
		{SystemQuantity: 7, Status: models.VerificationPending},
	}

	s := Summarize(rows)
	assert.Equal(t, Summary{
		TotalItems:            4,
		ConfirmedItems:        3,
		PendingItems:          1,
		CompleteItems:         1,
		ShortItems:            1,
		ExcessItems:           1,
		CompletionPercent:     75,
		TotalSystemQuantity:   22,
		TotalPhysicalQuantity: 15,
		NetDiscrepancy:        0,
	}, s)
	require.Equal(t, s.TotalItems, s.PendingItems+s.CompleteItems+s.ShortItems+s.ExcessItems)
}

func TestSummarizeEmptySession(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
