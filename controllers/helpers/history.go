package helpers

import (
	"time"

	"wms-audit/models"

	"gorm.io/gorm"
)

// InsertTransactionHistory inserts a new transaction history record. Call it with the
// transaction handle so the trail commits or rolls back with the change it describes.
func InsertTransactionHistory(db *gorm.DB, refNo, status, txType, detail string, actor uint) error {
	now := time.Now().UTC()
	history := models.TransactionHistory{
		RefNo:     refNo,
		Status:    status,
		Type:      txType,
		Detail:    detail,
		CreatedAt: now,
		CreatedBy: int(actor),
		UpdatedAt: now,
		UpdatedBy: int(actor),
	}

	return db.Create(&history).Error
}
