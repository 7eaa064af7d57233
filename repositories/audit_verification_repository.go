package repositories

import (
	"time"

	"wms-audit/models"
	"wms-audit/types"

	"gorm.io/gorm"
)

type AuditVerificationRepository struct {
	DB *gorm.DB
}

func NewAuditVerificationRepository(DB *gorm.DB) *AuditVerificationRepository {
	return &AuditVerificationRepository{DB: DB}
}

// CountEntry is the mutable part of a verification row.
type CountEntry struct {
	PhysicalQuantity int
	Discrepancy      int
	Status           models.VerificationStatus
	ConfirmedBy      uint
	ConfirmedAt      time.Time
	Notes            string
}

func (r *AuditVerificationRepository) CreateBatch(rows []models.AuditVerification) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(rows, 200).Error
}

func (r *AuditVerificationRepository) GetInSession(sessionID, id types.SnowflakeID) (*models.AuditVerification, error) {
	var row models.AuditVerification
	err := r.DB.First(&row, "id = ? AND session_id = ?", id, sessionID).Error
	return &row, err
}

func (r *AuditVerificationRepository) ListBySession(sessionID types.SnowflakeID, status *models.VerificationStatus) ([]models.AuditVerification, error) {
	query := r.DB.Preload("Item").Preload("Confirmer").Where("session_id = ?", sessionID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var rows []models.AuditVerification
	err := query.Order("serial_number asc").Find(&rows).Error
	return rows, err
}

func (r *AuditVerificationRepository) CountPending(sessionID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.DB.Model(&models.AuditVerification{}).
		Where("session_id = ? AND physical_quantity IS NULL", sessionID).
		Count(&count).Error
	return count, err
}

// ApplyCount writes a physical count guarded by the row version. Zero rows affected
// means the row changed since it was read.
func (r *AuditVerificationRepository) ApplyCount(id types.SnowflakeID, version int, entry CountEntry) (int64, error) {
	res := r.DB.Model(&models.AuditVerification{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"physical_quantity": entry.PhysicalQuantity,
			"discrepancy":       entry.Discrepancy,
			"status":            string(entry.Status),
			"confirmed_by":      entry.ConfirmedBy,
			"confirmed_at":      entry.ConfirmedAt,
			"notes":             entry.Notes,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        entry.ConfirmedAt,
		})
	return res.RowsAffected, res.Error
}
