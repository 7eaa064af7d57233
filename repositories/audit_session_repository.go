package repositories

import (
	"errors"
	"time"

	"wms-audit/models"
	"wms-audit/types"

	"gorm.io/gorm"
)

type AuditSessionRepository struct {
	DB *gorm.DB
}

func NewAuditSessionRepository(DB *gorm.DB) *AuditSessionRepository {
	return &AuditSessionRepository{DB: DB}
}

type SessionFilter struct {
	WarehouseIDs []uint
	Status       *models.AuditStatus
	// Restricted limits the result to WarehouseIDs even when that list is empty.
	Restricted bool
}

func (r *AuditSessionRepository) Create(session *models.AuditSession) error {
	return r.DB.Create(session).Error
}

func (r *AuditSessionRepository) GetByID(id types.SnowflakeID) (*models.AuditSession, error) {
	var session models.AuditSession
	err := r.DB.Preload("Warehouse").First(&session, "id = ?", id).Error
	return &session, err
}

// GetStatus reads only the current status, used to explain a failed compare-and-swap.
func (r *AuditSessionRepository) GetStatus(id types.SnowflakeID) (models.AuditStatus, error) {
	var session models.AuditSession
	err := r.DB.Select("id", "status").First(&session, "id = ?", id).Error
	return session.Status, err
}

// LastCodeWithPrefix returns the greatest audit code starting with prefix, or "".
func (r *AuditSessionRepository) LastCodeWithPrefix(prefix string) (string, error) {
	var session models.AuditSession
	err := r.DB.Select("audit_code").
		Where("audit_code LIKE ?", prefix+"%").
		Order("audit_code desc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return session.AuditCode, err
}

// CountOverlapping counts non-terminal sessions of the warehouse whose date range
// intersects [start, end].
func (r *AuditSessionRepository) CountOverlapping(warehouseID uint, start, end time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&models.AuditSession{}).
		Where("warehouse_id = ?", warehouseID).
		Where("status IN ?", StatusValues(models.AuditStatusOpen, models.AuditStatusInProgress, models.AuditStatusReconciliation)).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count, err
}

// CompareAndSwapStatus applies updates only while the session is in one of from.
// Zero rows affected means another writer moved the session first, or it does not exist.
func (r *AuditSessionRepository) CompareAndSwapStatus(id types.SnowflakeID, from []models.AuditStatus, updates map[string]interface{}) (int64, error) {
	res := r.DB.Model(&models.AuditSession{}).
		Where("id = ? AND status IN ?", id, StatusValues(from...)).
		Updates(withVersionBump(updates))
	return res.RowsAffected, res.Error
}

// Touch bumps the session version while the session is in status. Inside a transaction
// it takes the session row lock so concurrent transitions wait for the caller to commit.
func (r *AuditSessionRepository) Touch(id types.SnowflakeID, status models.AuditStatus, at time.Time) (int64, error) {
	res := r.DB.Model(&models.AuditSession{}).
		Where("id = ? AND status = ?", id, string(status)).
		Updates(map[string]interface{}{
			"version":    gorm.Expr("version + 1"),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *AuditSessionRepository) List(filter SessionFilter) ([]models.AuditSession, error) {
	query := r.DB.Preload("Warehouse")
	if filter.Restricted || len(filter.WarehouseIDs) > 0 {
		if len(filter.WarehouseIDs) == 0 {
			return []models.AuditSession{}, nil
		}
		query = query.Where("warehouse_id IN ?", filter.WarehouseIDs)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var sessions []models.AuditSession
	err := query.Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

func StatusValues(statuses ...models.AuditStatus) []string {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return values
}

func withVersionBump(updates map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["version"] = gorm.Expr("version + 1")
	return merged
}
