package repositories

import (
	"time"

	"wms-audit/models"
	"wms-audit/types"

	"gorm.io/gorm"
)

type AuditTeamRepository struct {
	DB *gorm.DB
}

func NewAuditTeamRepository(DB *gorm.DB) *AuditTeamRepository {
	return &AuditTeamRepository{DB: DB}
}

type TeamFilter struct {
	// ManagerID 0 matches every manager.
	ManagerID   uint
	WarehouseID *uint
	ActiveOnly  bool
}

func (r *AuditTeamRepository) Create(assignment *models.AuditTeamAssignment) error {
	return r.DB.Create(assignment).Error
}

func (r *AuditTeamRepository) GetByID(id types.SnowflakeID) (*models.AuditTeamAssignment, error) {
	var assignment models.AuditTeamAssignment
	err := r.DB.First(&assignment, "id = ?", id).Error
	return &assignment, err
}

func (r *AuditTeamRepository) FindActive(userID, warehouseID uint) (*models.AuditTeamAssignment, error) {
	var assignment models.AuditTeamAssignment
	err := r.DB.
		Where("audit_user_id = ? AND warehouse_id = ? AND is_active = ?", userID, warehouseID, true).
		First(&assignment).Error
	return &assignment, err
}

func (r *AuditTeamRepository) IsAssigned(userID, warehouseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.AuditTeamAssignment{}).
		Where("audit_user_id = ? AND warehouse_id = ? AND is_active = ?", userID, warehouseID, true).
		Count(&count).Error
	return count > 0, err
}

// Deactivate flips an active assignment off and frees its slot in the unique index.
// It returns the number of rows changed, zero when the assignment was already inactive.
func (r *AuditTeamRepository) Deactivate(id types.SnowflakeID, by uint, at time.Time) (int64, error) {
	res := r.DB.Model(&models.AuditTeamAssignment{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":      false,
			"active_key":     id.String(),
			"deactivated_by": by,
			"deactivated_at": at,
			"updated_at":     at,
		})
	return res.RowsAffected, res.Error
}

func (r *AuditTeamRepository) List(filter TeamFilter) ([]models.AuditTeamAssignment, error) {
	query := r.DB.Preload("AuditUser").Preload("Warehouse")
	if filter.ManagerID != 0 {
		query = query.Where("audit_manager_id = ?", filter.ManagerID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var assignments []models.AuditTeamAssignment
	err := query.Order("created_at desc").Find(&assignments).Error
	return assignments, err
}

func (r *AuditTeamRepository) AssignedWarehouseIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.AuditTeamAssignment{}).
		Where("audit_user_id = ? AND is_active = ?", userID, true).
		Distinct().
		Pluck("warehouse_id", &ids).Error
	return ids, err
}

func (r *AuditTeamRepository) ListAssignedWarehouses(userID uint) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := r.DB.
		Where("id IN (?)", r.DB.Model(&models.AuditTeamAssignment{}).
			Select("warehouse_id").
			Where("audit_user_id = ? AND is_active = ?", userID, true)).
		Order("code asc").
		Find(&warehouses).Error
	return warehouses, err
}
