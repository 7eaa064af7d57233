package repositories

import (
	"wms-audit/models"

	"gorm.io/gorm"
)

type WarehouseRepository struct {
	DB *gorm.DB
}

func NewWarehouseRepository(DB *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{DB: DB}
}

func (r *WarehouseRepository) GetByID(id uint) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.DB.Preload("Manager").Preload("AuditManager").First(&warehouse, id).Error
	return &warehouse, err
}

// IDsManagedBy returns the warehouses whose audits the user manages.
func (r *WarehouseRepository) IDsManagedBy(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.Warehouse{}).Where("audit_manager_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}
