package migration

import (
	"wms-audit/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Warehouse{},
		&models.Product{},
		&models.Inventory{},
		&models.TransactionHistory{},
		&models.AuditTeamAssignment{},
		&models.AuditSession{},
		&models.AuditVerification{},
	)
}
