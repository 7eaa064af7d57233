package models

import "gorm.io/gorm"

type Warehouse struct {
	gorm.Model
	Code        string `json:"code" gorm:"size:20;unique"`
	Name        string `json:"name" gorm:"size:150"`
	Description string `json:"description"`
	// ManagerID is the site manager who countersigns final audit reports.
	ManagerID *uint `json:"manager_id"`
	Manager   *User `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
	// AuditManagerID owns the audit team and sessions of this warehouse.
	AuditManagerID *uint `json:"audit_manager_id"`
	AuditManager   *User `json:"audit_manager,omitempty" gorm:"foreignKey:AuditManagerID"`
	CreatedBy      int
	UpdatedBy      int
	DeletedBy      int
}
