package models

import "gorm.io/gorm"

// User is the identity record the engine resolves names and roles from.
// Accounts themselves are managed elsewhere.
type User struct {
	gorm.Model
	Username  string `json:"username" gorm:"size:100;unique"`
	Name      string `json:"name" gorm:"size:150"`
	Email     string `json:"email" gorm:"size:150"`
	Role      string `json:"role" gorm:"size:30;index"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
