package models

import (
	"time"
	"wms-audit/controllers/idgen"

	"gorm.io/gorm"
)

// TransactionHistory is the append-only trail of document status changes.
type TransactionHistory struct {
	ID        int64  `json:"ID" gorm:"primaryKey;autoIncrement:false"`
	RefNo     string `json:"ref_no" gorm:"size:50;index"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	Detail    string `json:"detail"`
	CreatedAt time.Time
	CreatedBy int
	UpdatedAt time.Time
	UpdatedBy int
	DeletedAt gorm.DeletedAt
	DeletedBy int
}

func (u *TransactionHistory) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = idgen.GenerateID()
	return
}
