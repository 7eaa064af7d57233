package models

import (
	"gorm.io/gorm"
)

// Inventory is one ledger line. The audit engine only reads it.
type Inventory struct {
	gorm.Model
	WarehouseID  uint   `json:"warehouse_id" gorm:"not null;index"`
	ItemID       uint   `json:"item_id" gorm:"not null;index"`
	BatchNumber  string `json:"batch_number" gorm:"size:50"`
	Location     string `json:"location"`
	QtyOnhand    int    `json:"qty_onhand" gorm:"default:0"`
	QtyAvailable int    `json:"qty_available" gorm:"default:0"`
	QtyAllocated int    `json:"qty_allocated" gorm:"default:0"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}
