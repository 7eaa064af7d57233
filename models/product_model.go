package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	ItemCode  string `json:"item_code" gorm:"size:50;unique"`
	ItemName  string `json:"item_name"`
	Barcode   string `json:"barcode"`
	Uom       string `json:"uom" gorm:"size:10"`
	HasBatch  bool   `json:"has_batch" gorm:"default:false"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
