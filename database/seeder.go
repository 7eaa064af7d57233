package database

import (
	"errors"
	"log"

	"wms-audit/models"

	"gorm.io/gorm"
)

// RunSeeders loads a demo warehouse with a manager, an auditor and a few stock lines.
// Existing rows are left untouched.
func RunSeeders(db *gorm.DB) error {
	users, err := SeedUsers(db)
	if err != nil {
		return err
	}
	warehouse, err := SeedWarehouse(db, users["manager"].ID, users["site"].ID)
	if err != nil {
		return err
	}
	products, err := SeedProducts(db)
	if err != nil {
		return err
	}
	return SeedInventory(db, warehouse.ID, products)
}

func SeedUsers(db *gorm.DB) (map[string]models.User, error) {
	seeds := map[string]models.User{
		"admin":   {Username: "admin", Name: "Administrator", Email: "admin@wms.local", Role: "admin", IsActive: true},
		"manager": {Username: "audit.manager", Name: "Audit Manager", Email: "audit.manager@wms.local", Role: "audit_manager", IsActive: true},
		"auditor": {Username: "auditor", Name: "Stock Auditor", Email: "auditor@wms.local", Role: "audit_user", IsActive: true},
		"site":    {Username: "site.manager", Name: "Site Manager", Email: "site.manager@wms.local", Role: "audit_manager", IsActive: true},
	}

	result := make(map[string]models.User, len(seeds))
	for key, u := range seeds {
		var existing models.User
		err := db.Where("username = ?", u.Username).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&u).Error; err != nil {
				return nil, err
			}
			existing = u
		} else if err != nil {
			return nil, err
		}
		result[key] = existing
	}
	return result, nil
}

func SeedWarehouse(db *gorm.DB, auditManagerID, managerID uint) (models.Warehouse, error) {
	w := models.Warehouse{
		Code:           "CKY",
		Name:           "Warehouse 1",
		Description:    "Warehouse Cakung",
		ManagerID:      &managerID,
		AuditManagerID: &auditManagerID,
	}

	var existing models.Warehouse
	err := db.Where("code = ?", w.Code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Create(&w).Error
		return w, err
	}
	return existing, err
}

func SeedProducts(db *gorm.DB) ([]models.Product, error) {
	seeds := []models.Product{
		{ItemCode: "ITM-001", ItemName: "Acoustic Guitar", Uom: "PCS"},
		{ItemCode: "ITM-002", ItemName: "Guitar Strings", Uom: "PCS", HasBatch: true},
		{ItemCode: "ITM-003", ItemName: "Music Stand", Uom: "PCS"},
	}

	products := make([]models.Product, 0, len(seeds))
	for _, p := range seeds {
		var existing models.Product
		err := db.Where("item_code = ?", p.ItemCode).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&p).Error; err != nil {
				return nil, err
			}
			existing = p
		} else if err != nil {
			return nil, err
		}
		products = append(products, existing)
	}
	return products, nil
}

func SeedInventory(db *gorm.DB, warehouseID uint, products []models.Product) error {
	var count int64
	if err := db.Model(&models.Inventory{}).Where("warehouse_id = ?", warehouseID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Inventory already seeded, skipping")
		return nil
	}

	lines := []models.Inventory{
		{WarehouseID: warehouseID, ItemID: products[0].ID, Location: "A-01-01", QtyOnhand: 10, QtyAvailable: 10},
		{WarehouseID: warehouseID, ItemID: products[1].ID, BatchNumber: "B2024-01", Location: "A-01-02", QtyOnhand: 3, QtyAvailable: 3},
		{WarehouseID: warehouseID, ItemID: products[1].ID, BatchNumber: "B2024-02", Location: "A-01-02", QtyOnhand: 2, QtyAvailable: 2},
		{WarehouseID: warehouseID, ItemID: products[2].ID, Location: "B-02-01", QtyOnhand: 0, QtyAvailable: 0},
	}
	return db.Create(&lines).Error
}
