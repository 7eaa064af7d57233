package repositories

import (
	"testing"

	"wms-audit/migration"
	"wms-audit/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Migrate(db))
	return db
}

func TestGetOnHandByWarehouseGroupsLocations(t *testing.T) {
	db := newTestDB(t)

	w1 := models.Warehouse{Code: "W1", Name: "One"}
	w2 := models.Warehouse{Code: "W2", Name: "Two"}
	require.NoError(t, db.Create(&w1).Error)
	require.NoError(t, db.Create(&w2).Error)

	strings := models.Product{ItemCode: "ITM-002", ItemName: "Strings"}
	guitar := models.Product{ItemCode: "ITM-001", ItemName: "Guitar"}
	require.NoError(t, db.Create(&strings).Error)
	require.NoError(t, db.Create(&guitar).Error)

	removed := models.Inventory{WarehouseID: w1.ID, ItemID: guitar.ID, Location: "Z9", QtyOnhand: 50}
	lines := []models.Inventory{
		{WarehouseID: w1.ID, ItemID: strings.ID, BatchNumber: "B2", Location: "A1", QtyOnhand: 2},
		{WarehouseID: w1.ID, ItemID: strings.ID, BatchNumber: "B1", Location: "A1", QtyOnhand: 1},
		{WarehouseID: w1.ID, ItemID: strings.ID, BatchNumber: "B1", Location: "A2", QtyOnhand: 4},
		{WarehouseID: w1.ID, ItemID: guitar.ID, Location: "A3", QtyOnhand: 0},
		{WarehouseID: w2.ID, ItemID: guitar.ID, Location: "A1", QtyOnhand: 7},
	}
	require.NoError(t, db.Create(&lines).Error)
	require.NoError(t, db.Create(&removed).Error)
	require.NoError(t, db.Delete(&removed).Error)

	got, err := NewInventoryRepository(db).GetOnHandByWarehouse(w1.ID)
	require.NoError(t, err)

	assert.Equal(t, []StockLine{
		{ItemID: guitar.ID, ItemCode: "ITM-001", BatchNumber: "", Quantity: 0},
		{ItemID: strings.ID, ItemCode: "ITM-002", BatchNumber: "B1", Quantity: 5},
		{ItemID: strings.ID, ItemCode: "ITM-002", BatchNumber: "B2", Quantity: 2},
	}, got)
}

func TestGetOnHandByWarehouseEmpty(t *testing.T) {
	db := newTestDB(t)

	got, err := NewInventoryRepository(db).GetOnHandByWarehouse(42)
	require.NoError(t, err)
	assert.Empty(t, got)
}
