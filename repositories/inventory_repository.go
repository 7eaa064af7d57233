package repositories

import (
	"gorm.io/gorm"
)

// InventoryRepository reads the inventory ledger. The audit engine never writes to it.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db}
}

type StockLine struct {
	ItemID      uint   `json:"item_id"`
	ItemCode    string `json:"item_code"`
	BatchNumber string `json:"batch_number"`
	Quantity    int    `json:"quantity"`
}

// GetOnHandByWarehouse returns the current on-hand quantity per item and batch,
// zero quantity lines included, ordered by item code then batch.
func (r *InventoryRepository) GetOnHandByWarehouse(warehouseID uint) ([]StockLine, error) {

	sqlOnHand := `SELECT a.item_id, b.item_code, COALESCE(a.batch_number, '') AS batch_number,
	SUM(a.qty_onhand) AS quantity
	FROM inventories a
	INNER JOIN products b ON a.item_id = b.id
	WHERE a.warehouse_id = ? AND a.deleted_at IS NULL
	GROUP BY a.item_id, b.item_code, COALESCE(a.batch_number, '')
	ORDER BY b.item_code ASC, COALESCE(a.batch_number, '') ASC`

	var lines []StockLine

	if err := r.db.Raw(sqlOnHand, warehouseID).Scan(&lines).Error; err != nil {
		return nil, err
	}

	return lines, nil
}
