package models

import (
	"fmt"
	"sort"

	"github.com/HarryWebAI/myerp/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter mutations are expressed as "add delta to the stored column", never
// as a write-back of an in-memory value, so concurrent writers can't clobber
// each other. Every statement carries its own non-negativity guard:
// RowsAffected == 0 on a row we hold the lock on means the guard refused the
// delta, and the enclosing transaction must roll back.

// LockInventories takes exclusive row locks on the given items for the
// duration of tx. Ids are deduplicated and locked in ascending order - every
// ledger operation goes through here, which keeps lock acquisition order
// identical across concurrent operations and rules out circular waits.
func LockInventories(tx *gorm.DB, ids []int) (map[int]*Inventory, error) {
	ids = utils.UniqueSlice(ids)
	sort.Ints(ids)

	var items []*Inventory
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	locked := make(map[int]*Inventory, len(items))
	for _, item := range items {
		locked[item.ID] = item
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("inventory %d: %w", id, utils.ErrorRecordNotFound)
		}
	}
	return locked, nil
}

// AddOnRoadQty applies a purchase (or a purchase correction, with a negative
// qty) to an item's on-road counter.
func AddOnRoadQty(tx *gorm.DB, inventoryId int, qty int) error {
	result := tx.Exec(
		"UPDATE inventories SET on_road = on_road + ? WHERE id = ? AND on_road + ? >= 0",
		qty, inventoryId, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory %d on_road: %w", inventoryId, ErrInvariantViolation)
	}
	return nil
}

// MoveOnRoadToInStock applies a receive: both counters move in one locked
// statement so on_road can never dip below zero in between.
func MoveOnRoadToInStock(tx *gorm.DB, inventoryId int, qty int) error {
	result := tx.Exec(
		"UPDATE inventories SET on_road = on_road - ?, in_stock = in_stock + ? WHERE id = ? AND on_road - ? >= 0 AND in_stock + ? >= 0",
		qty, qty, inventoryId, qty, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory %d: %w", inventoryId, ErrInsufficientOnRoad)
	}
	return nil
}

// AddInStockQty is used by receive-line corrections, where in_stock moves
// even when the on-road side cannot be fully reversed.
func AddInStockQty(tx *gorm.DB, inventoryId int, qty int) error {
	result := tx.Exec(
		"UPDATE inventories SET in_stock = in_stock + ? WHERE id = ? AND in_stock + ? >= 0",
		qty, inventoryId, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory %d in_stock: %w", inventoryId, ErrInvariantViolation)
	}
	return nil
}

// TryAddOnRoadQty is the best-effort variant for receive-line corrections:
// it reports whether the guard accepted the delta instead of failing.
func TryAddOnRoadQty(tx *gorm.DB, inventoryId int, qty int) (bool, error) {
	result := tx.Exec(
		"UPDATE inventories SET on_road = on_road + ? WHERE id = ? AND on_road + ? >= 0",
		qty, inventoryId, qty)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddBeenOrderQty applies a reservation (or its release, with negative qty).
func AddBeenOrderQty(tx *gorm.DB, inventoryId int, qty int) error {
	result := tx.Exec(
		"UPDATE inventories SET been_order = been_order + ? WHERE id = ? AND been_order + ? >= 0",
		qty, inventoryId, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory %d been_order: %w", inventoryId, ErrInvariantViolation)
	}
	return nil
}

// ApplyInstallQty ships qty out: reservation released, stock decremented,
// cumulative sold incremented, all in one guarded statement.
func ApplyInstallQty(tx *gorm.DB, inventoryId int, qty int) error {
	result := tx.Exec(
		"UPDATE inventories SET been_order = been_order - ?, in_stock = in_stock - ?, sold = sold + ? WHERE id = ? AND been_order - ? >= 0 AND in_stock - ? >= 0",
		qty, qty, qty, inventoryId, qty, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory %d: %w", inventoryId, ErrInvariantViolation)
	}
	return nil
}

// RefreshInventory re-reads the authoritative counters after database-side
// increments, for callers that need the new values.
func RefreshInventory(tx *gorm.DB, inventory *Inventory) error {
	return tx.First(inventory, "id = ?", inventory.ID).Error
}
