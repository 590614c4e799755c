package models

import (
	"errors"
	"fmt"
	"strings"
)

// Ledger operation failures. Every one of these aborts (and rolls back) the
// whole transaction it occurs in.
var (
	// ErrBrandMismatch: a line's item does not belong to the operation's declared brand.
	ErrBrandMismatch = errors.New("all items in one stock operation must belong to the declared brand")

	// ErrInsufficientOnRoad: a receive would drive an item's on-road quantity negative.
	ErrInsufficientOnRoad = errors.New("receive quantity exceeds the on-road quantity")

	// ErrInvariantViolation: a counter update would drive a quantity below zero.
	ErrInvariantViolation = errors.New("inventory counter would go negative")

	// ErrAlreadyShipped: fulfillment requested on an order that is not in the New state.
	ErrAlreadyShipped = errors.New("order has already been shipped or voided")

	// ErrNotCancelable: void requested on an order that is not in the New state.
	ErrNotCancelable = errors.New("only new orders can be voided")

	// ErrNoChange: a quantity amendment with a zero diff.
	ErrNoChange = errors.New("amended quantity equals the stored quantity")

	// ErrDependencyExists: deleting a purchase line that a later receive already consumed.
	ErrDependencyExists = errors.New("a later receive depends on this purchase line")

	// ErrNoOrderLines: fulfillment requested on an order whose detail lines are
	// gone (its reservation was wiped by a stocktake cutover).
	ErrNoOrderLines = errors.New("order has no detail lines to fulfill")
)

// StockShortage describes one order line that cannot be fulfilled.
type StockShortage struct {
	InventoryId int    `json:"inventory_id"`
	Name        string `json:"name"`
	Required    int    `json:"required"`
	Available   int    `json:"available"`
}

// InsufficientStockError carries every short line of a failed fulfillment,
// so the caller sees the full picture in one response instead of fixing
// shortages one at a time.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (need %d, in stock %d)", s.Name, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
