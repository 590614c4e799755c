package models

import (
	"context"
	"fmt"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory is the per-SKU ground truth the whole ledger engine mutates.
// The four counters only ever change through the commands in
// stockCommands.go, inside a transaction that holds the row lock.
type Inventory struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Name       string          `gorm:"size:30;not null" json:"name" binding:"required"`
	BrandId    int             `gorm:"index;not null" json:"brand_id" binding:"required"`
	Brand      *Brand          `json:"brand,omitempty"`
	CategoryId int             `gorm:"index;not null" json:"category_id" binding:"required"`
	Category   *Category       `json:"category,omitempty"`
	Size       string          `gorm:"size:15;not null;default:原版" json:"size"`
	Color      string          `gorm:"size:15;not null;default:原色" json:"color"`
	Cost       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cost"`
	OnRoad     int             `gorm:"not null;default:0" json:"on_road"`
	InStock    int             `gorm:"not null;default:0" json:"in_stock"`
	BeenOrder  int             `gorm:"not null;default:0" json:"been_order"`
	Sold       int             `gorm:"not null;default:0" json:"sold"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Derived figures the inventory screens display, filled by AfterFind.
	CurrentQty int             `gorm:"-" json:"current_inventory"`
	Sellable   int             `gorm:"-" json:"can_be_sold"`
	StockValue decimal.Decimal `gorm:"-" json:"total_cost"`
}

func (i *Inventory) AfterFind(tx *gorm.DB) error {
	i.CurrentQty = i.CurrentInventory()
	i.Sellable = i.CanBeSold()
	i.StockValue = i.TotalCost()
	return nil
}

func (i *Inventory) FullName() string {
	return fmt.Sprintf("%s(%s,%s)", i.Name, i.Size, i.Color)
}

// CurrentInventory is everything owned: received plus still on the road.
func (i *Inventory) CurrentInventory() int {
	return i.OnRoad + i.InStock
}

// CanBeSold is what is left to promise to new orders.
func (i *Inventory) CanBeSold() int {
	return i.CurrentInventory() - i.BeenOrder
}

func (i *Inventory) TotalCost() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(int64(i.CurrentInventory())))
}

type NewInventory struct {
	Name       string          `json:"name" binding:"required"`
	BrandId    int             `json:"brand_id" binding:"required"`
	CategoryId int             `json:"category_id" binding:"required"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
	Cost       decimal.Decimal `json:"cost" binding:"required"`
}

func CreateInventory(ctx context.Context, input *NewInventory) (*Inventory, error) {
	if _, err := utils.FetchModel[Brand](ctx, input.BrandId); err != nil {
		return nil, err
	}
	if _, err := utils.FetchModel[Category](ctx, input.CategoryId); err != nil {
		return nil, err
	}

	inventory := Inventory{
		Name:       input.Name,
		BrandId:    input.BrandId,
		CategoryId: input.CategoryId,
		Size:       input.Size,
		Color:      input.Color,
		Cost:       input.Cost,
	}
	if inventory.Size == "" {
		inventory.Size = "原版"
	}
	if inventory.Color == "" {
		inventory.Color = "原色"
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&inventory).Error; err != nil {
		return nil, err
	}

	return &inventory, nil
}

// UpdateInventory amends descriptive attributes and cost only. Counters are
// off limits here: they move exclusively through the ledger operations.
func UpdateInventory(ctx context.Context, id int, input *NewInventory) (*Inventory, error) {
	inventory, err := utils.FetchModel[Inventory](ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := utils.FetchModel[Brand](ctx, input.BrandId); err != nil {
		return nil, err
	}
	if _, err := utils.FetchModel[Category](ctx, input.CategoryId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&inventory).Updates(map[string]interface{}{
		"Name":       input.Name,
		"BrandId":    input.BrandId,
		"CategoryId": input.CategoryId,
		"Size":       input.Size,
		"Color":      input.Color,
		"Cost":       input.Cost,
	}).Error; err != nil {
		return nil, err
	}

	return inventory, nil
}

type InventoryFilter struct {
	BrandId    int
	CategoryId int
	Name       string
	Page       int
	PageSize   int
}

func ListInventories(ctx context.Context, filter InventoryFilter) ([]*Inventory, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Inventory{})

	if filter.BrandId > 0 {
		query = query.Where("brand_id = ?", filter.BrandId)
	}
	if filter.CategoryId > 0 {
		query = query.Where("category_id = ?", filter.CategoryId)
	}
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	var items []*Inventory
	err := query.Preload("Brand").Preload("Category").
		Order("id DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// AllInventoriesByBrand backs the purchase/receive screens: every item of one
// brand, unpaginated.
func AllInventoriesByBrand(ctx context.Context, brandId int) ([]*Inventory, error) {
	if brandId <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	db := config.GetDB()
	var items []*Inventory
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandId).
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
