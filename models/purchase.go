package models

import (
	"context"
	"errors"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is a supplier inbound order: goods are paid for and on the road.
type Purchase struct {
	ID          int              `gorm:"primary_key" json:"id"`
	BrandId     int              `gorm:"index;not null" json:"brand_id"`
	Brand       *Brand           `json:"brand,omitempty"`
	OperatorUid string           `gorm:"size:36;not null" json:"operator_uid"`
	TotalCost   decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"total_cost"`
	Details     []PurchaseDetail `json:"details,omitempty"`
	Logs        []PurchaseLog    `json:"logs,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

type PurchaseDetail struct {
	ID          int        `gorm:"primary_key" json:"id"`
	PurchaseId  int        `gorm:"index;not null" json:"purchase_id"`
	InventoryId int        `gorm:"index;not null" json:"inventory_id"`
	Inventory   *Inventory `json:"inventory,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
}

type PurchaseLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	PurchaseId   int       `gorm:"index;not null" json:"purchase_id"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	OperatorUid  string    `gorm:"size:36;not null" json:"operator_uid"`
	OperatorName string    `gorm:"size:30" json:"operator_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CreatePurchaseLog appends one audit entry inside the caller's transaction.
// Operator identity comes from the transaction's context. Log entries are
// write-only as far as the engine is concerned.
func CreatePurchaseLog(tx *gorm.DB, purchaseId int, description string) error {
	ctx := tx.Statement.Context
	uid, ok := utils.GetUserUidFromContext(ctx)
	if !ok || uid == "" {
		return errors.New("operator uid is required")
	}
	name, _ := utils.GetUserNameFromContext(ctx)

	log := PurchaseLog{
		PurchaseId:   purchaseId,
		Description:  description,
		OperatorUid:  uid,
		OperatorName: name,
	}
	return tx.Create(&log).Error
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return utils.FetchModel[Purchase](ctx, id, "Brand", "Details", "Details.Inventory", "Logs")
}

func ListPurchases(ctx context.Context, page int, pageSize int) ([]*Purchase, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Purchase{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var purchases []*Purchase
	err := query.Preload("Brand").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}
