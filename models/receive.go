package models

import (
	"context"
	"errors"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"gorm.io/gorm"
)

// Receive confirms that purchased goods physically arrived. It follows one or
// more Purchases for the same items in time order only; there is no foreign
// key between the two.
type Receive struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BrandId     int             `gorm:"index;not null" json:"brand_id"`
	Brand       *Brand          `json:"brand,omitempty"`
	OperatorUid string          `gorm:"size:36;not null" json:"operator_uid"`
	Details     []ReceiveDetail `json:"details,omitempty"`
	Logs        []ReceiveLog    `json:"logs,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

type ReceiveDetail struct {
	ID          int        `gorm:"primary_key" json:"id"`
	ReceiveId   int        `gorm:"index;not null" json:"receive_id"`
	InventoryId int        `gorm:"index;not null" json:"inventory_id"`
	Inventory   *Inventory `json:"inventory,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
}

type ReceiveLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ReceiveId    int       `gorm:"index;not null" json:"receive_id"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	OperatorUid  string    `gorm:"size:36;not null" json:"operator_uid"`
	OperatorName string    `gorm:"size:30" json:"operator_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateReceiveLog(tx *gorm.DB, receiveId int, description string) error {
	ctx := tx.Statement.Context
	uid, ok := utils.GetUserUidFromContext(ctx)
	if !ok || uid == "" {
		return errors.New("operator uid is required")
	}
	name, _ := utils.GetUserNameFromContext(ctx)

	log := ReceiveLog{
		ReceiveId:    receiveId,
		Description:  description,
		OperatorUid:  uid,
		OperatorName: name,
	}
	return tx.Create(&log).Error
}

func GetReceive(ctx context.Context, id int) (*Receive, error) {
	return utils.FetchModel[Receive](ctx, id, "Brand", "Details", "Details.Inventory", "Logs")
}

func ListReceives(ctx context.Context, page int, pageSize int) ([]*Receive, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Receive{})

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

	var receives []*Receive
	err := query.Preload("Brand").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&receives).Error
	if err != nil {
		return nil, 0, err
	}

	return receives, total, nil
}

// ReceivedAfter sums the received quantity of one item across all receives
// created after the given time. Purchase-line deletion uses it to detect
// downstream consumption.
func ReceivedAfter(tx *gorm.DB, inventoryId int, after time.Time) (int, error) {
	var total int64
	err := tx.Model(&ReceiveDetail{}).
		Joins("JOIN receives ON receives.id = receive_details.receive_id").
		Where("receive_details.inventory_id = ? AND receives.created_at >= ?", inventoryId, after).
		Select("COALESCE(SUM(receive_details.quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
