package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiveLineInput struct {
	InventoryId int `json:"inventory_id" binding:"required"`
	Quantity    int `json:"quantity" binding:"required,gt=0"`
}

type NewReceive struct {
	BrandId int                `json:"brand_id" binding:"required"`
	Details []ReceiveLineInput `json:"details" binding:"required,min=1,dive"`
}

// CreateReceive confirms arrival of purchased goods: each line moves quantity
// from on_road to in_stock. Receiving more than is on the road for any line
// aborts the whole batch with nothing moved.
func CreateReceive(ctx context.Context, input *NewReceive) (*models.Receive, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	brand, err := utils.FetchModel[models.Brand](ctx, input.BrandId)
	if err != nil {
		return nil, err
	}

	receive := models.Receive{
		BrandId: input.BrandId,
	}
	if uid, ok := utils.GetUserUidFromContext(ctx); ok {
		receive.OperatorUid = uid
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]int, 0, len(input.Details))
		for _, line := range input.Details {
			ids = append(ids, line.InventoryId)
		}
		locked, err := models.LockInventories(tx, ids)
		if err != nil {
			return err
		}
		for _, item := range locked {
			if item.BrandId != input.BrandId {
				return fmt.Errorf("%s does not belong to %s: %w",
					item.FullName(), brand.Name, models.ErrBrandMismatch)
			}
		}

		if err := tx.Create(&receive).Error; err != nil {
			return err
		}

		var summary []string
		for _, line := range input.Details {
			item := locked[line.InventoryId]
			if err := models.MoveOnRoadToInStock(tx, line.InventoryId, line.Quantity); err != nil {
				return fmt.Errorf("%s (on road %d, receiving %d): %w",
					item.FullName(), item.OnRoad, line.Quantity, err)
			}
			detail := models.ReceiveDetail{
				ReceiveId:   receive.ID,
				InventoryId: line.InventoryId,
				Quantity:    line.Quantity,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			summary = append(summary, fmt.Sprintf("%s x%d", item.FullName(), line.Quantity))
		}

		description := fmt.Sprintf("到货入库: %s", strings.Join(summary, ", "))
		return models.CreateReceiveLog(tx, receive.ID, description)
	})
	if err != nil {
		config.LogError(logger, "receiveWorkflow.go", "CreateReceive", "Transaction", input, err)
		return nil, err
	}

	return models.GetReceive(ctx, receive.ID)
}

// UpdateReceiveDetail amends one receive line. in_stock always moves by the
// difference; the on-road side is only reversed when it stays non-negative,
// because later purchases may already have been consumed against it.
func UpdateReceiveDetail(ctx context.Context, detailId int, newQuantity int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	if newQuantity <= 0 {
		return fmt.Errorf("quantity must be positive, use delete to remove the line")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail models.ReceiveDetail
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&detail, "id = ?", detailId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		diff := newQuantity - detail.Quantity
		if diff == 0 {
			return models.ErrNoChange
		}

		locked, err := models.LockInventories(tx, []int{detail.InventoryId})
		if err != nil {
			return err
		}
		item := locked[detail.InventoryId]

		if err := models.AddInStockQty(tx, detail.InventoryId, diff); err != nil {
			return err
		}
		reversed, err := models.TryAddOnRoadQty(tx, detail.InventoryId, -diff)
		if err != nil {
			return err
		}

		oldQuantity := detail.Quantity
		if err := tx.Model(&detail).Update("quantity", newQuantity).Error; err != nil {
			return err
		}
		if err := models.RefreshInventory(tx, item); err != nil {
			return err
		}

		description := fmt.Sprintf("入库修正: %s 数量 %d -> %d (差额 %+d), 现库存 %d",
			item.FullName(), oldQuantity, newQuantity, diff, item.InStock)
		if !reversed {
			description += ", 在途数不足未冲回"
		}
		return models.CreateReceiveLog(tx, detail.ReceiveId, description)
	})
	if err != nil {
		if err != models.ErrNoChange {
			config.LogError(logger, "receiveWorkflow.go", "UpdateReceiveDetail", "Transaction", detailId, err)
		}
		return err
	}
	return nil
}

// DeleteReceiveDetail reverses one receive line completely: the quantity
// leaves in_stock and goes back on the road. The parent receive is deleted
// when its last line goes.
func DeleteReceiveDetail(ctx context.Context, detailId int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail models.ReceiveDetail
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&detail, "id = ?", detailId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		var receive models.Receive
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&receive, "id = ?", detail.ReceiveId).Error; err != nil {
			return err
		}
		locked, err := models.LockInventories(tx, []int{detail.InventoryId})
		if err != nil {
			return err
		}
		item := locked[detail.InventoryId]

		if err := models.AddInStockQty(tx, detail.InventoryId, -detail.Quantity); err != nil {
			return fmt.Errorf("%s (in stock %d, reversing %d): %w",
				item.FullName(), item.InStock, detail.Quantity, err)
		}
		if err := models.AddOnRoadQty(tx, detail.InventoryId, detail.Quantity); err != nil {
			return err
		}

		if err := tx.Delete(&detail).Error; err != nil {
			return err
		}

		var remaining int64
		err = tx.Model(&models.ReceiveDetail{}).
			Where("receive_id = ?", receive.ID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Where("receive_id = ?", receive.ID).Delete(&models.ReceiveLog{}).Error; err != nil {
				return err
			}
			return tx.Delete(&receive).Error
		}

		description := fmt.Sprintf("入库删行: %s x%d 冲回在途", item.FullName(), detail.Quantity)
		return models.CreateReceiveLog(tx, receive.ID, description)
	})
	if err != nil {
		config.LogError(logger, "receiveWorkflow.go", "DeleteReceiveDetail", "Transaction", detailId, err)
		return err
	}
	return nil
}
