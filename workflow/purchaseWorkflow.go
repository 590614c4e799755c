package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseL(ine) inputs arrive pre-validated by gin binding; quantities are
// strictly positive, corrections go through the dedicated amend operations.

type PurchaseLineInput struct {
	InventoryId int `json:"inventory_id" binding:"required"`
	Quantity    int `json:"quantity" binding:"required,gt=0"`
}

type NewPurchase struct {
	BrandId   int                 `json:"brand_id" binding:"required"`
	TotalCost decimal.Decimal     `json:"total_cost" binding:"required"`
	Details   []PurchaseLineInput `json:"details" binding:"required,min=1,dive"`
}

// CreatePurchase books a supplier order: every line's quantity goes on the
// road and one log entry summarizes the whole batch. Any line whose item does
// not belong to the declared brand aborts the batch untouched.
func CreatePurchase(ctx context.Context, input *NewPurchase) (*models.Purchase, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	brand, err := utils.FetchModel[models.Brand](ctx, input.BrandId)
	if err != nil {
		return nil, err
	}

	purchase := models.Purchase{
		BrandId:   input.BrandId,
		TotalCost: input.TotalCost,
	}
	if uid, ok := utils.GetUserUidFromContext(ctx); ok {
		purchase.OperatorUid = uid
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

		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		var summary []string
		calculatedCost := decimal.Zero
		for _, line := range input.Details {
			item := locked[line.InventoryId]
			if err := models.AddOnRoadQty(tx, line.InventoryId, line.Quantity); err != nil {
				return err
			}
			detail := models.PurchaseDetail{
				PurchaseId:  purchase.ID,
				InventoryId: line.InventoryId,
				Quantity:    line.Quantity,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			calculatedCost = calculatedCost.Add(item.Cost.Mul(decimal.NewFromInt(int64(line.Quantity))))
			summary = append(summary, fmt.Sprintf("%s x%d", item.FullName(), line.Quantity))
		}

		description := fmt.Sprintf("采购下单: %s, 总成本 %s", strings.Join(summary, ", "), input.TotalCost.StringFixed(2))
		if err := models.CreatePurchaseLog(tx, purchase.ID, description); err != nil {
			return err
		}

		// Declared cost that drifts from the catalog line cost is flagged,
		// never rejected, same as order creation.
		mismatch := input.TotalCost.Sub(calculatedCost).Abs()
		if mismatch.GreaterThan(costMismatchTolerance) {
			advisory := fmt.Sprintf("成本异常: 录入成本 %s 与计算成本 %s 相差 %s",
				input.TotalCost.StringFixed(2), calculatedCost.StringFixed(2), mismatch.StringFixed(2))
			if err := models.CreatePurchaseLog(tx, purchase.ID, advisory); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "CreatePurchase", "Transaction", input, err)
		return nil, err
	}

	return models.GetPurchase(ctx, purchase.ID)
}

// UpdatePurchaseDetail amends one line's quantity. The difference moves the
// item's on-road counter; pulling more back than is still on the road fails
// the whole correction.
func UpdatePurchaseDetail(ctx context.Context, detailId int, newQuantity int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	if newQuantity <= 0 {
		return fmt.Errorf("quantity must be positive, use delete to remove the line")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail models.PurchaseDetail
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

		var purchase models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "id = ?", detail.PurchaseId).Error; err != nil {
			return err
		}
		locked, err := models.LockInventories(tx, []int{detail.InventoryId})
		if err != nil {
			return err
		}
		item := locked[detail.InventoryId]

		if err := models.AddOnRoadQty(tx, detail.InventoryId, diff); err != nil {
			if errors.Is(err, models.ErrInvariantViolation) {
				return fmt.Errorf("%s: %w", item.FullName(), models.ErrInsufficientOnRoad)
			}
			return err
		}

		costDiff := item.Cost.Mul(decimal.NewFromInt(int64(diff)))
		err = tx.Model(&models.Purchase{}).
			Where("id = ?", purchase.ID).
			Update("total_cost", gorm.Expr("total_cost + ?", costDiff)).Error
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

		description := fmt.Sprintf("采购修正: %s 数量 %d -> %d (差额 %+d), 剩余在途 %d, 总成本调整 %s",
			item.FullName(), oldQuantity, newQuantity, diff, item.OnRoad, costDiff.StringFixed(2))
		return models.CreatePurchaseLog(tx, purchase.ID, description)
	})
	if err != nil {
		if err != models.ErrNoChange {
			config.LogError(logger, "purchaseWorkflow.go", "UpdatePurchaseDetail", "Transaction", detailId, err)
		}
		return err
	}
	return nil
}

// DeletePurchaseDetail removes a line entirely and pulls its quantity back off
// the road. A line that later receives have already drawn on cannot go; the
// parent purchase is deleted when its last line goes.
func DeletePurchaseDetail(ctx context.Context, detailId int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail models.PurchaseDetail
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&detail, "id = ?", detailId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		var purchase models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "id = ?", detail.PurchaseId).Error; err != nil {
			return err
		}
		locked, err := models.LockInventories(tx, []int{detail.InventoryId})
		if err != nil {
			return err
		}
		item := locked[detail.InventoryId]

		received, err := models.ReceivedAfter(tx, detail.InventoryId, purchase.CreatedAt)
		if err != nil {
			return err
		}
		if received > 0 {
			return fmt.Errorf("%s has %d received since this purchase: %w",
				item.FullName(), received, models.ErrDependencyExists)
		}

		if err := models.AddOnRoadQty(tx, detail.InventoryId, -detail.Quantity); err != nil {
			if errors.Is(err, models.ErrInvariantViolation) {
				return fmt.Errorf("%s: %w", item.FullName(), models.ErrInsufficientOnRoad)
			}
			return err
		}

		costDiff := item.Cost.Mul(decimal.NewFromInt(int64(detail.Quantity)))
		err = tx.Model(&models.Purchase{}).
			Where("id = ?", purchase.ID).
			Update("total_cost", gorm.Expr("total_cost - ?", costDiff)).Error
		if err != nil {
			return err
		}

		if err := tx.Delete(&detail).Error; err != nil {
			return err
		}

		var remaining int64
		err = tx.Model(&models.PurchaseDetail{}).
			Where("purchase_id = ?", purchase.ID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&models.PurchaseLog{}).Error; err != nil {
				return err
			}
			return tx.Delete(&purchase).Error
		}

		description := fmt.Sprintf("采购删行: %s x%d 移除, 总成本调减 %s",
			item.FullName(), detail.Quantity, costDiff.StringFixed(2))
		return models.CreatePurchaseLog(tx, purchase.ID, description)
	})
	if err != nil {
		config.LogError(logger, "purchaseWorkflow.go", "DeletePurchaseDetail", "Transaction", detailId, err)
		return err
	}
	return nil
}

// UpdatePurchaseCost corrects the declared total cost of a purchase without
// touching any counters.
func UpdatePurchaseCost(ctx context.Context, purchaseId int, newTotalCost decimal.Decimal) error {
	logger := config.GetLogger()
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "id = ?", purchaseId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		if purchase.TotalCost.Equal(newTotalCost) {
			return models.ErrNoChange
		}

		old := purchase.TotalCost
		err := tx.Model(&purchase).Update("total_cost", newTotalCost).Error
		if err != nil {
			return err
		}

		description := fmt.Sprintf("采购成本修正: %s -> %s",
			old.StringFixed(2), newTotalCost.StringFixed(2))
		return models.CreatePurchaseLog(tx, purchase.ID, description)
	})
	if err != nil {
		if err != models.ErrNoChange {
			config.LogError(logger, "purchaseWorkflow.go", "UpdatePurchaseCost", "Transaction", purchaseId, err)
		}
		return err
	}
	return nil
}
