package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// costMismatchTolerance is how far the declared total cost may drift from the
// sum of line costs before the order gets an advisory log entry. Mismatches
// never block the sale.
var costMismatchTolerance = decimal.NewFromFloat(1.00)

type OrderLineInput struct {
	InventoryId int `json:"inventory_id" binding:"required"`
	Quantity    int `json:"quantity" binding:"required,gt=0"`
}

type NewOrder struct {
	BrandId     int              `json:"brand_id" binding:"required"`
	OrderNumber string           `json:"order_number" binding:"required"`
	ClientUid   string           `json:"client_uid" binding:"required"`
	StaffUid    string           `json:"staff_uid" binding:"required"`
	TotalAmount decimal.Decimal  `json:"total_amount" binding:"required"`
	DownPayment decimal.Decimal  `json:"down_payment"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	Address     string           `json:"address" binding:"required"`
	Remark      string           `json:"remark"`
	Details     []OrderLineInput `json:"details" binding:"required,min=1,dive"`
}

type InstallOrderInput struct {
	InstallerId       int             `json:"installer_id" binding:"required"`
	InstallationTime  *time.Time      `json:"installation_time"`
	InstallationFee   decimal.Decimal `json:"installation_fee"`
	TransportationFee decimal.Decimal `json:"transportation_fee"`
}

// CreateOrder signs a sale and reserves every line against been_order.
// Reservation deliberately does not check available stock: the business sells
// against goods still on the road, and fulfillment is where the hard check
// lives. Cost and profit anomalies are logged, never rejected.
func CreateOrder(ctx context.Context, input *NewOrder) (*models.Order, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[models.Order](ctx, "order_number", input.OrderNumber, nil); err != nil {
		return nil, err
	}
	if _, err := models.GetClient(ctx, input.ClientUid); err != nil {
		return nil, err
	}

	order := models.Order{
		BrandId:        input.BrandId,
		OrderNumber:    input.OrderNumber,
		ClientUid:      input.ClientUid,
		StaffUid:       input.StaffUid,
		TotalAmount:    input.TotalAmount,
		DownPayment:    input.DownPayment,
		TotalCost:      input.TotalCost,
		DeliveryStatus: models.DeliveryStatusNew,
		Address:        input.Address,
		Remark:         input.Remark,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
				return fmt.Errorf("%s belongs to another brand: %w",
					item.FullName(), models.ErrBrandMismatch)
			}
		}

		calculatedCost := decimal.Zero
		for _, line := range input.Details {
			item := locked[line.InventoryId]
			calculatedCost = calculatedCost.Add(item.Cost.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if input.TotalCost.IsZero() {
			order.TotalCost = calculatedCost
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var summary []string
		for _, line := range input.Details {
			item := locked[line.InventoryId]
			if err := models.AddBeenOrderQty(tx, line.InventoryId, line.Quantity); err != nil {
				return err
			}
			detail := models.OrderDetail{
				OrderId:     order.ID,
				InventoryId: line.InventoryId,
				Quantity:    line.Quantity,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
			summary = append(summary, fmt.Sprintf("%s x%d", item.FullName(), line.Quantity))
		}

		description := fmt.Sprintf("签单: %s, 总金额 %s, 定金 %s, 成本总价 %s, 初步毛利 %s",
			strings.Join(summary, ", "), order.TotalAmount.StringFixed(2), order.DownPayment.StringFixed(2),
			order.TotalCost.StringFixed(2), order.GrossProfit.StringFixed(2))
		if err := models.CreateOperationLog(tx, order.ID, description); err != nil {
			return err
		}

		if !input.TotalCost.IsZero() {
			mismatch := input.TotalCost.Sub(calculatedCost).Abs()
			if mismatch.GreaterThan(costMismatchTolerance) {
				advisory := fmt.Sprintf("成本异常: 录入成本 %s 与计算成本 %s 相差 %s",
					input.TotalCost.StringFixed(2), calculatedCost.StringFixed(2), mismatch.StringFixed(2))
				if err := models.CreateOperationLog(tx, order.ID, advisory); err != nil {
					return err
				}
			}
		}
		if order.GrossProfit.IsNegative() {
			advisory := fmt.Sprintf("利润异常: 本单毛利为 %s", order.GrossProfit.StringFixed(2))
			if err := models.CreateOperationLog(tx, order.ID, advisory); err != nil {
				return err
			}
		}

		// An open balance gets a zero-amount placeholder row so the payment
		// screen always has something to show against the order.
		if order.PendingBalance.GreaterThan(decimal.Zero) {
			payment := models.BalancePayment{
				OrderId: order.ID,
				Amount:  decimal.Zero,
			}
			if uid, ok := utils.GetUserUidFromContext(ctx); ok {
				payment.OperatorUid = uid
			}
			if name, ok := utils.GetUserNameFromContext(ctx); ok {
				payment.OperatorName = name
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		config.LogError(logger, "orderWorkflow.go", "CreateOrder", "Transaction", input, err)
		return nil, err
	}

	return models.GetOrder(ctx, order.ID)
}

// InstallOrder ships a signed order. This is the one place stock is hard
// checked: every line must be coverable from in_stock, and a short batch
// reports every shortage at once with nothing moved. On success reservations
// are consumed, stock leaves, sold accumulates and the order is marked
// Shipped with its installation fees recorded.
func InstallOrder(ctx context.Context, orderId int, input *InstallOrderInput) (*models.Order, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if order.DeliveryStatus != models.DeliveryStatusNew {
			return fmt.Errorf("order %s is %s: %w",
				order.OrderNumber, order.DeliveryStatus, models.ErrAlreadyShipped)
		}

		if err := utils.StockLock(ctx, order.BrandId, "orderWorkflow.go", "InstallOrder"); err != nil {
			return err
		}

		var details []models.OrderDetail
		if err := tx.Where("order_id = ?", order.ID).Find(&details).Error; err != nil {
			return err
		}
		// Orders that predate a stocktake keep their money history but lose
		// their lines; they cannot ship anymore.
		if len(details) == 0 {
			return fmt.Errorf("order %s has no detail lines left: %w",
				order.OrderNumber, models.ErrNoOrderLines)
		}

		required := make(map[int]int)
		ids := make([]int, 0, len(details))
		for _, detail := range details {
			if _, seen := required[detail.InventoryId]; !seen {
				ids = append(ids, detail.InventoryId)
			}
			required[detail.InventoryId] += detail.Quantity
		}
		locked, err := models.LockInventories(tx, ids)
		if err != nil {
			return err
		}

		var shortages []models.StockShortage
		for _, id := range ids {
			item := locked[id]
			if item.InStock < required[id] {
				shortages = append(shortages, models.StockShortage{
					InventoryId: id,
					Name:        item.FullName(),
					Required:    required[id],
					Available:   item.InStock,
				})
			}
		}
		if len(shortages) > 0 {
			return &models.InsufficientStockError{Shortages: shortages}
		}

		for _, id := range ids {
			if err := models.ApplyInstallQty(tx, id, required[id]); err != nil {
				return err
			}
		}

		installer, err := utils.FetchModel[models.Installer](ctx, input.InstallerId)
		if err != nil {
			return err
		}

		order.InstallerId = &installer.ID
		order.InstallationTime = input.InstallationTime
		order.InstallationFee = input.InstallationFee
		order.TransportationFee = input.TransportationFee
		order.DeliveryStatus = models.DeliveryStatusShipped
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		description := fmt.Sprintf("发货安装: 安装师傅 %s, 安装费 %s, 运输费 %s",
			installer.Name, input.InstallationFee.StringFixed(2), input.TransportationFee.StringFixed(2))
		return models.CreateOperationLog(tx, order.ID, description)
	})
	if err != nil {
		config.LogError(logger, "orderWorkflow.go", "InstallOrder", "Transaction", orderId, err)
		return nil, err
	}

	return models.GetOrder(ctx, orderId)
}

// VoidOrder abandons a signed, unshipped order: reservations are released,
// the order and its lines and payment records are deleted. The operation logs
// stay behind as the only trace the order existed.
func VoidOrder(ctx context.Context, orderId int, reason string) error {
	logger := config.GetLogger()
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if order.DeliveryStatus != models.DeliveryStatusNew {
			return fmt.Errorf("order %s is %s: %w",
				order.OrderNumber, order.DeliveryStatus, models.ErrNotCancelable)
		}

		if err := utils.StockLock(ctx, order.BrandId, "orderWorkflow.go", "VoidOrder"); err != nil {
			return err
		}

		var details []models.OrderDetail
		if err := tx.Where("order_id = ?", order.ID).Find(&details).Error; err != nil {
			return err
		}

		released := make(map[int]int)
		ids := make([]int, 0, len(details))
		for _, detail := range details {
			if _, seen := released[detail.InventoryId]; !seen {
				ids = append(ids, detail.InventoryId)
			}
			released[detail.InventoryId] += detail.Quantity
		}
		if _, err := models.LockInventories(tx, ids); err != nil {
			return err
		}
		for _, id := range ids {
			if err := models.AddBeenOrderQty(tx, id, -released[id]); err != nil {
				return err
			}
		}

		description := fmt.Sprintf("弃单: 订单 %s 作废, 预订全部释放", order.OrderNumber)
		if reason != "" {
			description += ", 原因: " + reason
		}
		if err := models.CreateOperationLog(tx, order.ID, description); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.BalancePayment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		config.LogError(logger, "orderWorkflow.go", "VoidOrder", "Transaction", orderId, err)
		return err
	}
	return nil
}

// PayBalance records one customer payment against an open order and re-derives
// the money fields from the full payment history.
func PayBalance(ctx context.Context, orderId int, amount decimal.Decimal) (*models.Order, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if order.DeliveryStatus == models.DeliveryStatusVoid {
			return models.ErrNotCancelable
		}
		if amount.GreaterThan(order.PendingBalance) {
			return fmt.Errorf("payment %s exceeds pending balance %s",
				amount.StringFixed(2), order.PendingBalance.StringFixed(2))
		}

		payment := models.BalancePayment{
			OrderId: order.ID,
			Amount:  amount,
		}
		if uid, ok := utils.GetUserUidFromContext(ctx); ok {
			payment.OperatorUid = uid
		}
		if name, ok := utils.GetUserNameFromContext(ctx); ok {
			payment.OperatorName = name
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// received_balance is re-summed from the rows rather than incremented,
		// so a racing correction can never leave it drifted.
		var received decimal.Decimal
		err := tx.Model(&models.BalancePayment{}).
			Where("order_id = ?", order.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&received).Error
		if err != nil {
			return err
		}

		order.ReceivedBalance = received
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		description := fmt.Sprintf("收取尾款: %s, 剩余尾款 %s",
			amount.StringFixed(2), order.PendingBalance.StringFixed(2))
		return models.CreateOperationLog(tx, order.ID, description)
	})
	if err != nil {
		config.LogError(logger, "orderWorkflow.go", "PayBalance", "Transaction", orderId, err)
		return nil, err
	}

	return models.GetOrder(ctx, orderId)
}
