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

// Order is a customer sale. pending_balance, gross_profit and payment_status
// are derived; BeforeSave recomputes them on every write, so callers never
// set them directly.
type Order struct {
	ID                int              `gorm:"primary_key" json:"id"`
	BrandId           int              `gorm:"index;not null" json:"brand_id"`
	Brand             *Brand           `json:"brand,omitempty"`
	OrderNumber       string           `gorm:"size:30;unique;not null" json:"order_number"`
	ClientUid         string           `gorm:"index;size:36;not null" json:"client_uid"`
	Client            *Client          `gorm:"foreignKey:ClientUid" json:"client,omitempty"`
	StaffUid          string           `gorm:"index;size:36;not null" json:"staff_uid"`
	Staff             *ERPUser         `gorm:"foreignKey:StaffUid" json:"staff,omitempty"`
	TotalAmount       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DownPayment       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"down_payment"`
	ReceivedBalance   decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"received_balance"`
	PendingBalance    decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"pending_balance"`
	DeliveryStatus    DeliveryStatus   `gorm:"type:enum('New','Shipped','Void');not null;default:New" json:"delivery_status"`
	PaymentStatus     PaymentStatus    `gorm:"type:enum('Unpaid','Settled','Void');not null;default:Unpaid" json:"payment_status"`
	TotalCost         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_cost"`
	InstallationTime  *time.Time       `json:"installation_time"`
	InstallerId       *int             `json:"installer_id"`
	Installer         *Installer       `json:"installer,omitempty"`
	InstallationFee   decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"installation_fee"`
	TransportationFee decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"transportation_fee"`
	GrossProfit       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"gross_profit"`
	Address           string           `gorm:"size:200;not null" json:"address"`
	Remark            string           `gorm:"type:text" json:"remark"`
	Details           []OrderDetail    `json:"details,omitempty"`
	Logs              []OperationLog   `json:"logs,omitempty"`
	BalancePayments   []BalancePayment `json:"balance_payments,omitempty"`
	SignTime          time.Time        `gorm:"autoCreateTime;index" json:"sign_time"`
	LastOperationTime time.Time        `gorm:"autoUpdateTime" json:"last_operation_time"`
}

type OrderDetail struct {
	ID          int        `gorm:"primary_key" json:"id"`
	OrderId     int        `gorm:"index;not null" json:"order_id"`
	InventoryId int        `gorm:"index;not null" json:"inventory_id"`
	Inventory   *Inventory `json:"inventory,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
}

// OperationLog entries are retained even after their order is voided and
// deleted; they are the only surviving trace of the deleted ledger activity.
type OperationLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	OrderId      int       `gorm:"index;not null" json:"order_id"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	OperatorUid  string    `gorm:"size:36;not null" json:"operator_uid"`
	OperatorName string    `gorm:"size:30" json:"operator_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type BalancePayment struct {
	ID           int             `gorm:"primary_key" json:"id"`
	OrderId      int             `gorm:"index;not null" json:"order_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	OperatorUid  string          `gorm:"size:36;not null" json:"operator_uid"`
	OperatorName string          `gorm:"size:30" json:"operator_name"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"payment_time"`
}

// RecalculateDerived recomputes the money fields and the payment state.
// A voided order stays void no matter what the balance says.
func (o *Order) RecalculateDerived() {
	o.PendingBalance = o.TotalAmount.Sub(o.DownPayment).Sub(o.ReceivedBalance)
	o.GrossProfit = o.TotalAmount.Sub(o.TotalCost).Sub(o.InstallationFee).Sub(o.TransportationFee)

	if o.DeliveryStatus == DeliveryStatusVoid {
		o.PaymentStatus = PaymentStatusVoid
	} else if o.PendingBalance.LessThanOrEqual(decimal.Zero) {
		o.PaymentStatus = PaymentStatusSettled
	} else {
		o.PaymentStatus = PaymentStatusUnpaid
	}
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.RecalculateDerived()
	return nil
}

// CreateOperationLog appends one audit entry inside the caller's transaction.
func CreateOperationLog(tx *gorm.DB, orderId int, description string) error {
	ctx := tx.Statement.Context
	uid, ok := utils.GetUserUidFromContext(ctx)
	if !ok || uid == "" {
		return errors.New("operator uid is required")
	}
	name, _ := utils.GetUserNameFromContext(ctx)

	log := OperationLog{
		OrderId:      orderId,
		Description:  description,
		OperatorUid:  uid,
		OperatorName: name,
	}
	return tx.Create(&log).Error
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id,
		"Brand", "Client", "Staff", "Installer", "Details", "Details.Inventory", "BalancePayments")
}

type OrderFilter struct {
	BrandId        int
	ClientUid      string
	StaffUid       string
	DeliveryStatus DeliveryStatus
	PaymentStatus  PaymentStatus
	DateStart      *time.Time
	DateEnd        *time.Time
	Search         string
	Page           int
	PageSize       int
}

// OrderListSummary carries the aggregate figures the order list screen shows
// next to the results.
type OrderListSummary struct {
	MonthlyTotalAmount  decimal.Decimal `json:"monthly_total_amount"`
	MonthlyTotalProfit  decimal.Decimal `json:"monthly_total_profit"`
	TotalPendingBalance decimal.Decimal `json:"total_pending_balance"`
}

func ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, int64, *OrderListSummary, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Order{})

	if filter.BrandId > 0 {
		query = query.Where("brand_id = ?", filter.BrandId)
	}
	if filter.ClientUid != "" {
		query = query.Where("client_uid = ?", filter.ClientUid)
	}
	if filter.StaffUid != "" {
		query = query.Where("staff_uid = ?", filter.StaffUid)
	}
	if filter.DeliveryStatus != "" {
		query = query.Where("delivery_status = ?", filter.DeliveryStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.DateStart != nil {
		query = query.Where("sign_time >= ?", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		query = query.Where("sign_time <= ?", *filter.DateEnd)
	}
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	var orders []*Order
	err := query.Preload("Brand").Preload("Client").Preload("Staff").
		Order("sign_time DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, nil, err
	}

	summary, err := orderListSummary(ctx)
	if err != nil {
		return nil, 0, nil, err
	}

	return orders, total, summary, nil
}

func orderListSummary(ctx context.Context) (*OrderListSummary, error) {
	db := config.GetDB()

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var summary OrderListSummary

	row := db.WithContext(ctx).Model(&Order{}).
		Where("sign_time >= ? AND sign_time < ?", monthStart, monthEnd).
		Select("COALESCE(SUM(total_amount), 0), COALESCE(SUM(gross_profit), 0)").
		Row()
	if err := row.Scan(&summary.MonthlyTotalAmount, &summary.MonthlyTotalProfit); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Model(&Order{}).
		Where("payment_status = ?", PaymentStatusUnpaid).
		Select("COALESCE(SUM(pending_balance), 0)").
		Scan(&summary.TotalPendingBalance).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func ListOrderDetails(ctx context.Context, orderId int) ([]*OrderDetail, error) {
	db := config.GetDB()
	var details []*OrderDetail
	err := db.WithContext(ctx).
		Where("order_id = ?", orderId).
		Preload("Inventory").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func ListOperationLogs(ctx context.Context, orderId int) ([]*OperationLog, error) {
	db := config.GetDB()
	var logs []*OperationLog
	err := db.WithContext(ctx).
		Where("order_id = ?", orderId).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func ListBalancePayments(ctx context.Context, orderId int) ([]*BalancePayment, error) {
	db := config.GetDB()
	var payments []*BalancePayment
	err := db.WithContext(ctx).
		Where("order_id = ?", orderId).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
