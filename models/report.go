package models

import (
	"context"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/shopspring/decimal"
)

// Home-page analytics. Each query is cached in redis for five minutes; the
// results are informational and a little staleness is fine.

const reportCacheTTL = 5 * time.Minute

const (
	cacheKeyInventoryByBrand = "report:inventory_by_brand"
	cacheKeyStaffPerformance = "report:staff_performance"
	cacheKeyMonthlySales     = "report:monthly_sales"
)

// InvalidateReportCache drops every cached analytics result. Bulk rewrites
// (the stocktake reset) call it so the home page never shows pre-cutover
// figures for up to a TTL.
func InvalidateReportCache() {
	_ = config.RemoveRedisKey(cacheKeyInventoryByBrand, cacheKeyStaffPerformance, cacheKeyMonthlySales)
}

type BrandInventoryValue struct {
	BrandId    int             `json:"brand_id"`
	BrandName  string          `json:"brand_name"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// InventoryValueByBrand sums (on_road + in_stock) * cost per brand.
func InventoryValueByBrand(ctx context.Context) ([]BrandInventoryValue, error) {
	var cached []BrandInventoryValue
	if ok, err := config.GetRedisObject(cacheKeyInventoryByBrand, &cached); err == nil && ok {
		return cached, nil
	}

	db := config.GetDB()
	var results []BrandInventoryValue
	err := db.WithContext(ctx).Model(&Inventory{}).
		Joins("JOIN brands ON brands.id = inventories.brand_id").
		Select("inventories.brand_id AS brand_id, brands.name AS brand_name, COALESCE(SUM((inventories.on_road + inventories.in_stock) * inventories.cost), 0) AS total_value").
		Group("inventories.brand_id, brands.name").
		Order("total_value DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(cacheKeyInventoryByBrand, results, reportCacheTTL)
	return results, nil
}

type StaffPerformance struct {
	StaffUid         string          `json:"staff_uid"`
	StaffName        string          `json:"staff_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPercentage float64         `json:"amount_percentage"`
}

// MonthlyStaffPerformance ranks staff by this month's order totals, voided
// orders excluded, with each staff's share of the total.
func MonthlyStaffPerformance(ctx context.Context) ([]StaffPerformance, error) {
	var cached []StaffPerformance
	if ok, err := config.GetRedisObject(cacheKeyStaffPerformance, &cached); err == nil && ok {
		return cached, nil
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	db := config.GetDB()
	var results []StaffPerformance
	err := db.WithContext(ctx).Model(&Order{}).
		Joins("JOIN erp_users ON erp_users.uid = orders.staff_uid").
		Where("orders.sign_time >= ? AND orders.sign_time < ?", monthStart, monthEnd).
		Where("orders.delivery_status <> ?", DeliveryStatusVoid).
		Select("orders.staff_uid AS staff_uid, erp_users.name AS staff_name, COALESCE(SUM(orders.total_amount), 0) AS total_amount").
		Group("orders.staff_uid, erp_users.name").
		Order("total_amount DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.TotalAmount)
	}
	if sum.IsZero() {
		sum = decimal.NewFromInt(1)
	}
	for i := range results {
		pct, _ := results[i].TotalAmount.Div(sum).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		results[i].AmountPercentage = pct
	}

	_ = config.SetRedisObject(cacheKeyStaffPerformance, results, reportCacheTTL)
	return results, nil
}

// CurrentYearMonthlySales returns this year's order totals keyed by month
// 1..12, voided orders excluded; months without sales map to zero.
func CurrentYearMonthlySales(ctx context.Context) (map[int]decimal.Decimal, error) {
	var cached map[int]decimal.Decimal
	if ok, err := config.GetRedisObject(cacheKeyMonthlySales, &cached); err == nil && ok {
		return cached, nil
	}

	now := time.Now()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0)

	type monthlyRow struct {
		Month       int
		TotalAmount decimal.Decimal
	}

	db := config.GetDB()
	var rows []monthlyRow
	err := db.WithContext(ctx).Model(&Order{}).
		Where("sign_time >= ? AND sign_time < ?", yearStart, yearEnd).
		Where("delivery_status <> ?", DeliveryStatusVoid).
		Select("MONTH(sign_time) AS month, COALESCE(SUM(total_amount), 0) AS total_amount").
		Group("MONTH(sign_time)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sales := make(map[int]decimal.Decimal, 12)
	for month := 1; month <= 12; month++ {
		sales[month] = decimal.Zero
	}
	for _, row := range rows {
		sales[row.Month] = row.TotalAmount
	}

	_ = config.SetRedisObject(cacheKeyMonthlySales, sales, reportCacheTTL)
	return sales, nil
}
