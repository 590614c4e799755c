package workflow

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const inventorySheetName = "Sheet1"

var inventorySheetHeader = []string{"编号", "名称", "品牌", "分类", "尺寸", "颜色", "成本", "在途", "在库", "已订", "已售"}

// ExportInventoryXLSX writes the full inventory table as a spreadsheet. The
// same column layout (minus the counter columns) is what RunStocktake accepts
// back.
func ExportInventoryXLSX(ctx context.Context, w io.Writer) error {
	logger := config.GetLogger()

	inventories, err := utils.FetchAllModels[models.Inventory](ctx, "Brand", "Category")
	if err != nil {
		config.LogError(logger, "stocktakeWorkflow.go", "ExportInventoryXLSX", "FetchAllModels", nil, err)
		return err
	}

	f := excelize.NewFile()
	for i, title := range inventorySheetHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(inventorySheetName, cell, title)
	}

	for i, item := range inventories {
		row := i + 2
		brandName := ""
		if item.Brand != nil {
			brandName = item.Brand.Name
		}
		categoryName := ""
		if item.Category != nil {
			categoryName = item.Category.Name
		}
		values := []interface{}{
			item.ID, item.Name, brandName, categoryName, item.Size, item.Color,
			item.Cost.StringFixed(2), item.OnRoad, item.InStock, item.BeenOrder, item.Sold,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(inventorySheetName, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		config.LogError(logger, "stocktakeWorkflow.go", "ExportInventoryXLSX", "Write", nil, err)
		return err
	}
	return nil
}

// StocktakeRow is one counted line from the uploaded sheet: descriptive
// fields plus the physically counted quantity, which becomes the item's
// in_stock-only truth.
type StocktakeRow struct {
	Name     string
	Brand    string
	Category string
	Size     string
	Color    string
	Cost     string
	Counted  int
}

// ParseStocktakeSheet reads the uploaded spreadsheet into rows, skipping the
// header. Column order follows the export layout: 名称 品牌 分类 尺寸 颜色 成本 在库.
// The 编号 column is ignored when present, and the counted column is located by
// its 在库 header so a full export (which also carries 在途 已订 已售) round trips.
func ParseStocktakeSheet(r io.Reader) ([]StocktakeRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open spreadsheet: %v", err)
	}
	defer f.Close()

	rawRows, err := f.GetRows(inventorySheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %v", err)
	}
	if len(rawRows) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}

	// An exported sheet starts with the 编号 column; a hand-built one may not.
	offset := 0
	if len(rawRows[0]) > 0 && strings.TrimSpace(rawRows[0][0]) == inventorySheetHeader[0] {
		offset = 1
	}

	// A full export carries 在途 before 在库, so the counted column is found by
	// header name rather than by position.
	countedIdx := offset + 6
	for i, title := range rawRows[0] {
		if strings.TrimSpace(title) == "在库" {
			countedIdx = i
		}
	}

	at := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	cell := func(row []string, idx int) string {
		return at(row, idx+offset)
	}

	var rows []StocktakeRow
	for idx, raw := range rawRows[1:] {
		name := cell(raw, 0)
		if name == "" {
			continue
		}
		counted, err := strconv.Atoi(at(raw, countedIdx))
		if err != nil || counted < 0 {
			return nil, fmt.Errorf("row %d: bad counted quantity %q", idx+2, at(raw, countedIdx))
		}
		if _, err := utils.ParseDecimal(cell(raw, 5)); err != nil {
			return nil, fmt.Errorf("row %d: bad cost %q", idx+2, cell(raw, 5))
		}
		rows = append(rows, StocktakeRow{
			Name:     name,
			Brand:    cell(raw, 1),
			Category: cell(raw, 2),
			Size:     cell(raw, 3),
			Color:    cell(raw, 4),
			Cost:     cell(raw, 5),
			Counted:  counted,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet has no data rows")
	}
	return rows, nil
}

// RunStocktake replaces the inventory table with the counted sheet. One wide
// transaction under the advisory lock:
//  1. every open order and every purchase/receive gets a cutover log entry,
//  2. ledger parent and detail history is wiped (log rows stay behind),
//  3. items are recreated from the sheet with in_stock as the only non-zero
//     counter.
//
// Everything the engine learned about on_road/been_order/sold is gone after
// this; the sheet is the new ground truth.
func RunStocktake(ctx context.Context, rows []StocktakeRow) (int, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	var span trace.Span
	ctx, span = otel.Tracer("myerp/workflow").Start(ctx, "RunStocktake")
	defer span.End()

	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireStocktakeLock(tx); err != nil {
			return err
		}
		defer ReleaseStocktakeLock(tx)

		cutover := "盘点重置: 本条目之前的库存流水已作废, 以盘点表为准"

		var orders []models.Order
		if err := tx.Where("delivery_status = ?", models.DeliveryStatusNew).Find(&orders).Error; err != nil {
			return err
		}
		for _, order := range orders {
			if err := models.CreateOperationLog(tx, order.ID, cutover); err != nil {
				return err
			}
		}

		var purchaseIds []int
		if err := tx.Model(&models.Purchase{}).Pluck("id", &purchaseIds).Error; err != nil {
			return err
		}
		for _, id := range purchaseIds {
			if err := models.CreatePurchaseLog(tx, id, cutover); err != nil {
				return err
			}
		}

		var receiveIds []int
		if err := tx.Model(&models.Receive{}).Pluck("id", &receiveIds).Error; err != nil {
			return err
		}
		for _, id := range receiveIds {
			if err := models.CreateReceiveLog(tx, id, cutover); err != nil {
				return err
			}
		}

		for _, model := range []interface{}{
			&models.PurchaseDetail{}, &models.ReceiveDetail{}, &models.OrderDetail{},
			&models.Purchase{}, &models.Receive{}, &models.Inventory{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		for _, row := range rows {
			brand, err := findOrCreateBrand(tx, row.Brand)
			if err != nil {
				return err
			}
			category, err := findOrCreateCategory(tx, row.Category)
			if err != nil {
				return err
			}
			cost, err := utils.ParseDecimal(row.Cost)
			if err != nil {
				return err
			}

			item := models.Inventory{
				Name:       row.Name,
				BrandId:    brand.ID,
				CategoryId: category.ID,
				Size:       row.Size,
				Color:      row.Color,
				Cost:       cost,
				InStock:    row.Counted,
			}
			if item.Size == "" {
				item.Size = "原版"
			}
			if item.Color == "" {
				item.Color = "原色"
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "stocktakeWorkflow.go", "RunStocktake", "Transaction", len(rows), err)
		return 0, err
	}

	// The cached analytics describe a world that no longer exists.
	models.InvalidateReportCache()

	return created, nil
}

func findOrCreateBrand(tx *gorm.DB, name string) (*models.Brand, error) {
	if name == "" {
		return nil, fmt.Errorf("brand name is required")
	}
	var brand models.Brand
	err := tx.Where("name = ?", name).First(&brand).Error
	if err == gorm.ErrRecordNotFound {
		brand = models.Brand{Name: name}
		err = tx.Create(&brand).Error
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func findOrCreateCategory(tx *gorm.DB, name string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	var category models.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		category = models.Category{Name: name}
		err = tx.Create(&category).Error
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
