package workflow_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/HarryWebAI/myerp/workflow"
)

// Amending a purchase line moves the on_road difference and appends a
// correction log; writing the same quantity back is rejected without a log.
func TestUpdatePurchaseDetail(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "宜家", "200.00")

	purchase, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "1000.00"),
		Details:   []workflow.PurchaseLineInput{{InventoryId: item.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	full, err := models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	detailId := full.Details[0].ID

	if err := workflow.UpdatePurchaseDetail(ctx, detailId, 3); err != nil {
		t.Fatalf("UpdatePurchaseDetail 5->3: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 3, 0, 0, 0)

	// Cost follows the quantity proportionally.
	full, err = models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase after amend: %v", err)
	}
	if want := "600"; full.TotalCost.String() != want {
		t.Fatalf("total cost after amend = %s, want %s", full.TotalCost, want)
	}
	if len(full.Logs) < 2 {
		t.Fatalf("logs = %d, want creation plus correction", len(full.Logs))
	}

	if err := workflow.UpdatePurchaseDetail(ctx, detailId, 3); !errors.Is(err, models.ErrNoChange) {
		t.Fatalf("same-quantity amend: err = %v, want ErrNoChange", err)
	}

	// Cannot amend below what has already been received.
	if _, err := workflow.CreateReceive(ctx, &workflow.NewReceive{
		BrandId: item.BrandId,
		Details: []workflow.ReceiveLineInput{{InventoryId: item.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("CreateReceive: %v", err)
	}
	// on_road is 1 now; shrinking the order by 2 more would drive it negative.
	if err := workflow.UpdatePurchaseDetail(ctx, detailId, 1); !errors.Is(err, models.ErrInsufficientOnRoad) {
		t.Fatalf("amend below received: err = %v, want ErrInsufficientOnRoad", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 1, 2, 0, 0)
}

// Removing a purchase line reverses its on_road quantity. Once anything for
// the item has been received after the purchase, the line is load-bearing and
// cannot be deleted. Removing the last line removes the whole purchase.
func TestDeletePurchaseDetail(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "源氏", "150.00")
	second := seedItemForBrand(t, ctx, "源氏书桌", item.BrandId, item.CategoryId, "250.00")

	purchase, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "1300.00"),
		Details: []workflow.PurchaseLineInput{
			{InventoryId: item.ID, Quantity: 2},
			{InventoryId: second.ID, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	full, err := models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	var firstLine, secondLine models.PurchaseDetail
	for _, d := range full.Details {
		if d.InventoryId == item.ID {
			firstLine = d
		} else {
			secondLine = d
		}
	}

	if _, err := workflow.CreateReceive(ctx, &workflow.NewReceive{
		BrandId: item.BrandId,
		Details: []workflow.ReceiveLineInput{{InventoryId: item.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("CreateReceive: %v", err)
	}

	if err := workflow.DeletePurchaseDetail(ctx, firstLine.ID); !errors.Is(err, models.ErrDependencyExists) {
		t.Fatalf("delete received-against line: err = %v, want ErrDependencyExists", err)
	}

	if err := workflow.DeletePurchaseDetail(ctx, secondLine.ID); err != nil {
		t.Fatalf("DeletePurchaseDetail: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, second.ID), 0, 0, 0, 0)
	full, err = models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase after delete: %v", err)
	}
	if len(full.Details) != 1 {
		t.Fatalf("details = %d, want 1", len(full.Details))
	}
	// The removed line takes its catalog cost with it: 1300 - 4x250.
	if want := "300"; full.TotalCost.String() != want {
		t.Fatalf("total cost after delete = %s, want %s", full.TotalCost, want)
	}
}

func TestDeleteLastPurchaseLineRemovesPurchase(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "梦百合", "350.00")

	purchase, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "700.00"),
		Details:   []workflow.PurchaseLineInput{{InventoryId: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	full, err := models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}

	if err := workflow.DeletePurchaseDetail(ctx, full.Details[0].ID); err != nil {
		t.Fatalf("DeletePurchaseDetail: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 0, 0, 0, 0)
	if _, err := models.GetPurchase(ctx, purchase.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("purchase should be gone, err = %v", err)
	}
}

func TestUpdatePurchaseCost(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "雅兰", "500.00")

	purchase, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "1000.00"),
		Details:   []workflow.PurchaseLineInput{{InventoryId: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if err := workflow.UpdatePurchaseCost(ctx, purchase.ID, mustDecimal(t, "1000.00")); !errors.Is(err, models.ErrNoChange) {
		t.Fatalf("same-cost update: err = %v, want ErrNoChange", err)
	}
	if err := workflow.UpdatePurchaseCost(ctx, purchase.ID, mustDecimal(t, "950.00")); err != nil {
		t.Fatalf("UpdatePurchaseCost: %v", err)
	}
	full, err := models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	if want := "950"; full.TotalCost.String() != want {
		t.Fatalf("total cost = %s, want %s", full.TotalCost, want)
	}
}

// Amending a receipt keeps in_stock honest and pushes the difference back to
// on_road when it can. The reversal is best effort: when on_road no longer
// covers it the amendment still lands, flagged in the log.
func TestUpdateReceiveDetail(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "红苹果", "450.00")

	if _, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "2250.00"),
		Details:   []workflow.PurchaseLineInput{{InventoryId: item.ID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	receive, err := workflow.CreateReceive(ctx, &workflow.NewReceive{
		BrandId: item.BrandId,
		Details: []workflow.ReceiveLineInput{{InventoryId: item.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("CreateReceive: %v", err)
	}
	full, err := models.GetReceive(ctx, receive.ID)
	if err != nil {
		t.Fatalf("GetReceive: %v", err)
	}
	detailId := full.Details[0].ID

	// 5 -> 3: two units go back on the road.
	if err := workflow.UpdateReceiveDetail(ctx, detailId, 3); err != nil {
		t.Fatalf("UpdateReceiveDetail 5->3: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 2, 3, 0, 0)

	// 3 -> 5 again: the two come off the road.
	if err := workflow.UpdateReceiveDetail(ctx, detailId, 5); err != nil {
		t.Fatalf("UpdateReceiveDetail 3->5: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 0, 5, 0, 0)

	if err := workflow.UpdateReceiveDetail(ctx, detailId, 5); !errors.Is(err, models.ErrNoChange) {
		t.Fatalf("same-quantity amend: err = %v, want ErrNoChange", err)
	}

	full, err = models.GetReceive(ctx, receive.ID)
	if err != nil {
		t.Fatalf("GetReceive after amends: %v", err)
	}
	corrections := 0
	for _, log := range full.Logs {
		if strings.Contains(log.Description, "修正") {
			corrections++
		}
	}
	if corrections != 2 {
		t.Fatalf("correction logs = %d, want 2", corrections)
	}
}

func TestDeleteReceiveDetail(t *testing.T) {
	ctx := setupTestEnv(t)
	item := seedItem(t, ctx, "联邦", "550.00")

	if _, err := workflow.CreatePurchase(ctx, &workflow.NewPurchase{
		BrandId:   item.BrandId,
		TotalCost: mustDecimal(t, "1650.00"),
		Details:   []workflow.PurchaseLineInput{{InventoryId: item.ID, Quantity: 3}},
	}); err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	receive, err := workflow.CreateReceive(ctx, &workflow.NewReceive{
		BrandId: item.BrandId,
		Details: []workflow.ReceiveLineInput{{InventoryId: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateReceive: %v", err)
	}
	full, err := models.GetReceive(ctx, receive.ID)
	if err != nil {
		t.Fatalf("GetReceive: %v", err)
	}

	if err := workflow.DeleteReceiveDetail(ctx, full.Details[0].ID); err != nil {
		t.Fatalf("DeleteReceiveDetail: %v", err)
	}
	// The goods are back on the road, as if never received.
	assertCounters(t, reloadItem(t, ctx, item.ID), 3, 0, 0, 0)

	// Last line removed the whole receipt.
	if _, err := models.GetReceive(ctx, receive.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("receive should be gone, err = %v", err)
	}

	// With the stock sold out from under it, deletion must refuse rather than
	// drive in_stock negative.
	again, err := workflow.CreateReceive(ctx, &workflow.NewReceive{
		BrandId: item.BrandId,
		Details: []workflow.ReceiveLineInput{{InventoryId: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateReceive again: %v", err)
	}
	full, err = models.GetReceive(ctx, again.ID)
	if err != nil {
		t.Fatalf("GetReceive again: %v", err)
	}
	detailId := full.Details[0].ID

	client := seedClient(t, ctx, "陈九", "13912340009")
	staffUid, _ := utils.GetUserUidFromContext(ctx)
	order, err := workflow.CreateOrder(ctx, &workflow.NewOrder{
		BrandId:     item.BrandId,
		OrderNumber: "RC-001",
		ClientUid:   client.Uid,
		StaffUid:    staffUid,
		TotalAmount: mustDecimal(t, "2400.00"),
		DownPayment: mustDecimal(t, "2400.00"),
		Address:     "测试小区7栋",
		Details:     []workflow.OrderLineInput{{InventoryId: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	installer, err := models.CreateInstaller(ctx, &models.NewInstaller{Name: "钱师傅", Telephone: "13712340010"})
	if err != nil {
		t.Fatalf("CreateInstaller: %v", err)
	}
	if _, err := workflow.InstallOrder(ctx, order.ID, &workflow.InstallOrderInput{InstallerId: installer.ID}); err != nil {
		t.Fatalf("InstallOrder: %v", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 0, 0, 0, 3)

	if err := workflow.DeleteReceiveDetail(ctx, detailId); !errors.Is(err, models.ErrInvariantViolation) {
		t.Fatalf("delete sold-out receive line: err = %v, want ErrInvariantViolation", err)
	}
	assertCounters(t, reloadItem(t, ctx, item.ID), 0, 0, 0, 3)
}
