package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecalculateDerived(t *testing.T) {
	cases := []struct {
		name        string
		order       Order
		wantPending string
		wantProfit  string
		wantPayment PaymentStatus
	}{
		{
			name: "open balance stays unpaid",
			order: Order{
				TotalAmount:       dec("10000.00"),
				DownPayment:       dec("3000.00"),
				ReceivedBalance:   dec("2000.00"),
				TotalCost:         dec("6000.00"),
				InstallationFee:   dec("200.00"),
				TransportationFee: dec("300.00"),
				DeliveryStatus:    DeliveryStatusNew,
			},
			wantPending: "5000",
			wantProfit:  "3500",
			wantPayment: PaymentStatusUnpaid,
		},
		{
			name: "zero pending settles",
			order: Order{
				TotalAmount:    dec("8000.00"),
				DownPayment:    dec("8000.00"),
				TotalCost:      dec("5000.00"),
				DeliveryStatus: DeliveryStatusShipped,
			},
			wantPending: "0",
			wantProfit:  "3000",
			wantPayment: PaymentStatusSettled,
		},
		{
			name: "overpayment still settles",
			order: Order{
				TotalAmount:     dec("5000.00"),
				DownPayment:     dec("2000.00"),
				ReceivedBalance: dec("3500.00"),
				TotalCost:       dec("4000.00"),
				DeliveryStatus:  DeliveryStatusShipped,
			},
			wantPending: "-500",
			wantProfit:  "1000",
			wantPayment: PaymentStatusSettled,
		},
		{
			name: "void delivery forces void payment even when balance is open",
			order: Order{
				TotalAmount:    dec("5000.00"),
				DownPayment:    dec("1000.00"),
				TotalCost:      dec("4000.00"),
				DeliveryStatus: DeliveryStatusVoid,
			},
			wantPending: "4000",
			wantProfit:  "1000",
			wantPayment: PaymentStatusVoid,
		},
		{
			name: "fees eat into profit",
			order: Order{
				TotalAmount:       dec("6000.00"),
				DownPayment:       dec("6000.00"),
				TotalCost:         dec("5500.00"),
				InstallationFee:   dec("400.00"),
				TransportationFee: dec("300.00"),
				DeliveryStatus:    DeliveryStatusNew,
			},
			wantPending: "0",
			wantProfit:  "-200",
			wantPayment: PaymentStatusSettled,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.order.RecalculateDerived()
			if got := tc.order.PendingBalance.String(); got != tc.wantPending {
				t.Errorf("pending balance = %s, want %s", got, tc.wantPending)
			}
			if got := tc.order.GrossProfit.String(); got != tc.wantProfit {
				t.Errorf("gross profit = %s, want %s", got, tc.wantProfit)
			}
			if tc.order.PaymentStatus != tc.wantPayment {
				t.Errorf("payment status = %s, want %s", tc.order.PaymentStatus, tc.wantPayment)
			}
		})
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{Shortages: []StockShortage{
		{InventoryId: 1, Name: "沙发(原版,原色)", Required: 5, Available: 2},
		{InventoryId: 2, Name: "床(1.8m,白色)", Required: 1, Available: 0},
	}}

	msg := err.Error()
	for _, want := range []string{"沙发(原版,原色)", "need 5", "in stock 2", "床(1.8m,白色)", "need 1", "in stock 0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestParseStatusEnums(t *testing.T) {
	if _, err := ParseDeliveryStatus("Shipped"); err != nil {
		t.Errorf("Shipped should parse: %v", err)
	}
	if _, err := ParseDeliveryStatus("shipped"); err == nil {
		t.Error("status parsing is case sensitive, lowercase should fail")
	}
	if _, err := ParsePaymentStatus("Settled"); err != nil {
		t.Errorf("Settled should parse: %v", err)
	}
	if _, err := ParsePaymentStatus("Paid"); err == nil {
		t.Error("unknown payment status should fail")
	}
}
