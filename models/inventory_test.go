package models

import "testing"

func TestInventoryDerivedFigures(t *testing.T) {
	cases := []struct {
		name         string
		item         Inventory
		wantCurrent  int
		wantSellable int
		wantValue    string
	}{
		{
			name:         "owned counts road and stock",
			item:         Inventory{Cost: dec("250.00"), OnRoad: 4, InStock: 6, BeenOrder: 3},
			wantCurrent:  10,
			wantSellable: 7,
			wantValue:    "2500",
		},
		{
			name:         "oversold reservation goes negative",
			item:         Inventory{Cost: dec("1999.00"), InStock: 2, BeenOrder: 5},
			wantCurrent:  2,
			wantSellable: -3,
			wantValue:    "3998",
		},
		{
			name:         "empty shelf",
			item:         Inventory{Cost: dec("100.00"), Sold: 9},
			wantCurrent:  0,
			wantSellable: 0,
			wantValue:    "0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.item.AfterFind(nil); err != nil {
				t.Fatalf("AfterFind: %v", err)
			}
			if tc.item.CurrentQty != tc.wantCurrent {
				t.Fatalf("CurrentQty = %d, want %d", tc.item.CurrentQty, tc.wantCurrent)
			}
			if tc.item.Sellable != tc.wantSellable {
				t.Fatalf("Sellable = %d, want %d", tc.item.Sellable, tc.wantSellable)
			}
			if got := tc.item.StockValue.String(); got != tc.wantValue {
				t.Fatalf("StockValue = %s, want %s", got, tc.wantValue)
			}
		})
	}
}
