// inventory-reset runs a destructive stock-take from a counted spreadsheet:
// all ledger history is wiped (log entries survive) and the inventory table
// is rebuilt with the sheet's counts as in_stock-only truth.
//
// Usage:
//
//	go run ./cmd/inventory-reset --sheet counted.xlsx --confirm=RESET
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/HarryWebAI/myerp/workflow"
)

func main() {
	sheetPath := flag.String("sheet", "", "Required: path to the counted .xlsx sheet")
	operator := flag.String("operator", "盘点工具", "Operator name recorded on cutover log entries")
	confirm := flag.String("confirm", "", "Type RESET to proceed")
	flag.Parse()

	if strings.TrimSpace(*sheetPath) == "" {
		fmt.Fprintln(os.Stderr, "--sheet is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*confirm) != "RESET" {
		fmt.Fprintln(os.Stderr, "set --confirm=RESET to proceed (this wipes all ledger history)")
		os.Exit(1)
	}

	file, err := os.Open(*sheetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to open sheet: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	rows, err := workflow.ParseStocktakeSheet(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad sheet: %v\n", err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}

	// Cutover log entries need an operator identity in context.
	ctx := utils.SetUserUidInContext(context.Background(), "00000000-0000-0000-0000-000000000000")
	ctx = utils.SetUserNameInContext(ctx, *operator)

	created, err := workflow.RunStocktake(ctx, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stocktake failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("stocktake complete: %d items created\n", created)
}
