package models

import (
	"log"

	"github.com/HarryWebAI/myerp/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Brand{}, &Category{},
		&ERPUser{}, &Installer{},
		&Client{}, &FollowUpRecord{},
		&Inventory{},
		&Purchase{}, &PurchaseDetail{}, &PurchaseLog{},
		&Receive{}, &ReceiveDetail{}, &ReceiveLog{},
		&Order{}, &OrderDetail{}, &OperationLog{}, &BalancePayment{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
