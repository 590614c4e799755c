// seed-admin creates or updates the boss account and seeds the initial
// brand and category rows.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/models"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	bossAccount  = "boss"
	bossPassword = "111111"
	bossName     = "老板"
)

var seedBrands = []string{"双虎", "全友"}

var seedCategories = []string{"沙发", "床", "餐桌", "衣柜", "床垫"}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	hashed, err := utils.HashPassword(bossPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.ERPUser
	err = db.WithContext(ctx).Where("account = ?", bossAccount).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup boss account: %v\n", err)
			os.Exit(1)
		}
		boss := models.ERPUser{
			Uid:           uuid.NewString(),
			Account:       bossAccount,
			Password:      string(hashed),
			Name:          bossName,
			Telephone:     "13000000000",
			IsBoss:        utils.NewTrue(),
			IsManager:     utils.NewTrue(),
			IsStorekeeper: utils.NewTrue(),
			IsActive:      utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&boss).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create boss account: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("boss account created")
	} else {
		if err := db.WithContext(ctx).Model(&existing).Update("password", string(hashed)).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset boss password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("boss account exists; password reset")
	}

	for _, name := range seedBrands {
		var brand models.Brand
		err := db.WithContext(ctx).Where("name = ?", name).First(&brand).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.WithContext(ctx).Create(&models.Brand{Name: name}).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to seed brand %s: %v\n", name, err)
				os.Exit(1)
			}
		}
	}
	for _, name := range seedCategories {
		var category models.Category
		err := db.WithContext(ctx).Where("name = ?", name).First(&category).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.WithContext(ctx).Create(&models.Category{Name: name}).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to seed category %s: %v\n", name, err)
				os.Exit(1)
			}
		}
	}

	fmt.Println("seed complete")
}
