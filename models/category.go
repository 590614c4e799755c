package models

import (
	"context"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
)

type Category struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:10;unique;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"create_time"`
}

type NewCategory struct {
	Name string `json:"name" binding:"required"`
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	category := Category{Name: input.Name}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}

	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {
	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&category).Updates(map[string]interface{}{
		"Name": input.Name,
	}).Error; err != nil {
		return nil, err
	}

	return category, nil
}

func ListCategories(ctx context.Context) ([]*Category, error) {
	return utils.FetchAllModels[Category](ctx)
}
