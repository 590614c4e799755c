package models

import (
	"context"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
)

type Brand struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:10;unique;not null" json:"name" binding:"required"`
	Intro     string    `gorm:"size:100" json:"intro"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"create_time"`
}

type NewBrand struct {
	Name  string `json:"name" binding:"required"`
	Intro string `json:"intro"`
}

func (input *NewBrand) validate(ctx context.Context, id int) error {
	return utils.ValidateUnique[Brand](ctx, "name", input.Name, id)
}

func CreateBrand(ctx context.Context, input *NewBrand) (*Brand, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	brand := Brand{
		Name:  input.Name,
		Intro: input.Intro,
	}
	if err := db.WithContext(ctx).Create(&brand).Error; err != nil {
		return nil, err
	}

	return &brand, nil
}

func UpdateBrand(ctx context.Context, id int, input *NewBrand) (*Brand, error) {
	brand, err := utils.FetchModel[Brand](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&brand).Updates(map[string]interface{}{
		"Name":  input.Name,
		"Intro": input.Intro,
	}).Error; err != nil {
		return nil, err
	}

	return brand, nil
}

func ListBrands(ctx context.Context) ([]*Brand, error) {
	return utils.FetchAllModels[Brand](ctx)
}
