package models

import (
	"context"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
)

type Installer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:30;not null" json:"name" binding:"required"`
	Telephone string    `gorm:"size:20;not null" json:"telephone" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewInstaller struct {
	Name      string `json:"name" binding:"required"`
	Telephone string `json:"telephone" binding:"required"`
}

func CreateInstaller(ctx context.Context, input *NewInstaller) (*Installer, error) {
	if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
		return nil, err
	}

	db := config.GetDB()
	installer := Installer{
		Name:      input.Name,
		Telephone: input.Telephone,
	}
	if err := db.WithContext(ctx).Create(&installer).Error; err != nil {
		return nil, err
	}
	return &installer, nil
}

func ListInstallers(ctx context.Context) ([]*Installer, error) {
	return utils.FetchAllModels[Installer](ctx)
}
