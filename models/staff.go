package models

import (
	"context"
	"errors"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/google/uuid"
)

// DefaultStaffPassword is assigned to newly created accounts; staff are
// expected to change it on first login.
const DefaultStaffPassword = "111111"

type ERPUser struct {
	Uid           string     `gorm:"primary_key;size:36" json:"uid"`
	Account       string     `gorm:"size:30;unique;not null" json:"account"`
	Name          string     `gorm:"size:30;not null" json:"name"`
	Telephone     string     `gorm:"size:20" json:"telephone"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	IsBoss        *bool      `gorm:"not null;default:false" json:"is_boss"`
	IsManager     *bool      `gorm:"not null;default:false" json:"is_manager"`
	IsStorekeeper *bool      `gorm:"not null;default:false" json:"is_storekeeper"`
	IsActive      *bool      `gorm:"not null;default:true" json:"is_active"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ERPUser) TableName() string {
	return "erp_users"
}

type NewStaff struct {
	Account       string `json:"account" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Telephone     string `json:"telephone" binding:"required"`
	IsManager     bool   `json:"is_manager"`
	IsStorekeeper bool   `json:"is_storekeeper"`
}

// Login checks credentials and stamps last_login.
func Login(ctx context.Context, account string, password string) (*ERPUser, string, error) {
	db := config.GetDB()

	var user ERPUser
	if err := db.WithContext(ctx).Where("account = ? AND is_active = ?", account, true).First(&user).Error; err != nil {
		return nil, "", errors.New("account not found")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, "", errors.New("wrong password")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, "", err
	}

	token, err := utils.JwtGenerate(user.Uid, user.Name,
		utils.DereferencePtr(user.IsBoss), utils.DereferencePtr(user.IsManager), utils.DereferencePtr(user.IsStorekeeper))
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

func CreateStaff(ctx context.Context, input *NewStaff) (*ERPUser, error) {
	if err := utils.ValidateUnique[ERPUser](ctx, "account", input.Account, nil); err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(DefaultStaffPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	user := ERPUser{
		Uid:           uuid.NewString(),
		Account:       input.Account,
		Name:          input.Name,
		Telephone:     input.Telephone,
		Password:      string(hashed),
		IsBoss:        utils.NewFalse(),
		IsManager:     &input.IsManager,
		IsStorekeeper: &input.IsStorekeeper,
		IsActive:      utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

type UpdateStaffInput struct {
	Name          string `json:"name" binding:"required"`
	Telephone     string `json:"telephone" binding:"required"`
	IsManager     bool   `json:"is_manager"`
	IsStorekeeper bool   `json:"is_storekeeper"`
	IsActive      bool   `json:"is_active"`
}

func UpdateStaff(ctx context.Context, uid string, input *UpdateStaffInput) (*ERPUser, error) {
	user, err := utils.FetchModelByUid[ERPUser](ctx, uid)
	if err != nil {
		return nil, err
	}
	// The boss account's role flags are immutable.
	if utils.DereferencePtr(user.IsBoss) {
		return nil, errors.New("the boss account cannot be modified")
	}
	if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Telephone":     input.Telephone,
		"IsManager":     input.IsManager,
		"IsStorekeeper": input.IsStorekeeper,
		"IsActive":      input.IsActive,
	}).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func ResetPassword(ctx context.Context, uid string, oldPassword string, newPassword string) error {
	user, err := utils.FetchModelByUid[ERPUser](ctx, uid)
	if err != nil {
		return err
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return errors.New("wrong old password")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(&user).Update("password", string(hashed)).Error
}

func ListStaff(ctx context.Context) ([]*ERPUser, error) {
	db := config.GetDB()
	var users []*ERPUser
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_boss DESC, is_manager DESC, is_storekeeper DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
