package models

import (
	"context"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	Uid            string      `gorm:"primary_key;size:36" json:"uid"`
	Name           string      `gorm:"size:30;not null" json:"name" binding:"required"`
	Telephone      string      `gorm:"size:20;unique" json:"telephone"`
	Address        string      `gorm:"size:200" json:"address"`
	Remark         string      `gorm:"type:text" json:"remark"`
	Level          ClientLevel `gorm:"not null;default:1" json:"level"`
	LastFollowTime time.Time   `gorm:"not null" json:"last_follow_time"`
	StaffUid       string      `gorm:"index;size:36;not null" json:"staff_uid"`
	Staff          *ERPUser    `gorm:"foreignKey:StaffUid" json:"staff,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type FollowUpRecord struct {
	Uid       string    `gorm:"primary_key;size:36" json:"uid"`
	ClientUid string    `gorm:"index;size:36;not null" json:"client_uid"`
	StaffUid  string    `gorm:"index;size:36;not null" json:"staff_uid"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LatestFollowTime is the deadline for the next follow-up, derived from the
// client's level. Closed deals, fourth-level and lost clients have none.
func (c *Client) LatestFollowTime() *time.Time {
	var d time.Duration
	switch c.Level {
	case ClientLevelFirst:
		d = 24 * time.Hour
	case ClientLevelSecond:
		d = 7 * 24 * time.Hour
	case ClientLevelThird:
		d = 30 * 24 * time.Hour
	default:
		return nil
	}
	t := c.LastFollowTime.Add(d)
	return &t
}

// IsOverdue reports whether the client needs a follow-up now, counting
// clients whose deadline falls within the next day. A client already
// followed up today is never overdue. Comparison is by calendar date.
func (c *Client) IsOverdue(now time.Time) bool {
	latest := c.LatestFollowTime()
	if latest == nil {
		return false
	}

	today := now.Truncate(24 * time.Hour)
	if c.LastFollowTime.Truncate(24 * time.Hour).Equal(today) {
		return false
	}

	latestDate := latest.Truncate(24 * time.Hour)
	oneDayLater := today.Add(24 * time.Hour)
	return today.After(latestDate) || !latestDate.After(oneDayLater)
}

type NewClient struct {
	Name      string      `json:"name" binding:"required"`
	Telephone string      `json:"telephone" binding:"required"`
	Address   string      `json:"address"`
	Remark    string      `json:"remark"`
	Level     ClientLevel `json:"level"`
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	staffUid, ok := utils.GetUserUidFromContext(ctx)
	if !ok || staffUid == "" {
		return nil, utils.ErrorRecordNotFound
	}
	if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Client](ctx, "telephone", input.Telephone, nil); err != nil {
		return nil, err
	}
	level := input.Level
	if !level.Valid() {
		level = ClientLevelFirst
	}

	db := config.GetDB()
	client := Client{
		Uid:            uuid.NewString(),
		Name:           input.Name,
		Telephone:      input.Telephone,
		Address:        input.Address,
		Remark:         input.Remark,
		Level:          level,
		LastFollowTime: time.Now(),
		StaffUid:       staffUid,
	}
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

func GetClient(ctx context.Context, uid string) (*Client, error) {
	return utils.FetchModelByUid[Client](ctx, uid, "Staff")
}

func UpdateClient(ctx context.Context, uid string, input *NewClient) (*Client, error) {
	client, err := utils.FetchModelByUid[Client](ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePhoneNumber(input.Telephone, utils.CountryCode); err != nil {
		return nil, err
	}
	if !input.Level.Valid() {
		return nil, utils.ErrorRecordNotFound
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&client).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Telephone": input.Telephone,
		"Address":   input.Address,
		"Remark":    input.Remark,
		"Level":     input.Level,
	}).Error; err != nil {
		return nil, err
	}

	return client, nil
}

type ClientFilter struct {
	Level    *ClientLevel
	StaffUid string
	Name     string
	Page     int
	PageSize int
}

func ListClients(ctx context.Context, filter ClientFilter) ([]*Client, int64, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Client{})

	if filter.Level != nil {
		query = query.Where("level = ?", *filter.Level)
	}
	if filter.StaffUid != "" {
		query = query.Where("staff_uid = ?", filter.StaffUid)
	}
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	var clients []*Client
	err := query.Preload("Staff").
		Order("level ASC, last_follow_time ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

type NewFollowUpRecord struct {
	ClientUid string `json:"client_uid" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// CreateFollowUpRecord stores the record and bumps the client's
// last_follow_time in the same transaction.
func CreateFollowUpRecord(ctx context.Context, input *NewFollowUpRecord) (*FollowUpRecord, error) {
	staffUid, ok := utils.GetUserUidFromContext(ctx)
	if !ok || staffUid == "" {
		return nil, utils.ErrorRecordNotFound
	}

	record := FollowUpRecord{
		Uid:       uuid.NewString(),
		ClientUid: input.ClientUid,
		StaffUid:  staffUid,
		Content:   input.Content,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client Client
		if err := tx.First(&client, "uid = ?", input.ClientUid).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Model(&client).Update("last_follow_time", record.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func ListFollowUpRecords(ctx context.Context, clientUid string) ([]*FollowUpRecord, error) {
	db := config.GetDB()
	var records []*FollowUpRecord
	err := db.WithContext(ctx).
		Where("client_uid = ?", clientUid).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
