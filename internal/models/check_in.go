package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckIn 每日签到记录，每个用户每个UTC自然日一条
type CheckIn struct {
	ID        string          `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID    string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_checkin_user_day" json:"user_id"`
	Day       string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_checkin_user_day" json:"day"` // 格式 2006-01-02
	Reward    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"reward"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (CheckIn) TableName() string {
	return "check_ins"
}
