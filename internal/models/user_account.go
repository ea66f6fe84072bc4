package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserAccount 用户资金账户，用户身份由上游认证网关管理
type UserAccount struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MainBalance decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"main_balance"` // 主账户余额
	BotBalance  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"bot_balance"`  // 托管中的交易资金
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (UserAccount) TableName() string {
	return "user_accounts"
}
