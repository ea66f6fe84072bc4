package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 交易状态
const (
	TradeStatusActive    = "active"
	TradeStatusCompleted = "completed"
)

// 交易结果
const (
	TradeResultPending = "pending"
	TradeResultProfit  = "profit"
	TradeResultLose    = "lose"
)

// BotTrade 机器人交易记录
type BotTrade struct {
	ID            string                       `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID        string                       `gorm:"type:varchar(36);not null;index" json:"user_id"`          // 所属用户
	InvestAmount  decimal.Decimal              `gorm:"type:decimal(20,8);not null" json:"invest_amount"`        // 投入金额
	Coins         datatypes.JSONSlice[string]  `gorm:"not null" json:"coins"`                                   // 选择的币种
	TimerHours    int                          `gorm:"not null" json:"timer_hours"`                             // 周期（小时）
	ProfitPercent decimal.Decimal              `gorm:"type:decimal(10,4);not null" json:"profit_percent"`       // 开仓时的收益百分比快照
	Status        string                       `gorm:"type:varchar(10);not null;index" json:"status"`           // active/completed
	ProfitOrLose  string                       `gorm:"type:varchar(10);not null" json:"profit_or_lose"`         // pending/profit/lose
	Profit        decimal.Decimal              `gorm:"type:decimal(20,8);not null" json:"profit"`               // 结算盈亏（带符号）
	ReturnAmount  decimal.Decimal              `gorm:"type:decimal(20,8);not null" json:"return_amount"`        // 到期返还金额
	OpenTime      time.Time                    `gorm:"not null;index" json:"open_time"`                         // 开仓时间
	CloseTime     *time.Time                   `json:"close_time"`                                              // 结算时间
	CreatedAt     time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt               `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (BotTrade) TableName() string {
	return "bot_trades"
}

// SettleAt 到期可结算时间，统一使用UTC计算
func (t *BotTrade) SettleAt() time.Time {
	return t.OpenTime.UTC().Add(time.Duration(t.TimerHours) * time.Hour)
}

// EligibleAt 在给定时刻是否已到期可结算
func (t *BotTrade) EligibleAt(now time.Time) bool {
	return !now.UTC().Before(t.SettleAt())
}

// RemainingAt 距离到期的剩余时长，到期后为0
func (t *BotTrade) RemainingAt(now time.Time) time.Duration {
	remaining := t.SettleAt().Sub(now.UTC())
	if remaining < 0 {
		return 0
	}
	return remaining
}
