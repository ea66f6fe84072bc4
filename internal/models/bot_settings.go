package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 盈亏模式
const (
	ProfitModeProfit = "profit" // 85%概率盈利
	ProfitModeLose   = "lose"   // 15%概率盈利
	ProfitModeRandom = "random" // 50%概率盈利
)

// TimeProfit 周期-收益配置项
type TimeProfit struct {
	TimeHours        int             `json:"time_hours"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
}

// BotSettings 机器人交易全局配置（单行）
type BotSettings struct {
	ID              string                          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	MinTradeAmount  decimal.Decimal                 `gorm:"type:decimal(20,8);not null" json:"min_trade_amount"` // 单笔最小金额
	MaxTradeAmount  decimal.Decimal                 `gorm:"type:decimal(20,8);not null" json:"max_trade_amount"` // 单笔最大金额
	DailyTradeLimit int                             `gorm:"not null" json:"daily_trade_limit"`                   // 每日开仓上限
	ProfitMode      string                          `gorm:"type:varchar(10);not null" json:"profit_mode"`        // profit/lose/random
	CheckinReward   decimal.Decimal                 `gorm:"type:decimal(20,8);not null" json:"checkin_reward"`   // 每日签到奖励
	TimeProfits     datatypes.JSONSlice[TimeProfit] `json:"time_profits"`                                        // 周期-收益表
	CreatedAt       time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (BotSettings) TableName() string {
	return "bot_settings"
}

// DefaultProfitPercent 周期表无匹配项时的兜底收益百分比
var DefaultProfitPercent = decimal.NewFromInt(10)

// ProfitPercentFor 查询指定周期的收益百分比，无匹配时返回默认值
func (s *BotSettings) ProfitPercentFor(timerHours int) decimal.Decimal {
	for _, tp := range s.TimeProfits {
		if tp.TimeHours == timerHours {
			return tp.ProfitPercentage
		}
	}
	return DefaultProfitPercent
}
