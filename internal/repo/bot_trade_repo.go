package repo

import (
	"context"
	"time"

	"botfolio/internal/models"
	"github.com/go-orz/orz"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func NewBotTradeRepo(db *gorm.DB) *BotTradeRepo {
	return &BotTradeRepo{
		Repository: orz.NewRepository[models.BotTrade, string](db),
	}
}

type BotTradeRepo struct {
	orz.Repository[models.BotTrade, string]
}

// FindByUserId 查询用户的全部交易，按开仓时间倒序
func (r BotTradeRepo) FindByUserId(ctx context.Context, userID string, limit int) ([]models.BotTrade, error) {
	var trades []models.BotTrade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ?", userID).
		Order("open_time DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

// FindRecent 查询全站最近的交易记录
func (r BotTradeRepo) FindRecent(ctx context.Context, limit int) ([]models.BotTrade, error) {
	var trades []models.BotTrade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("open_time DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

// CountOpenedSince 统计用户在指定时间之后开仓的交易数量
func (r BotTradeRepo) CountOpenedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ? AND open_time >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// CountActive 统计未结算的交易数量
func (r BotTradeRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("status = ?", models.TradeStatusActive).
		Count(&count).Error
	return count, err
}

// FindDue 查询已到期、仍未结算的交易
func (r BotTradeRepo) FindDue(ctx context.Context, now time.Time) ([]models.BotTrade, error) {
	var trades []models.BotTrade
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("status = ?", models.TradeStatusActive).
		Find(&trades).Error
	if err != nil {
		return nil, err
	}

	// 到期判断依赖 timer_hours 运算，在内存中完成，避免方言相关的时间SQL
	due := trades[:0]
	for _, t := range trades {
		if t.EligibleAt(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

// MarkCompleted 以 active→completed 的条件更新落盘结算结果。
// 返回实际更新的行数，0 表示交易已被其他调用方结算。
func (r BotTradeRepo) MarkCompleted(ctx context.Context, id string, outcome string, profit, returnAmount decimal.Decimal, closeTime time.Time) (int64, error) {
	db := r.GetDB(ctx)
	result := db.Table(r.GetTableName()).
		Where("id = ? AND status = ?", id, models.TradeStatusActive).
		Updates(map[string]interface{}{
			"status":         models.TradeStatusCompleted,
			"profit_or_lose": outcome,
			"profit":         profit,
			"return_amount":  returnAmount,
			"close_time":     closeTime,
		})
	return result.RowsAffected, result.Error
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	UserID      string          `json:"user_id"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	TradeCount  int64           `json:"trade_count"`
	WinCount    int64           `json:"win_count"`
}

// Leaderboard 按已结算交易的累计盈亏排名
func (r BotTradeRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Select("user_id, SUM(profit) AS total_profit, COUNT(*) AS trade_count, SUM(CASE WHEN profit_or_lose = ? THEN 1 ELSE 0 END) AS win_count", models.TradeResultProfit).
		Where("status = ?", models.TradeStatusCompleted).
		Group("user_id").
		Order("total_profit DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
