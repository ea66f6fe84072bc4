package repo

import (
	"context"

	"botfolio/internal/models"
	"github.com/go-orz/orz"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func NewUserAccountRepo(db *gorm.DB) *UserAccountRepo {
	return &UserAccountRepo{
		Repository: orz.NewRepository[models.UserAccount, string](db),
	}
}

type UserAccountRepo struct {
	orz.Repository[models.UserAccount, string]
}

// MoveToBot 从主账户划转资金到交易账户。
// 更新条件带余额校验，返回0行表示余额不足。
func (r UserAccountRepo) MoveToBot(ctx context.Context, userID string, amount decimal.Decimal) (int64, error) {
	db := r.GetDB(ctx)
	result := db.Table(r.GetTableName()).
		Where("id = ? AND main_balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"main_balance": gorm.Expr("main_balance - ?", amount),
			"bot_balance":  gorm.Expr("bot_balance + ?", amount),
		})
	return result.RowsAffected, result.Error
}

// SettleBack 结算回款：主账户加上返还金额，交易账户扣除原始投入
func (r UserAccountRepo) SettleBack(ctx context.Context, userID string, returnAmount, investAmount decimal.Decimal) error {
	db := r.GetDB(ctx)
	return db.Table(r.GetTableName()).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"main_balance": gorm.Expr("main_balance + ?", returnAmount),
			"bot_balance":  gorm.Expr("bot_balance - ?", investAmount),
		}).Error
}

// CreditMain 主账户入账（签到奖励等）
func (r UserAccountRepo) CreditMain(ctx context.Context, userID string, amount decimal.Decimal) error {
	db := r.GetDB(ctx)
	return db.Table(r.GetTableName()).
		Where("id = ?", userID).
		Update("main_balance", gorm.Expr("main_balance + ?", amount)).Error
}
