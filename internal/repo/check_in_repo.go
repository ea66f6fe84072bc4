package repo

import (
	"context"

	"botfolio/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewCheckInRepo(db *gorm.DB) *CheckInRepo {
	return &CheckInRepo{
		Repository: orz.NewRepository[models.CheckIn, string](db),
	}
}

type CheckInRepo struct {
	orz.Repository[models.CheckIn, string]
}

// FindByUserAndDay 查询用户某日的签到记录
func (r CheckInRepo) FindByUserAndDay(ctx context.Context, userID, day string) (m models.CheckIn, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("user_id = ? AND day = ?", userID, day).
		First(&m).Error
	return m, err
}

// CountByUser 统计用户累计签到次数
func (r CheckInRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
