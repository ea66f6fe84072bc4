package service

import (
	"context"
	"errors"
	"fmt"

	"botfolio/internal/models"
	"botfolio/internal/repo"
	"github.com/go-orz/orz"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountService 用户资金账户服务
type AccountService struct {
	logger *zap.Logger

	*orz.Service
	*repo.UserAccountRepo
}

// NewAccountService 创建资金账户服务
func NewAccountService(db *gorm.DB, logger *zap.Logger) *AccountService {
	return &AccountService{
		logger:          logger,
		Service:         orz.NewService(db),
		UserAccountRepo: repo.NewUserAccountRepo(db),
	}
}

// GetOrCreate 查询账户，不存在时创建零余额账户。
// 用户身份由上游认证网关保证，这里只负责资金记录。
func (s *AccountService) GetOrCreate(ctx context.Context, userID string) (*models.UserAccount, error) {
	account, err := s.UserAccountRepo.FindById(ctx, userID)
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	account = models.UserAccount{
		ID:          userID,
		MainBalance: decimal.Zero,
		BotBalance:  decimal.Zero,
	}
	if err := s.UserAccountRepo.Create(ctx, &account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("user account created", zap.String("user_id", userID))
	return &account, nil
}
