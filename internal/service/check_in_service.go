package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"botfolio/internal/models"
	"botfolio/internal/repo"
	"botfolio/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const checkInDayLayout = "2006-01-02"

// CheckInService 每日签到服务
type CheckInService struct {
	logger *zap.Logger

	*orz.Service
	*repo.CheckInRepo

	accountService  *AccountService
	settingsService *BotSettingsService

	now func() time.Time
}

// NewCheckInService 创建签到服务
func NewCheckInService(
	db *gorm.DB,
	accountService *AccountService,
	settingsService *BotSettingsService,
	logger *zap.Logger,
) *CheckInService {
	return &CheckInService{
		logger:          logger,
		Service:         orz.NewService(db),
		CheckInRepo:     repo.NewCheckInRepo(db),
		accountService:  accountService,
		settingsService: settingsService,
		now:             time.Now,
	}
}

// CheckIn 签到并发放奖励，每个UTC自然日一次
func (s *CheckInService) CheckIn(ctx context.Context, userID string) (*models.CheckIn, error) {
	day := s.now().UTC().Format(checkInDayLayout)

	_, err := s.CheckInRepo.FindByUserAndDay(ctx, userID, day)
	if err == nil {
		return nil, xe.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bot settings: %w", err)
	}

	if _, err := s.accountService.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	record := &models.CheckIn{
		ID:     ulid.Make().String(),
		UserID: userID,
		Day:    day,
		Reward: settings.CheckinReward,
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.CheckInRepo.Create(ctx, record); err != nil {
			return fmt.Errorf("create check-in: %w", err)
		}
		if err := s.accountService.CreditMain(ctx, userID, record.Reward); err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user checked in",
		zap.String("user_id", userID),
		zap.String("day", day),
		zap.String("reward", record.Reward.String()))
	return record, nil
}

// CheckedInToday 今日是否已签到
func (s *CheckInService) CheckedInToday(ctx context.Context, userID string) (bool, error) {
	day := s.now().UTC().Format(checkInDayLayout)
	_, err := s.CheckInRepo.FindByUserAndDay(ctx, userID, day)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
