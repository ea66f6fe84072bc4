package service

import (
	"context"
	"time"

	"botfolio/internal/models"
	"botfolio/internal/repo"
	"botfolio/internal/xe"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultBotSettings 首次启动时写入的默认配置
var DefaultBotSettings = models.BotSettings{
	ID:              "00000000-0000-0000-0000-000000000000",
	MinTradeAmount:  decimal.NewFromInt(10),
	MaxTradeAmount:  decimal.NewFromInt(10000),
	DailyTradeLimit: 3,
	ProfitMode:      models.ProfitModeRandom,
	CheckinReward:   decimal.NewFromFloat(0.5),
	TimeProfits: []models.TimeProfit{
		{TimeHours: 1, ProfitPercentage: decimal.NewFromInt(10)},
		{TimeHours: 4, ProfitPercentage: decimal.NewFromInt(15)},
		{TimeHours: 8, ProfitPercentage: decimal.NewFromInt(25)},
		{TimeHours: 24, ProfitPercentage: decimal.NewFromInt(45)},
	},
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// BotSettingsService 机器人配置服务
type BotSettingsService struct {
	logger          *zap.Logger
	botSettingsRepo *repo.BotSettingsRepo
}

// NewBotSettingsService 创建机器人配置服务
func NewBotSettingsService(logger *zap.Logger, db *gorm.DB) *BotSettingsService {
	return &BotSettingsService{
		logger:          logger,
		botSettingsRepo: repo.NewBotSettingsRepo(db),
	}
}

// Initialize 确保存在默认配置
func (s *BotSettingsService) Initialize(ctx context.Context) {
	count, err := s.botSettingsRepo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count bot settings", zap.Error(err))
		return
	}

	if count == 0 {
		settings := DefaultBotSettings
		if err := s.botSettingsRepo.Create(ctx, &settings); err != nil {
			s.logger.Error("failed to create default bot settings", zap.Error(err))
			return
		}
		s.logger.Info("default bot settings initialized")
	}
}

// Get 获取当前配置，数据库为空时落盘并返回默认配置
func (s *BotSettingsService) Get(ctx context.Context) (*models.BotSettings, error) {
	all, err := s.botSettingsRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		settings := DefaultBotSettings
		if err := s.botSettingsRepo.Create(ctx, &settings); err != nil {
			return nil, err
		}
		return &settings, nil
	}
	return &all[0], nil
}

// Set 更新配置
func (s *BotSettingsService) Set(ctx context.Context, updated models.BotSettings) error {
	switch updated.ProfitMode {
	case models.ProfitModeProfit, models.ProfitModeLose, models.ProfitModeRandom:
	default:
		return xe.ErrInvalidProfitMode
	}
	if updated.MinTradeAmount.GreaterThan(updated.MaxTradeAmount) {
		return xe.ErrInvalidParams
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}

	settings.MinTradeAmount = updated.MinTradeAmount
	settings.MaxTradeAmount = updated.MaxTradeAmount
	settings.DailyTradeLimit = updated.DailyTradeLimit
	settings.ProfitMode = updated.ProfitMode
	settings.CheckinReward = updated.CheckinReward
	settings.TimeProfits = updated.TimeProfits
	settings.UpdatedAt = time.Now()

	if err := s.botSettingsRepo.UpdateById(ctx, settings); err != nil {
		return err
	}

	s.logger.Info("bot settings updated",
		zap.String("profit_mode", settings.ProfitMode),
		zap.Int("daily_trade_limit", settings.DailyTradeLimit))
	return nil
}
