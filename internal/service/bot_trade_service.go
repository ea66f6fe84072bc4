package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"botfolio/internal/models"
	"botfolio/internal/repo"
	"botfolio/internal/telegram"
	"botfolio/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinCoinSelection 开仓最少选择的币种数量
const MinCoinSelection = 8

// BotTradeService 机器人交易服务：开仓与结算
type BotTradeService struct {
	logger *zap.Logger

	*orz.Service
	*repo.BotTradeRepo

	accountService  *AccountService
	settingsService *BotSettingsService
	notifier        *telegram.Telegram

	rand Rand
	now  func() time.Time

	sweeper interface{ EnsureRunning() }
}

// NewBotTradeService 创建机器人交易服务
func NewBotTradeService(
	db *gorm.DB,
	accountService *AccountService,
	settingsService *BotSettingsService,
	notifier *telegram.Telegram,
	logger *zap.Logger,
) *BotTradeService {
	return &BotTradeService{
		logger:          logger,
		Service:         orz.NewService(db),
		BotTradeRepo:    repo.NewBotTradeRepo(db),
		accountService:  accountService,
		settingsService: settingsService,
		notifier:        notifier,
		rand:            SystemRand,
		now:             time.Now,
	}
}

// SetSweeper 注入结算调度器（开仓后唤醒）
func (s *BotTradeService) SetSweeper(sweeper interface{ EnsureRunning() }) {
	s.sweeper = sweeper
}

// OpenTradeRequest 开仓请求
type OpenTradeRequest struct {
	InvestAmount decimal.Decimal `json:"invest_amount" validate:"required"`
	Coins        []string        `json:"coins" validate:"required"`
	TimerHours   int             `json:"timer_hours" validate:"required,min=1"`
}

// OpenTrade 开仓。按顺序校验：余额、每日次数、币种数量、金额范围，
// 首个失败即返回；交易创建与资金划转在同一事务内完成。
func (s *BotTradeService) OpenTrade(ctx context.Context, userID string, req OpenTradeRequest) (*models.BotTrade, error) {
	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bot settings: %w", err)
	}

	account, err := s.accountService.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user account: %w", err)
	}

	now := s.now().UTC()

	if account.MainBalance.LessThan(req.InvestAmount) {
		return nil, xe.ErrInsufficientFunds
	}

	midnight := now.Truncate(24 * time.Hour)
	opened, err := s.BotTradeRepo.CountOpenedSince(ctx, userID, midnight)
	if err != nil {
		return nil, fmt.Errorf("count daily trades: %w", err)
	}
	if opened >= int64(settings.DailyTradeLimit) {
		return nil, xe.ErrDailyLimitReached
	}

	if len(distinctCoins(req.Coins)) < MinCoinSelection {
		return nil, xe.ErrInsufficientCoinSelection
	}

	if req.InvestAmount.LessThan(settings.MinTradeAmount) ||
		req.InvestAmount.GreaterThan(settings.MaxTradeAmount) {
		return nil, xe.ErrAmountOutOfRange
	}

	trade := &models.BotTrade{
		ID:            ulid.Make().String(),
		UserID:        userID,
		InvestAmount:  req.InvestAmount,
		Coins:         distinctCoins(req.Coins),
		TimerHours:    req.TimerHours,
		ProfitPercent: settings.ProfitPercentFor(req.TimerHours),
		Status:        models.TradeStatusActive,
		ProfitOrLose:  models.TradeResultPending,
		Profit:        decimal.Zero,
		ReturnAmount:  req.InvestAmount,
		OpenTime:      now,
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.BotTradeRepo.Create(ctx, trade); err != nil {
			return fmt.Errorf("create trade: %w", err)
		}

		rows, err := s.accountService.MoveToBot(ctx, userID, req.InvestAmount)
		if err != nil {
			return fmt.Errorf("move funds to bot balance: %w", err)
		}
		// 带余额条件的更新没有命中，说明余额在校验后被并发消耗
		if rows == 0 {
			return xe.ErrInsufficientFunds
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bot trade opened",
		zap.String("trade_id", trade.ID),
		zap.String("user_id", userID),
		zap.String("invest_amount", trade.InvestAmount.String()),
		zap.Int("coins", len(trade.Coins)),
		zap.Int("timer_hours", trade.TimerHours))

	if s.sweeper != nil {
		s.sweeper.EnsureRunning()
	}
	if s.notifier != nil {
		s.notifier.NotifyTradeOpened(trade)
	}

	return trade, nil
}

// Settle 结算一笔交易。已结算的交易返回当前状态且不做任何变更；
// 未到期返回 ErrTradeNotEligible。落盘与回款在同一事务内，
// 并通过 active→completed 条件更新保证并发下至多结算一次。
func (s *BotTradeService) Settle(ctx context.Context, tradeID string) (*models.BotTrade, error) {
	trade, err := s.BotTradeRepo.FindById(ctx, tradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrTradeNotFound
		}
		return nil, fmt.Errorf("find trade: %w", err)
	}

	// 幂等：重复结算等同成功
	if trade.Status == models.TradeStatusCompleted {
		return &trade, nil
	}

	now := s.now().UTC()
	if !trade.EligibleAt(now) {
		return nil, xe.ErrTradeNotEligible
	}

	settings, err := s.settingsService.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bot settings: %w", err)
	}

	result := Settle(&trade, settings.ProfitMode, s.rand)

	var settledHere bool
	err = s.Transaction(ctx, func(ctx context.Context) error {
		rows, err := s.BotTradeRepo.MarkCompleted(ctx, trade.ID,
			result.Outcome, result.TotalProfit, result.ReturnAmount, now)
		if err != nil {
			return fmt.Errorf("persist settlement: %w", err)
		}
		// 其他调用方抢先完成了结算，放弃本次计算结果
		if rows == 0 {
			return nil
		}
		settledHere = true

		if err := s.accountService.SettleBack(ctx, trade.UserID, result.ReturnAmount, trade.InvestAmount); err != nil {
			return fmt.Errorf("settle back balances: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	settled, err := s.BotTradeRepo.FindById(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("reload trade: %w", err)
	}

	if settledHere {
		s.logger.Info("bot trade settled",
			zap.String("trade_id", settled.ID),
			zap.String("user_id", settled.UserID),
			zap.String("outcome", settled.ProfitOrLose),
			zap.String("profit", settled.Profit.String()),
			zap.String("return_amount", settled.ReturnAmount.String()))

		if s.notifier != nil {
			s.notifier.NotifyTradeSettled(&settled)
		}
	}

	return &settled, nil
}

// TradeView 交易详情，附带剩余时间与每币种分摊
type TradeView struct {
	models.BotTrade
	RemainingSeconds int64       `json:"remaining_seconds"`
	Shares           []CoinShare `json:"shares,omitempty"`
}

// GetTrade 查询单笔交易，校验归属
func (s *BotTradeService) GetTrade(ctx context.Context, userID, tradeID string) (*TradeView, error) {
	trade, err := s.BotTradeRepo.FindById(ctx, tradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xe.ErrTradeNotFound
		}
		return nil, err
	}
	if trade.UserID != userID {
		return nil, xe.ErrPermissionDenied
	}
	return s.view(&trade), nil
}

// ListTrades 查询用户的交易列表
func (s *BotTradeService) ListTrades(ctx context.Context, userID string, limit int) ([]TradeView, error) {
	trades, err := s.BotTradeRepo.FindByUserId(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]TradeView, 0, len(trades))
	for i := range trades {
		views = append(views, *s.view(&trades[i]))
	}
	return views, nil
}

func (s *BotTradeService) view(trade *models.BotTrade) *TradeView {
	return &TradeView{
		BotTrade:         *trade,
		RemainingSeconds: int64(trade.RemainingAt(s.now()).Seconds()),
	}
}

// distinctCoins 去重并保持原有顺序
func distinctCoins(coins []string) []string {
	seen := make(map[string]struct{}, len(coins))
	out := make([]string, 0, len(coins))
	for _, coin := range coins {
		if coin == "" {
			continue
		}
		if _, ok := seen[coin]; ok {
			continue
		}
		seen[coin] = struct{}{}
		out = append(out, coin)
	}
	return out
}
