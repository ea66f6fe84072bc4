package service

import (
	"context"
	"testing"
	"time"

	"botfolio/internal/models"
	"botfolio/internal/xe"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupTradeTest 为每个测试创建独立的内存数据库和服务
func setupTradeTest(t *testing.T) (*gorm.DB, *BotTradeService, *AccountService) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserAccount{}, &models.BotSettings{},
		&models.BotTrade{}, &models.CheckIn{},
	)
	require.NoError(t, err)

	logger := zap.NewNop()
	accountService := NewAccountService(db, logger)
	settingsService := NewBotSettingsService(logger, db)
	settingsService.Initialize(context.Background())

	tradeService := NewBotTradeService(db, accountService, settingsService, nil, logger)
	return db, tradeService, accountService
}

func fundAccount(t *testing.T, db *gorm.DB, userID string, main int64) {
	err := db.Create(&models.UserAccount{
		ID:          userID,
		MainBalance: decimal.NewFromInt(main),
		BotBalance:  decimal.Zero,
	}).Error
	require.NoError(t, err)
}

// stubRand 返回固定值，把抽取结果钉死在某一分支上
type stubRand struct{ v float64 }

func (r stubRand) Float64() float64 { return r.v }

func validOpenRequest() OpenTradeRequest {
	return OpenTradeRequest{
		InvestAmount: decimal.NewFromInt(100),
		Coins:        testCoins(10),
		TimerHours:   1,
	}
}

func TestOpenTrade_MovesFundsFromMainToBot(t *testing.T) {
	db, tradeService, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	assert.Equal(t, models.TradeStatusActive, trade.Status)
	assert.Equal(t, models.TradeResultPending, trade.ProfitOrLose)
	assert.True(t, trade.Profit.IsZero())
	assert.True(t, trade.ReturnAmount.Equal(trade.InvestAmount))

	account, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromInt(900)),
		"main balance %s", account.MainBalance)
	assert.True(t, account.BotBalance.Equal(decimal.NewFromInt(100)),
		"bot balance %s", account.BotBalance)
}

func TestOpenTrade_InsufficientFunds(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 50)

	req := validOpenRequest()
	// 余额校验排在最前，其他参数即使非法也应先报余额不足
	req.Coins = testCoins(5)

	_, err := tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrInsufficientFunds)
}

func TestOpenTrade_DailyLimit(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 10000)

	// 默认每日上限3单
	for i := 0; i < 3; i++ {
		_, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
		require.NoError(t, err)
	}

	// 第4单应被拒绝，且每日次数校验先于币种数量校验
	req := validOpenRequest()
	req.Coins = testCoins(7)
	_, err := tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrDailyLimitReached)
}

func TestOpenTrade_CoinSelectionBoundary(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	// 7个币种不足
	req := validOpenRequest()
	req.Coins = testCoins(7)
	_, err := tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrInsufficientCoinSelection)

	// 重复币种去重后计数
	req.Coins = append(testCoins(7), "COIN00")
	_, err = tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrInsufficientCoinSelection)

	// 恰好8个币种可以开仓
	req.Coins = testCoins(8)
	trade, err := tradeService.OpenTrade(ctx, "user-1", req)
	require.NoError(t, err)
	assert.Len(t, []string(trade.Coins), 8)
}

func TestOpenTrade_AmountOutOfRange(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 100000)

	req := validOpenRequest()
	req.InvestAmount = decimal.NewFromInt(5) // 低于最小金额10
	_, err := tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrAmountOutOfRange)

	req.InvestAmount = decimal.NewFromInt(50000) // 高于最大金额10000
	_, err = tradeService.OpenTrade(ctx, "user-1", req)
	assert.ErrorIs(t, err, xe.ErrAmountOutOfRange)
}

func TestOpenTrade_SnapshotsProfitPercent(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	req := validOpenRequest()
	req.TimerHours = 24
	trade, err := tradeService.OpenTrade(ctx, "user-1", req)
	require.NoError(t, err)
	assert.True(t, trade.ProfitPercent.Equal(decimal.NewFromInt(45)))

	// 周期表中没有的周期使用默认百分比
	req.TimerHours = 6
	trade, err = tradeService.OpenTrade(ctx, "user-1", req)
	require.NoError(t, err)
	assert.True(t, trade.ProfitPercent.Equal(models.DefaultProfitPercent))
}

func TestSettle_NotEligibleBeforeTimer(t *testing.T) {
	db, tradeService, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	// 到期前30分钟尝试结算
	tradeService.now = func() time.Time { return base.Add(30 * time.Minute) }
	_, err = tradeService.Settle(ctx, trade.ID)
	assert.ErrorIs(t, err, xe.ErrTradeNotEligible)

	// 状态和余额不应有任何变化
	reloaded, err := tradeService.BotTradeRepo.FindById(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusActive, reloaded.Status)
	assert.Nil(t, reloaded.CloseTime)

	account, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromInt(900)))
	assert.True(t, account.BotBalance.Equal(decimal.NewFromInt(100)))
}

func TestSettle_ReturnsFundsToMainBalance(t *testing.T) {
	db, tradeService, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }
	tradeService.rand = stubRand{0.0} // 任何模式下都判盈

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(61 * time.Minute) }
	settled, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TradeStatusCompleted, settled.Status)
	require.NotNil(t, settled.CloseTime)
	assert.Equal(t, models.TradeResultProfit, settled.ProfitOrLose)

	// 1小时周期按默认配置为10%，盈利10，返还110
	assert.True(t, settled.Profit.Equal(decimal.NewFromInt(10)),
		"profit %s", settled.Profit)
	assert.True(t, settled.ReturnAmount.Equal(decimal.NewFromInt(110)))

	// 盈亏只作用于主账户，托管账户扣回原始投入
	account, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromInt(1010)),
		"main balance %s", account.MainBalance)
	assert.True(t, account.BotBalance.IsZero(),
		"bot balance %s", account.BotBalance)
}

func TestSettle_ReturnsFundsOnLoss(t *testing.T) {
	db, tradeService, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }
	tradeService.rand = stubRand{0.99} // 任何模式下都判亏

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(61 * time.Minute) }
	settled, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)

	assert.Equal(t, models.TradeStatusCompleted, settled.Status)
	assert.Equal(t, models.TradeResultLose, settled.ProfitOrLose)

	// 亏损为带符号金额，返还 = 投入 + 盈亏
	assert.True(t, settled.Profit.Equal(decimal.NewFromInt(-10)),
		"profit %s", settled.Profit)
	assert.True(t, settled.ReturnAmount.Equal(decimal.NewFromInt(90)))

	// 回款路径与盈利时完全一致，只是金额更小
	account, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, account.MainBalance.Equal(decimal.NewFromInt(990)),
		"main balance %s", account.MainBalance)
	assert.True(t, account.BotBalance.IsZero(),
		"bot balance %s", account.BotBalance)
}

func TestSettle_IsIdempotent(t *testing.T) {
	db, tradeService, accountService := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(2 * time.Hour) }
	first, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)

	accountAfterFirst, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)

	// 第二次结算等同成功，但不再有任何资金变动
	second, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, second.Profit.Equal(first.Profit))
	assert.True(t, second.ReturnAmount.Equal(first.ReturnAmount))
	assert.Equal(t, first.ProfitOrLose, second.ProfitOrLose)

	accountAfterSecond, err := accountService.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, accountAfterSecond.MainBalance.Equal(accountAfterFirst.MainBalance))
	assert.True(t, accountAfterSecond.BotBalance.Equal(accountAfterFirst.BotBalance))
}

func TestMarkCompleted_AtMostOnce(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	profit := decimal.NewFromInt(10)
	returnAmount := decimal.NewFromInt(110)
	now := time.Now().UTC()

	rows, err := tradeService.BotTradeRepo.MarkCompleted(ctx, trade.ID,
		models.TradeResultProfit, profit, returnAmount, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// 条件更新保证并发下第二个调用方不会命中
	rows, err = tradeService.BotTradeRepo.MarkCompleted(ctx, trade.ID,
		models.TradeResultLose, profit.Neg(), decimal.NewFromInt(90), now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	reloaded, err := tradeService.BotTradeRepo.FindById(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeResultProfit, reloaded.ProfitOrLose)
}

func TestSettle_ExampleScenario(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }
	tradeService.rand = newTestRand(11)

	// invest=100，10个币种，1小时周期，收益10%
	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(time.Hour) }
	settled, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)

	assert.True(t, settled.Profit.Abs().Equal(decimal.NewFromInt(10)))
	assert.True(t, settled.ReturnAmount.Equal(decimal.NewFromInt(100).Add(settled.Profit)))
}

func TestListTrades_ComputesRemainingTime(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }

	_, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(15 * time.Minute) }
	views, err := tradeService.ListTrades(ctx, "user-1", 20)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(45*60), views[0].RemainingSeconds)

	// 到期后剩余时间归零
	tradeService.now = func() time.Time { return base.Add(3 * time.Hour) }
	views, err = tradeService.ListTrades(ctx, "user-1", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), views[0].RemainingSeconds)
}

func TestLeaderboard_AggregatesSettledTrades(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	tradeService.now = func() time.Time { return base.Add(2 * time.Hour) }
	settled, err := tradeService.Settle(ctx, trade.ID)
	require.NoError(t, err)

	entries, err := tradeService.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1", entries[0].UserID)
	assert.True(t, entries[0].TotalProfit.Equal(settled.Profit))
	assert.Equal(t, int64(1), entries[0].TradeCount)
}
