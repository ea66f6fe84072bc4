package service

import (
	"context"
	"testing"
	"time"

	"botfolio/internal/config"
	"botfolio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSweeper(tradeService *BotTradeService) *SettlementSweeper {
	conf := &config.Config{}
	conf.Bot.SweepIntervalSeconds = 1
	return NewSettlementSweeper(conf, tradeService, zap.NewNop())
}

func TestSweeper_SettlesDueTrades(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tradeService.now = func() time.Time { return base }

	trade, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	sweeper := newTestSweeper(tradeService)

	// 到期前扫描不应结算
	sweeper.Sweep(ctx)
	reloaded, err := tradeService.BotTradeRepo.FindById(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeStatusActive, reloaded.Status)

	// 到期后的扫描会结算；失败或占用时由下一轮扫描重试
	tradeService.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Eventually(t, func() bool {
		sweeper.Sweep(ctx)
		reloaded, err := tradeService.BotTradeRepo.FindById(ctx, trade.ID)
		return err == nil && reloaded.Status == models.TradeStatusCompleted
	}, 3*time.Second, 50*time.Millisecond)
}

func TestSweeper_StopsWhenNoActiveTrades(t *testing.T) {
	_, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()

	sweeper := newTestSweeper(tradeService)
	sweeper.EnsureRunning()
	require.True(t, sweeper.IsRunning())

	// 重复启动为空操作
	sweeper.EnsureRunning()
	require.True(t, sweeper.IsRunning())

	// 没有未结算交易时，扫描后调度器自行停止
	sweeper.Sweep(ctx)
	assert.Eventually(t, func() bool {
		return !sweeper.IsRunning()
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSweeper_OpenDuringStopWindowKeepsRunning(t *testing.T) {
	db, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()
	fundAccount(t, db, "user-1", 1000)

	sweeper := newTestSweeper(tradeService)
	tradeService.SetSweeper(sweeper)
	sweeper.EnsureRunning()
	require.True(t, sweeper.IsRunning())

	// 模拟扫描判定空闲时的快照
	wakes := sweeper.currentWakes()

	// 停止落地之前有新的开仓进来
	_, err := tradeService.OpenTrade(ctx, "user-1", validOpenRequest())
	require.NoError(t, err)

	// 带旧快照的自动停止必须放弃，否则新交易等不到下一轮扫描
	sweeper.stopIfIdle(wakes)
	assert.True(t, sweeper.IsRunning())

	// 没有新的唤醒时自动停止正常生效
	wakes = sweeper.currentWakes()
	sweeper.stopIfIdle(wakes)
	assert.False(t, sweeper.IsRunning())
}

func TestSweeper_Status(t *testing.T) {
	_, tradeService, _ := setupTradeTest(t)
	ctx := context.Background()

	sweeper := newTestSweeper(tradeService)
	status := sweeper.Status(ctx)
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, 1, status["interval_seconds"])
	assert.Equal(t, int64(0), status["active_trades"])
}
