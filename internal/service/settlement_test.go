package service

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"botfolio/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func testCoins(n int) []string {
	coins := make([]string, n)
	for i := range coins {
		coins[i] = fmt.Sprintf("COIN%02d", i)
	}
	return coins
}

func newTestTrade(invest string, coinCount int, percent string) *models.BotTrade {
	return &models.BotTrade{
		ID:            "trade-1",
		UserID:        "user-1",
		InvestAmount:  decimal.RequireFromString(invest),
		Coins:         testCoins(coinCount),
		TimerHours:    1,
		ProfitPercent: decimal.RequireFromString(percent),
		Status:        models.TradeStatusActive,
		ProfitOrLose:  models.TradeResultPending,
		OpenTime:      time.Now().UTC().Add(-2 * time.Hour),
	}
}

func TestSettle_Conservation(t *testing.T) {
	trade := newTestTrade("100", 10, "10")

	result := Settle(trade, models.ProfitModeProfit, newTestRand(1))

	// returnAmount == investAmount + profit，精确相等
	assert.True(t, result.ReturnAmount.Equal(trade.InvestAmount.Add(result.TotalProfit)),
		"return=%s invest=%s profit=%s", result.ReturnAmount, trade.InvestAmount, result.TotalProfit)

	// 盈亏金额为投入的10%
	assert.True(t, result.TotalProfit.Abs().Equal(decimal.RequireFromString("10")))
}

func TestSettle_PerCoinSharesSumExactly(t *testing.T) {
	for _, coinCount := range []int{8, 9, 10, 13, 21, 64} {
		t.Run(fmt.Sprintf("coins_%d", coinCount), func(t *testing.T) {
			trade := newTestTrade("137.77", coinCount, "12.5")

			result := Settle(trade, models.ProfitModeRandom, newTestRand(uint64(coinCount)))
			require.Len(t, result.Shares, coinCount)

			investedSum := decimal.Zero
			profitSum := decimal.Zero
			for _, share := range result.Shares {
				assert.True(t, share.Collected.Equal(share.Invested.Add(share.Profit)))
				investedSum = investedSum.Add(share.Invested)
				profitSum = profitSum.Add(share.Profit)
			}

			assert.True(t, investedSum.Equal(trade.InvestAmount),
				"invested sum %s != invest amount %s", investedSum, trade.InvestAmount)
			assert.True(t, profitSum.Equal(result.TotalProfit),
				"profit sum %s != total profit %s", profitSum, result.TotalProfit)
		})
	}
}

func TestSettle_TotalIndependentOfCoinCount(t *testing.T) {
	// 同样的投入和百分比，币种数量不影响总盈亏的绝对值
	expected := decimal.RequireFromString("25")
	for _, coinCount := range []int{8, 16, 40} {
		trade := newTestTrade("250", coinCount, "10")
		result := Settle(trade, models.ProfitModeProfit, newTestRand(42))
		assert.True(t, result.TotalProfit.Abs().Equal(expected),
			"coins=%d profit=%s", coinCount, result.TotalProfit)
	}
}

func TestSettle_ProfitSignMatchesOutcome(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		trade := newTestTrade("100", 8, "10")
		result := Settle(trade, models.ProfitModeRandom, newTestRand(seed))

		switch result.Outcome {
		case models.TradeResultProfit:
			assert.True(t, result.TotalProfit.IsPositive())
		case models.TradeResultLose:
			assert.True(t, result.TotalProfit.IsNegative())
		default:
			t.Fatalf("unexpected outcome %q", result.Outcome)
		}
	}
}

func TestDrawOutcome_Probabilities(t *testing.T) {
	const draws = 100000

	tests := []struct {
		mode     string
		expected float64
	}{
		{models.ProfitModeProfit, 0.85},
		{models.ProfitModeLose, 0.15},
		{models.ProfitModeRandom, 0.50},
		{"unknown", 0.50}, // 未知模式按random处理
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r := newTestRand(7)
			wins := 0
			for i := 0; i < draws; i++ {
				if DrawOutcome(tt.mode, r) == models.TradeResultProfit {
					wins++
				}
			}
			ratio := float64(wins) / draws
			assert.InDelta(t, tt.expected, ratio, 0.01,
				"mode=%s win ratio=%f", tt.mode, ratio)
		})
	}
}

func TestDistribute_ResidualGoesToLastCoin(t *testing.T) {
	// 1/3 无法整除，残差由最后一个币种吸收
	trade := newTestTrade("100", 9, "33.3333")
	result := Settle(trade, models.ProfitModeProfit, newTestRand(3))

	profitSum := decimal.Zero
	for _, share := range result.Shares {
		assert.True(t, share.Profit.Exponent() >= -8,
			"share %s has more than 8 decimal places", share.Profit)
		profitSum = profitSum.Add(share.Profit)
	}
	assert.True(t, profitSum.Equal(result.TotalProfit))
}

func TestBotSettings_ProfitPercentFor(t *testing.T) {
	settings := models.BotSettings{
		TimeProfits: []models.TimeProfit{
			{TimeHours: 1, ProfitPercentage: decimal.NewFromInt(10)},
			{TimeHours: 24, ProfitPercentage: decimal.NewFromInt(45)},
		},
	}

	assert.True(t, settings.ProfitPercentFor(1).Equal(decimal.NewFromInt(10)))
	assert.True(t, settings.ProfitPercentFor(24).Equal(decimal.NewFromInt(45)))
	// 无匹配周期时回退到默认百分比
	assert.True(t, settings.ProfitPercentFor(6).Equal(models.DefaultProfitPercent))
}
