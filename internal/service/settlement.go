package service

import (
	"math/rand/v2"

	"botfolio/internal/models"
	"github.com/shopspring/decimal"
)

// 结算金额统一保留8位小数
const settlementScale = 8

// 各盈亏模式下的获胜概率
var winProbability = map[string]float64{
	models.ProfitModeProfit: 0.85,
	models.ProfitModeLose:   0.15,
	models.ProfitModeRandom: 0.50,
}

// Rand 结算使用的随机源，测试中可注入固定种子
type Rand interface {
	Float64() float64
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }

// SystemRand 默认随机源
var SystemRand Rand = systemRand{}

// CoinShare 单个币种的资金分配结果
type CoinShare struct {
	Coin      string          `json:"coin"`
	Invested  decimal.Decimal `json:"invested"`  // 等额分摊的投入
	Profit    decimal.Decimal `json:"profit"`    // 分摊到的盈亏（带符号）
	Collected decimal.Decimal `json:"collected"` // Invested + Profit
}

// SettlementResult 结算计算结果，纯计算不落库
type SettlementResult struct {
	Outcome      string          `json:"outcome"` // profit/lose
	TotalProfit  decimal.Decimal `json:"total_profit"`
	ReturnAmount decimal.Decimal `json:"return_amount"`
	Shares       []CoinShare     `json:"shares"`
}

// DrawOutcome 按盈亏模式抽取本次结算结果。
// 未知模式按 random 处理。
func DrawOutcome(profitMode string, r Rand) string {
	p, ok := winProbability[profitMode]
	if !ok {
		p = winProbability[models.ProfitModeRandom]
	}
	if r.Float64() < p {
		return models.TradeResultProfit
	}
	return models.TradeResultLose
}

// Settle 计算一笔到期交易的结算结果。
// 收益百分比作用于总投入再做分摊，与币种数量无关。
func Settle(trade *models.BotTrade, profitMode string, r Rand) SettlementResult {
	outcome := DrawOutcome(profitMode, r)

	totalProfit := trade.InvestAmount.
		Mul(trade.ProfitPercent).
		Div(decimal.NewFromInt(100)).
		Round(settlementScale)
	if outcome == models.TradeResultLose {
		totalProfit = totalProfit.Neg()
	}

	shares := distribute(trade.Coins, trade.InvestAmount, totalProfit, r)

	return SettlementResult{
		Outcome:      outcome,
		TotalProfit:  totalProfit,
		ReturnAmount: trade.InvestAmount.Add(totalProfit),
		Shares:       shares,
	}
}

// distribute 把投入与盈亏拆分到每个币种。
// 投入等额分摊；盈亏按随机权重分摊。两者都由最后一个币种吸收
// 舍入残差，保证各分量之和与总量精确相等。
func distribute(coins []string, investAmount, totalProfit decimal.Decimal, r Rand) []CoinShare {
	n := len(coins)
	if n == 0 {
		return nil
	}

	count := decimal.NewFromInt(int64(n))
	evenInvested := investAmount.DivRound(count, settlementScale)

	weights := make([]decimal.Decimal, n)
	weightSum := decimal.Zero
	for i := range coins {
		// 权重取 [0.5, 1.5)，避免出现接近0的分摊
		w := decimal.NewFromFloat(0.5 + r.Float64())
		weights[i] = w
		weightSum = weightSum.Add(w)
	}

	shares := make([]CoinShare, n)
	investedSum := decimal.Zero
	profitSum := decimal.Zero
	for i, coin := range coins {
		invested := evenInvested
		profit := totalProfit.Mul(weights[i]).DivRound(weightSum, settlementScale)
		if i == n-1 {
			invested = investAmount.Sub(investedSum)
			profit = totalProfit.Sub(profitSum)
		}
		investedSum = investedSum.Add(invested)
		profitSum = profitSum.Add(profit)

		shares[i] = CoinShare{
			Coin:      coin,
			Invested:  invested,
			Profit:    profit,
			Collected: invested.Add(profit),
		}
	}
	return shares
}
