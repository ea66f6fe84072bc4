package telegram

import (
	"botfolio/internal/models"
	"github.com/spf13/cast"
	"github.com/valyala/fasttemplate"
)

var (
	tradeOpenedTemplate = fasttemplate.New(
		"📈 *新开仓*\n"+
			"用户: `{{user_id}}`\n"+
			"金额: {{invest_amount}}\n"+
			"币种数: {{coin_count}}\n"+
			"周期: {{timer_hours}}h", "{{", "}}")

	tradeSettledTemplate = fasttemplate.New(
		"{{icon}} *交易结算*\n"+
			"用户: `{{user_id}}`\n"+
			"结果: {{outcome}}\n"+
			"盈亏: {{profit}}\n"+
			"返还: {{return_amount}}", "{{", "}}")
)

// NotifyTradeOpened 推送开仓通知，异步发送不阻塞业务
func (r *Telegram) NotifyTradeOpened(trade *models.BotTrade) {
	msg := tradeOpenedTemplate.ExecuteString(map[string]interface{}{
		"user_id":       trade.UserID,
		"invest_amount": trade.InvestAmount.String(),
		"coin_count":    cast.ToString(len(trade.Coins)),
		"timer_hours":   cast.ToString(trade.TimerHours),
	})
	go r.Notify(msg)
}

// NotifyTradeSettled 推送结算通知
func (r *Telegram) NotifyTradeSettled(trade *models.BotTrade) {
	icon := "🟢"
	if trade.ProfitOrLose == models.TradeResultLose {
		icon = "🔴"
	}
	msg := tradeSettledTemplate.ExecuteString(map[string]interface{}{
		"icon":          icon,
		"user_id":       trade.UserID,
		"outcome":       trade.ProfitOrLose,
		"profit":        trade.Profit.String(),
		"return_amount": trade.ReturnAmount.String(),
	})
	go r.Notify(msg)
}
