package handler

import (
	"net/http"

	"botfolio/internal/middleware"
	"botfolio/internal/service"
	"botfolio/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// BotTradeHandler 机器人交易HTTP处理器
type BotTradeHandler struct {
	logger         *zap.Logger
	tradeService   *service.BotTradeService
	accountService *service.AccountService
	checkInService *service.CheckInService
	marketService  *service.MarketService
}

// NewBotTradeHandler 创建交易处理器
func NewBotTradeHandler(
	tradeService *service.BotTradeService,
	accountService *service.AccountService,
	checkInService *service.CheckInService,
	marketService *service.MarketService,
	logger *zap.Logger,
) *BotTradeHandler {
	return &BotTradeHandler{
		logger:         logger,
		tradeService:   tradeService,
		accountService: accountService,
		checkInService: checkInService,
		marketService:  marketService,
	}
}

// OpenTrade 开仓
// POST /api/bot/trades
func (h *BotTradeHandler) OpenTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	var req service.OpenTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !req.InvestAmount.IsPositive() {
		return xe.ErrInvalidParams
	}

	trade, err := h.tradeService.OpenTrade(ctx, userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trade)
}

// ListTrades 查询当前用户的交易列表
// GET /api/bot/trades?limit=20
func (h *BotTradeHandler) ListTrades(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	trades, err := h.tradeService.ListTrades(ctx, userID, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

// GetTrade 查询单笔交易
// GET /api/bot/trades/:id
func (h *BotTradeHandler) GetTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	trade, err := h.tradeService.GetTrade(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trade)
}

// CloseTrade 手动结算一笔到期交易
// POST /api/bot/trades/:id/close
func (h *BotTradeHandler) CloseTrade(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	// 先校验归属再结算
	if _, err := h.tradeService.GetTrade(ctx, userID, c.Param("id")); err != nil {
		return err
	}

	trade, err := h.tradeService.Settle(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trade)
}

// GetAccount 查询资金账户
// GET /api/bot/account
func (h *BotTradeHandler) GetAccount(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	account, err := h.accountService.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// CheckIn 每日签到
// POST /api/bot/checkin
func (h *BotTradeHandler) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	record, err := h.checkInService.CheckIn(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// CheckInStatus 今日签到状态
// GET /api/bot/checkin/today
func (h *BotTradeHandler) CheckInStatus(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.BotUserID(c)

	checked, err := h.checkInService.CheckedInToday(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"checked_in": checked,
	})
}

// Leaderboard 盈利排行榜
// GET /api/bot/leaderboard?limit=10
func (h *BotTradeHandler) Leaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := h.tradeService.Leaderboard(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// GetCoins 展示币种的实时价格
// GET /api/bot/coins
func (h *BotTradeHandler) GetCoins(c echo.Context) error {
	ctx := c.Request().Context()

	prices, err := h.marketService.GetCoinPrices(ctx)
	if err != nil {
		h.logger.Error("failed to get coin prices", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": "行情暂时不可用",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(prices),
		"coins": prices,
	})
}

// RegisterRoutes 注册用户侧路由
func (h *BotTradeHandler) RegisterRoutes(g *echo.Group) {
	bot := g.Group("/bot", middleware.UserContext())

	bot.POST("/trades", h.OpenTrade)
	bot.GET("/trades", h.ListTrades)
	bot.GET("/trades/:id", h.GetTrade)
	bot.POST("/trades/:id/close", h.CloseTrade)

	bot.GET("/account", h.GetAccount)
	bot.POST("/checkin", h.CheckIn)
	bot.GET("/checkin/today", h.CheckInStatus)
	bot.GET("/leaderboard", h.Leaderboard)
	bot.GET("/coins", h.GetCoins)
}
