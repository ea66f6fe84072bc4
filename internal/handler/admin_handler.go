package handler

import (
	"net/http"

	"botfolio/internal/models"
	"botfolio/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// AdminHandler 后台管理处理器
type AdminHandler struct {
	logger          *zap.Logger
	settingsService *service.BotSettingsService
	tradeService    *service.BotTradeService
	sweeper         *service.SettlementSweeper
}

// NewAdminHandler 创建后台管理处理器
func NewAdminHandler(
	logger *zap.Logger,
	settingsService *service.BotSettingsService,
	tradeService *service.BotTradeService,
	sweeper *service.SettlementSweeper,
) *AdminHandler {
	return &AdminHandler{
		logger:          logger,
		settingsService: settingsService,
		tradeService:    tradeService,
		sweeper:         sweeper,
	}
}

// GetBotSettings 获取机器人配置
// GET /api/admin/bot-settings
func (h *AdminHandler) GetBotSettings(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		h.logger.Error("failed to get bot settings", zap.Error(err))
		return err
	}

	return c.JSON(http.StatusOK, settings)
}

// SetBotSettings 更新机器人配置
// PUT /api/admin/bot-settings
func (h *AdminHandler) SetBotSettings(c echo.Context) error {
	ctx := c.Request().Context()

	var settings models.BotSettings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	if err := h.settingsService.Set(ctx, settings); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "update success",
	})
}

// GetRecentTrades 全站最近交易
// GET /api/admin/trades?limit=50
func (h *AdminHandler) GetRecentTrades(c echo.Context) error {
	ctx := c.Request().Context()

	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	trades, err := h.tradeService.FindRecent(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

// GetSweeperStatus 结算调度器状态
// GET /api/admin/sweeper/status
func (h *AdminHandler) GetSweeperStatus(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, h.sweeper.Status(ctx))
}

// StartSweeper 启动结算调度器
// POST /api/admin/sweeper/start
func (h *AdminHandler) StartSweeper(c echo.Context) error {
	h.sweeper.EnsureRunning()
	h.logger.Info("settlement sweeper started via API")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "sweeper started",
	})
}

// StopSweeper 停止结算调度器
// POST /api/admin/sweeper/stop
func (h *AdminHandler) StopSweeper(c echo.Context) error {
	h.sweeper.Stop()
	h.logger.Info("settlement sweeper stopped via API")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "sweeper stopped",
	})
}

// RegisterRoutesWithGroup 注册路由到指定的组（支持中间件）
func (h *AdminHandler) RegisterRoutesWithGroup(admin *echo.Group) {
	admin.GET("/bot-settings", h.GetBotSettings)
	admin.PUT("/bot-settings", h.SetBotSettings)

	admin.GET("/trades", h.GetRecentTrades)

	admin.GET("/sweeper/status", h.GetSweeperStatus)
	admin.POST("/sweeper/start", h.StartSweeper)
	admin.POST("/sweeper/stop", h.StopSweeper)
}
