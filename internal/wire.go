//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"time"

	"botfolio/internal/config"
	"botfolio/internal/handler"
	"botfolio/internal/service"
	"botfolio/internal/telegram"
	"botfolio/pkg/market"
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const telegramHTTPTimeout = 10 * time.Second

var (
	handlerSet = wire.NewSet(
		handler.NewBotTradeHandler,
		handler.NewAdminHandler,
		handler.NewAuthHandler,
		handler.NewSetupHandler,
	)

	serviceSet = wire.NewSet(
		provideTicker,
		provideAuthService,
		service.NewAccountService,
		service.NewBotSettingsService,
		service.NewCheckInService,
		service.NewMarketService,
		service.NewBotTradeService,
		service.NewSettlementSweeper,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideAuthService provides auth service with the configured JWT secret
func provideAuthService(logger *zap.Logger, db *gorm.DB, conf *config.Config) *service.AuthService {
	return service.NewAuthService(logger, db, conf.Auth.JWTSecret)
}

// provideTelegram provides telegram instance
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		ChatID: conf.Telegram.ChatID,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

// provideTicker provides the market price source
func provideTicker(conf *config.Config, logger *zap.Logger) market.Ticker {
	if !conf.Market.Enabled {
		return nil
	}

	ticker, err := market.NewBinanceTicker(conf.Market.ProxyURL)
	if err != nil {
		logger.Error("failed to init binance ticker", zap.Error(err))
		return nil
	}

	logger.Info("binance ticker initialized",
		zap.Int("symbols", len(conf.Market.Symbols)))
	return ticker
}
