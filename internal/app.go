package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"botfolio/internal/config"
	"botfolio/internal/handler"
	"botfolio/internal/middleware"
	"botfolio/internal/models"
	"botfolio/internal/service"
	"botfolio/internal/telegram"
	"botfolio/pkg/nostd"
	"botfolio/web"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewBotfolioApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewBotfolioApp() orz.Application {
	return &BotfolioApp{}
}

var _ orz.Application = (*BotfolioApp)(nil)

type AppComponents struct {
	BotTradeHandler *handler.BotTradeHandler
	AdminHandler    *handler.AdminHandler
	AuthHandler     *handler.AuthHandler
	SetupHandler    *handler.SetupHandler

	TradeService    *service.BotTradeService
	SettingsService *service.BotSettingsService
	AuthService     *service.AuthService
	Sweeper         *service.SettlementSweeper

	Telegram *telegram.Telegram
}

type BotfolioApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *BotfolioApp) GetComponents() *AppComponents {
	return r.components
}

func (r *BotfolioApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.AdminUser{}, models.UserAccount{}, models.BotSettings{},
		models.BotTrade{}, models.CheckIn{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(echomiddleware.Gzip())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		Skipper:      echomiddleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().RequestURI
			if strings.HasPrefix(path, "/api") {
				return true
			}
			return false
		},
		Root:       "",
		Index:      "index.html",
		HTML5:      true,
		Browse:     false,
		IgnoreBase: false,
		Filesystem: http.FS(web.Assets()),
	}))

	api := e.Group("/api")
	{
		r.components.SetupHandler.RegisterRoutes(api)
		r.components.AuthHandler.RegisterRoutes(api)
		r.components.BotTradeHandler.RegisterRoutes(api)

		jwtAuth := middleware.JWTAuth(middleware.JWTAuthConfig{
			AuthService: r.components.AuthService,
			Logger:      logger,
		})

		authProtected := api.Group("/auth", jwtAuth)
		r.components.AuthHandler.RegisterProtectedRoutes(authProtected)

		admin := api.Group("/admin", jwtAuth)
		r.components.AdminHandler.RegisterRoutesWithGroup(admin)
	}

	return nil
}

func (r *BotfolioApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Botfolio Trading Platform Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	ctx := context.Background()

	// 初始化默认机器人配置
	components.SettingsService.Initialize(ctx)

	// 开仓后需要唤醒调度器
	components.TradeService.SetSweeper(components.Sweeper)

	// 启动结算调度，回收停机期间到期的交易
	components.Sweeper.EnsureRunning()

	if components.Telegram != nil {
		components.Telegram.Start()
	}

	return nil
}
