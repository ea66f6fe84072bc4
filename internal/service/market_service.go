package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"botfolio/internal/config"
	"botfolio/pkg/market"
	"go.uber.org/zap"
)

const priceCacheTTL = 10 * time.Second

// CoinPrice 币种行情
type CoinPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// MarketService 行情服务，为前端币种选择提供价格展示。
// 行情不可用时不影响交易流程。
type MarketService struct {
	logger  *zap.Logger
	ticker  market.Ticker
	symbols []string

	mu        sync.Mutex
	cached    []CoinPrice
	fetchedAt time.Time
}

// NewMarketService 创建行情服务，ticker 为 nil 时服务降级为空列表
func NewMarketService(conf *config.Config, ticker market.Ticker, logger *zap.Logger) *MarketService {
	return &MarketService{
		logger:  logger,
		ticker:  ticker,
		symbols: conf.Market.Symbols,
	}
}

// GetCoinPrices 获取展示币种的最新价格，带短时缓存
func (s *MarketService) GetCoinPrices(ctx context.Context) ([]CoinPrice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return []CoinPrice{}, nil
	}

	if time.Since(s.fetchedAt) < priceCacheTTL && s.cached != nil {
		return s.cached, nil
	}

	prices, err := s.ticker.GetPrices(ctx)
	if err != nil {
		// 行情拉取失败时回退到上一次缓存
		if s.cached != nil {
			s.logger.Warn("failed to refresh coin prices, serving stale cache", zap.Error(err))
			return s.cached, nil
		}
		return nil, fmt.Errorf("fetch coin prices: %w", err)
	}

	result := make([]CoinPrice, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		if price, ok := prices[symbol]; ok {
			result = append(result, CoinPrice{Symbol: symbol, Price: price})
		}
	}

	s.cached = result
	s.fetchedAt = time.Now()
	return result, nil
}
