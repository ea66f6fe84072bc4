package market

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/adshao/go-binance/v2"
)

// Ticker 现货行情来源
type Ticker interface {
	GetPrices(ctx context.Context) (map[string]string, error)
}

// BinanceTicker 基于币安公开行情接口的实现，无需API密钥
type BinanceTicker struct {
	client *binance.Client
}

func NewBinanceTicker(proxyURL string) (*BinanceTicker, error) {
	client := binance.NewClient("", "")

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		client.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyURL(u),
			},
		}
	}

	return &BinanceTicker{client: client}, nil
}

// GetPrices 拉取全部交易对的最新成交价
func (t *BinanceTicker) GetPrices(ctx context.Context) (map[string]string, error) {
	prices, err := t.client.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(prices))
	for _, p := range prices {
		result[p.Symbol] = p.Price
	}
	return result, nil
}
