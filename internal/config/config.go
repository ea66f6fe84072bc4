package config

type Config struct {
	Telegram TelegramConf `json:"telegram"`
	Market   MarketConf   `json:"market"`
	Bot      BotConf      `json:"bot"`
	Auth     AuthConf     `json:"auth"`
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type MarketConf struct {
	Enabled  bool     `json:"enabled"`   // 是否启用行情拉取
	ProxyURL string   `json:"proxy_url"` // 代理地址，例如: http://127.0.0.1:7890
	Symbols  []string `json:"symbols"`   // 展示的交易对，如 ["BTCUSDT", "ETHUSDT"]
}

type BotConf struct {
	SweepIntervalSeconds int `json:"sweep_interval_seconds"` // 结算扫描周期（秒），默认5
}

type AuthConf struct {
	JWTSecret string `json:"jwt_secret"` // 为空时随机生成，重启后旧令牌失效
}
