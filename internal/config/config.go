// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	RuneAPIURL       string  `mapstructure:"rune_api_url"`
	ArchAPIURL       string  `mapstructure:"arch_api_url"`
	BTCPriceURL      string  `mapstructure:"btc_price_url"`
	RuneID           string  `mapstructure:"rune_id"`
	PollInterval     int     `mapstructure:"poll_interval"`   // seconds
	PriceInterval    int     `mapstructure:"price_interval"`  // seconds
	FetchTimeout     int     `mapstructure:"fetch_timeout"`   // seconds
	Retries          int     `mapstructure:"retries"`
	FallbackBTCPrice float64 `mapstructure:"fallback_btc_price"`
	PrefsFile        string  `mapstructure:"prefs_file"`
	TradeLogDir      string  `mapstructure:"trade_log_dir"`
	SimulateTrades   bool    `mapstructure:"simulate_trades"`
	DebugLogging     bool    `mapstructure:"debug_logging"`
}

const (
	DefaultPollInterval     = 60
	DefaultPriceInterval    = 60
	DefaultFetchTimeout     = 30
	DefaultRetries          = 3
	DefaultFallbackBTCPrice = 50000
	DefaultPrefsFile        = "configs/preferences.json"
	DefaultTradeLogDir      = "logs"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"poll_interval":      DefaultPollInterval,
		"price_interval":     DefaultPriceInterval,
		"fetch_timeout":      DefaultFetchTimeout,
		"retries":            DefaultRetries,
		"fallback_btc_price": DefaultFallbackBTCPrice,
		"prefs_file":         DefaultPrefsFile,
		"trade_log_dir":      DefaultTradeLogDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RuneAPIURL == "" {
		return errors.New("missing rune_api_url in configuration")
	}
	if cfg.ArchAPIURL == "" {
		return errors.New("missing arch_api_url in configuration")
	}
	if cfg.RuneID == "" {
		return errors.New("missing rune_id in configuration")
	}
	if err := validateURL(cfg.RuneAPIURL); err != nil {
		return errors.New("invalid rune API URL")
	}
	if err := validateURL(cfg.ArchAPIURL); err != nil {
		return errors.New("invalid arch API URL")
	}
	if cfg.BTCPriceURL != "" {
		if err := validateURL(cfg.BTCPriceURL); err != nil {
			return errors.New("invalid BTC price URL")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return errors.New("invalid poll_interval")
	}
	if cfg.PriceInterval <= 0 {
		return errors.New("invalid price_interval")
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New("invalid fetch_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.FallbackBTCPrice <= 0 {
		return errors.New("invalid fallback_btc_price")
	}
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("OVT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envRune := v.GetString("RUNE_API_URL"); envRune != "" {
		cfg.RuneAPIURL = envRune
	}
	if envArch := v.GetString("ARCH_API_URL"); envArch != "" {
		cfg.ArchAPIURL = envArch
	}
	if envPrice := v.GetString("BTC_PRICE_URL"); envPrice != "" {
		cfg.BTCPriceURL = envPrice
	}
}
