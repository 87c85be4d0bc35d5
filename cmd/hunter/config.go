package main

import (
	"fmt"
	"os"
	"time"

	configtypes "polymarket-hunter/internal/config"

	"go.yaml.in/yaml/v4"
)

type strategyConfig struct {
	TargetTags        []string             `yaml:"target_tags"`
	MinVolume         float64              `yaml:"min_volume"`
	PriceMin          float64              `yaml:"price_min"`
	PriceMax          float64              `yaml:"price_max"`
	EndingWithinHours float64              `yaml:"ending_within_hours"`
	ScanPeriod        configtypes.Duration `yaml:"scan_period"`
}

type config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Platform struct {
		GammaURL string `yaml:"gamma_url"`
		ClobURL  string `yaml:"clob_url"`
		WSURL    string `yaml:"ws_url"`
	} `yaml:"platform"`
	Oracle struct {
		BinanceURL string `yaml:"binance_url"`
	} `yaml:"oracle"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base"` // optional, defaults to the public Bot API
	} `yaml:"telegram"`
	// Database is optional; leave host empty to run without persistence.
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		PoolSize int    `yaml:"pool_size"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`
	Files struct {
		CryptoLog string `yaml:"crypto_log"`
		SportsLog string `yaml:"sports_log"`
	} `yaml:"files"`
	Strategies struct {
		Crypto strategyConfig `yaml:"crypto"`
		Sports strategyConfig `yaml:"sports"`
	} `yaml:"strategies"`
}

func readConfig(configPath *string) (*config, error) {
	rawConfig, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file %s: %w", *configPath, err)
	}

	cfg := &config{}
	if err = yaml.Unmarshal(rawConfig, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}

	applyDefaults(cfg)

	err = validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't validate config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *config) {
	if cfg.Strategies.Crypto.ScanPeriod.Duration() == 0 {
		cfg.Strategies.Crypto.ScanPeriod = configtypes.Duration(30 * time.Minute)
	}
	if cfg.Strategies.Sports.ScanPeriod.Duration() == 0 {
		cfg.Strategies.Sports.ScanPeriod = configtypes.Duration(5 * time.Minute)
	}
	if cfg.Strategies.Crypto.EndingWithinHours == 0 {
		cfg.Strategies.Crypto.EndingWithinHours = 6
	}
	if cfg.Files.CryptoLog == "" {
		cfg.Files.CryptoLog = "crypto_trades.csv"
	}
	if cfg.Files.SportsLog == "" {
		cfg.Files.SportsLog = "sports_trades.csv"
	}
}

func validateConfig(cfg *config) error {
	// Platform
	if cfg.Platform.GammaURL == "" {
		return fmt.Errorf("platform.gamma_url is required")
	}
	if cfg.Platform.ClobURL == "" {
		return fmt.Errorf("platform.clob_url is required")
	}
	if cfg.Platform.WSURL == "" {
		return fmt.Errorf("platform.ws_url is required")
	}

	// Oracle
	if cfg.Oracle.BinanceURL == "" {
		return fmt.Errorf("oracle.binance_url is required")
	}

	// Telegram
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}

	// Database, only when enabled
	if cfg.Database.Host != "" {
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			return fmt.Errorf("database.port must be between 1 and 65535")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
		if cfg.Database.Database == "" {
			return fmt.Errorf("database.database is required")
		}
		if cfg.Database.PoolSize <= 0 {
			return fmt.Errorf("database.pool_size must be greater than 0")
		}
		if cfg.Database.SSLMode == "" {
			return fmt.Errorf("database.ssl_mode is required")
		}
	}

	// Strategies
	for name, s := range map[string]strategyConfig{
		"crypto": cfg.Strategies.Crypto,
		"sports": cfg.Strategies.Sports,
	} {
		if s.MinVolume < 0 {
			return fmt.Errorf("strategies.%s.min_volume must not be negative", name)
		}
		if s.PriceMin < 0 || s.PriceMax > 1 || s.PriceMin >= s.PriceMax {
			return fmt.Errorf("strategies.%s price window must satisfy 0 <= price_min < price_max <= 1", name)
		}
		if s.ScanPeriod.Duration() <= 0 {
			return fmt.Errorf("strategies.%s.scan_period must be positive", name)
		}
	}
	if cfg.Strategies.Crypto.EndingWithinHours <= 0 {
		return fmt.Errorf("strategies.crypto.ending_within_hours must be positive")
	}

	return nil
}
