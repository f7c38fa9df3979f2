package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Wallet struct {
		XPub string `yaml:"xpub"`
	} `yaml:"wallet"`
	Chronik struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		TLS            bool   `yaml:"tls"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"chronik"`
	Watcher struct {
		IntervalSeconds int   `yaml:"interval_seconds"`
		PageSize        int   `yaml:"page_size"`
		FinalizeDepth   int32 `yaml:"finalize_depth"`
		WSEnabled       bool  `yaml:"ws_enabled"`
	} `yaml:"watcher"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if cfg.Chronik.Host == "" || cfg.Chronik.Port <= 0 || cfg.Chronik.Port > 65535 {
		return nil, errors.New("chronik config is incomplete")
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("WALLET_XPUB"); v != "" {
		cfg.Wallet.XPub = v
	}
	if v := os.Getenv("CHRONIK_HOST"); v != "" {
		cfg.Chronik.Host = v
	}
	if v := os.Getenv("CHRONIK_PORT"); v != "" {
		cfg.Chronik.Port = atoiOr(cfg.Chronik.Port, v)
	}
	if v := os.Getenv("CHRONIK_TLS"); v != "" {
		cfg.Chronik.TLS = parseBoolOr(cfg.Chronik.TLS, v)
	}
	if v := os.Getenv("CHRONIK_TIMEOUT_SECONDS"); v != "" {
		cfg.Chronik.TimeoutSeconds = atoiOr(cfg.Chronik.TimeoutSeconds, v)
	}
	if v := os.Getenv("WATCHER_INTERVAL_SECONDS"); v != "" {
		cfg.Watcher.IntervalSeconds = atoiOr(cfg.Watcher.IntervalSeconds, v)
	}
	if v := os.Getenv("WATCHER_PAGE_SIZE"); v != "" {
		cfg.Watcher.PageSize = atoiOr(cfg.Watcher.PageSize, v)
	}
	if v := os.Getenv("WATCHER_FINALIZE_DEPTH"); v != "" {
		cfg.Watcher.FinalizeDepth = int32(atoiOr(int(cfg.Watcher.FinalizeDepth), v))
	}
	if v := os.Getenv("WATCHER_WS_ENABLED"); v != "" {
		cfg.Watcher.WSEnabled = parseBoolOr(cfg.Watcher.WSEnabled, v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 30
	}
	if cfg.Watcher.PageSize <= 0 {
		cfg.Watcher.PageSize = 25
	}
	if cfg.Watcher.FinalizeDepth <= 0 {
		cfg.Watcher.FinalizeDepth = 10
	}
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func parseBoolOr(fallback bool, v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
