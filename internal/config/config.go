package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// local buffer (badger)
	BufferPath string `toml:"buffer_path"`
	// weekly processing
	Timezone             string `toml:"timezone"`       // IANA name, e.g. Europe/Berlin
	WeeklyCronSpec       string `toml:"weekly_cron"`    // robfig/cron spec with seconds field
	TriggerPollSeconds   int    `toml:"trigger_poll_seconds"`
	HealthMetricsBaseURL string `toml:"health_metrics_base_url"`
	// rate limiting
	SubmitRateLimitAllowedPerMin int `toml:"submit_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	cfg.Environment = env

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.WeeklyCronSpec == "" {
		// monday 06:00, local to the configured timezone
		cfg.WeeklyCronSpec = "0 0 6 * * 1"
	}
	if cfg.TriggerPollSeconds <= 0 {
		cfg.TriggerPollSeconds = 60
	}
	if cfg.SubmitRateLimitAllowedPerMin <= 0 {
		cfg.SubmitRateLimitAllowedPerMin = 60
	}

	return cfg, nil
}
