// Package config defines the top-level configuration for the ladder trading
// simulator and provides validation helpers.
package config

import (
	"fmt"
	"time"

	"github.com/quantline/ladderbot/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by LADDERBOT_* environment
// variables.
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Sim      SimConfig      `toml:"sim"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	Session  string         `toml:"session"`
	LogLevel string         `toml:"log_level"`
}

// EngineConfig holds the trading engine parameters.
type EngineConfig struct {
	Side           string  `toml:"side"`
	Qty            int64   `toml:"qty"`
	LadderMode     string  `toml:"ladder_mode"`
	LevelsPerSide  int     `toml:"levels_per_side"`
	TickSize       float64 `toml:"tick_size"`
	AutoRecalc     bool    `toml:"auto_recalc"`
	StepMultiplier float64 `toml:"step_multiplier"`
	Thresholds     []int64 `toml:"thresholds"`
}

// Settings converts the engine section into domain settings with prices in
// fixed-point micros.
func (e EngineConfig) Settings() domain.Settings {
	return domain.Settings{
		Side:           domain.Side(e.Side),
		Qty:            e.Qty,
		Mode:           domain.LadderMode(e.LadderMode),
		LevelsPerSide:  e.LevelsPerSide,
		TickSize:       domain.ToMicros(e.TickSize),
		AutoRecalc:     e.AutoRecalc,
		StepMultiplier: e.StepMultiplier,
		Thresholds:     e.Thresholds,
	}
}

// SimConfig holds the simulated market parameters.
type SimConfig struct {
	InitialPrice    float64 `toml:"initial_price"`
	TickIntervalMs  int     `toml:"tick_interval_ms"`
	Volatility      float64 `toml:"volatility"`
	SpikeChance     float64 `toml:"spike_chance"`
	SpikeMultiplier float64 `toml:"spike_multiplier"`
	TrendChance     float64 `toml:"trend_chance"`
	HistoryCap      int     `toml:"history_cap"`
	Seed            int64   `toml:"seed"`
	SaveEveryTicks  int     `toml:"save_every_ticks"`
}

// TickInterval returns the tick period as a duration.
func (s SimConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

// RedisConfig holds Redis connection parameters for state persistence.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds connection parameters for the archival trade journal.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a journal connection is configured at all.
func (p PostgresConfig) Enabled() bool {
	return p.DSN != "" || p.Host != ""
}

// S3Config holds S3-compatible object storage parameters for session
// archives.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// Enabled reports whether session archival is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// Defaults returns the built-in configuration: a 50ms tick at 2006.16 with a
// 0.05 tick size, LTP ladder, BUY side, five levels per side, auto-recalc on.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			Side:           string(domain.SideBuy),
			Qty:            1,
			LadderMode:     string(domain.LadderLTP),
			LevelsPerSide:  5,
			TickSize:       0.05,
			AutoRecalc:     true,
			StepMultiplier: 1.0,
			Thresholds:     []int64{500, 1500, 3000, 5000, 8000},
		},
		Sim: SimConfig{
			InitialPrice:    2006.16,
			TickIntervalMs:  50,
			Volatility:      0.0005,
			SpikeChance:     0.02,
			SpikeMultiplier: 3,
			TrendChance:     0.1,
			HistoryCap:      500,
			SaveEveryTicks:  100,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Mode:     "sim",
		Session:  "default",
		LogLevel: "info",
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if !domain.Side(c.Engine.Side).Valid() {
		return fmt.Errorf("config: %w: %q", domain.ErrInvalidSide, c.Engine.Side)
	}
	if !domain.LadderMode(c.Engine.LadderMode).Valid() {
		return fmt.Errorf("config: %w: %q", domain.ErrInvalidMode, c.Engine.LadderMode)
	}
	if c.Engine.Qty < 1 {
		return fmt.Errorf("config: %w: qty %d", domain.ErrInvalidQty, c.Engine.Qty)
	}
	if c.Engine.TickSize <= 0 {
		return fmt.Errorf("config: tick_size must be > 0, got %v", c.Engine.TickSize)
	}
	if c.Engine.LevelsPerSide < 1 {
		return fmt.Errorf("config: levels_per_side must be >= 1, got %d", c.Engine.LevelsPerSide)
	}
	if c.Engine.StepMultiplier <= 0 {
		return fmt.Errorf("config: step_multiplier must be > 0, got %v", c.Engine.StepMultiplier)
	}
	for i := 1; i < len(c.Engine.Thresholds); i++ {
		if c.Engine.Thresholds[i] <= c.Engine.Thresholds[i-1] {
			return fmt.Errorf("config: thresholds must be strictly ascending")
		}
	}
	if c.Sim.InitialPrice <= 0 {
		return fmt.Errorf("config: initial_price must be > 0, got %v", c.Sim.InitialPrice)
	}
	if c.Sim.TickIntervalMs < 20 || c.Sim.TickIntervalMs > 200 {
		return fmt.Errorf("config: tick_interval_ms must be in [20,200], got %d", c.Sim.TickIntervalMs)
	}
	switch c.Mode {
	case "sim", "headless":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Mode == "sim" && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("config: server port out of range: %d", c.Server.Port)
	}
	return nil
}

// Redacted returns a copy of cfg with credential fields replaced by "***",
// safe for logging.
func Redacted(cfg *Config) Config {
	out := *cfg
	redact(&out.Redis.Password)
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Server.APIKey)

	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	}
	if cfg.Engine.Thresholds != nil {
		out.Engine.Thresholds = append([]int64(nil), cfg.Engine.Thresholds...)
	}
	return out
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
