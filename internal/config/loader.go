package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies LADDERBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, err
			}
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LADDERBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "LADDERBOT_MODE")
	setStr(&cfg.Session, "LADDERBOT_SESSION")
	setStr(&cfg.LogLevel, "LADDERBOT_LOG_LEVEL")

	setStr(&cfg.Engine.Side, "LADDERBOT_ENGINE_SIDE")
	setInt64(&cfg.Engine.Qty, "LADDERBOT_ENGINE_QTY")
	setStr(&cfg.Engine.LadderMode, "LADDERBOT_ENGINE_LADDER_MODE")
	setInt(&cfg.Engine.LevelsPerSide, "LADDERBOT_ENGINE_LEVELS_PER_SIDE")
	setFloat(&cfg.Engine.TickSize, "LADDERBOT_ENGINE_TICK_SIZE")
	setBool(&cfg.Engine.AutoRecalc, "LADDERBOT_ENGINE_AUTO_RECALC")
	setFloat(&cfg.Engine.StepMultiplier, "LADDERBOT_ENGINE_STEP_MULTIPLIER")

	setFloat(&cfg.Sim.InitialPrice, "LADDERBOT_SIM_INITIAL_PRICE")
	setInt(&cfg.Sim.TickIntervalMs, "LADDERBOT_SIM_TICK_INTERVAL_MS")
	setFloat(&cfg.Sim.Volatility, "LADDERBOT_SIM_VOLATILITY")
	setInt64(&cfg.Sim.Seed, "LADDERBOT_SIM_SEED")

	setStr(&cfg.Redis.Addr, "LADDERBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LADDERBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LADDERBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "LADDERBOT_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "LADDERBOT_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "LADDERBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "LADDERBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "LADDERBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "LADDERBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "LADDERBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "LADDERBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "LADDERBOT_POSTGRES_SSLMODE")
	setBool(&cfg.Postgres.RunMigrations, "LADDERBOT_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.S3.Endpoint, "LADDERBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "LADDERBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "LADDERBOT_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "LADDERBOT_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "LADDERBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "LADDERBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "LADDERBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "LADDERBOT_S3_FORCE_PATH_STYLE")

	setInt(&cfg.Server.Port, "LADDERBOT_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "LADDERBOT_SERVER_API_KEY")
	if v := os.Getenv("LADDERBOT_SERVER_CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
