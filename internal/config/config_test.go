package config

import "testing"

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad side", func(c *Config) { c.Engine.Side = "HOLD" }},
		{"bad mode", func(c *Config) { c.Engine.LadderMode = "FIB" }},
		{"zero qty", func(c *Config) { c.Engine.Qty = 0 }},
		{"zero tick size", func(c *Config) { c.Engine.TickSize = 0 }},
		{"zero levels", func(c *Config) { c.Engine.LevelsPerSide = 0 }},
		{"zero step multiplier", func(c *Config) { c.Engine.StepMultiplier = 0 }},
		{"unsorted thresholds", func(c *Config) { c.Engine.Thresholds = []int64{500, 500} }},
		{"tick interval too fast", func(c *Config) { c.Sim.TickIntervalMs = 5 }},
		{"tick interval too slow", func(c *Config) { c.Sim.TickIntervalMs = 1000 }},
		{"negative price", func(c *Config) { c.Sim.InitialPrice = -1 }},
		{"unknown run mode", func(c *Config) { c.Mode = "paper" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LADDERBOT_ENGINE_SIDE", "SELL")
	t.Setenv("LADDERBOT_SIM_TICK_INTERVAL_MS", "100")
	t.Setenv("LADDERBOT_ENGINE_AUTO_RECALC", "false")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Engine.Side != "SELL" {
		t.Errorf("side = %q, want SELL", cfg.Engine.Side)
	}
	if cfg.Sim.TickIntervalMs != 100 {
		t.Errorf("tick interval = %d, want 100", cfg.Sim.TickIntervalMs)
	}
	if cfg.Engine.AutoRecalc {
		t.Error("auto_recalc override not applied")
	}
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.S3.SecretKey = "supersecret"

	red := Redacted(&cfg)
	if red.Redis.Password != "***" || red.S3.SecretKey != "***" {
		t.Error("credentials not redacted")
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("redaction mutated the original")
	}
}
