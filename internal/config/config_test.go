package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should be fine: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.DataSource.Symbol != "XAU/USD" {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Schedule.TickInterval != "@every 20s" || cfg.Strategy.Preset != "three-stage" {
		t.Errorf("unexpected schedule/strategy defaults: %+v %+v", cfg.Schedule, cfg.Strategy)
	}
	if cfg.Cooldown.Hours != 4 || cfg.Cooldown.Store != "file" {
		t.Errorf("unexpected cooldown defaults: %+v", cfg.Cooldown)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, `
telegram:
  bot_token: file-token
  chat_id: "100"
strategy:
  preset: three-stage-mtf
  rsi_buy_max: 65
  multi_tf_veto: false
cooldown:
  hours: 2
indicators:
  RSI_PERIOD: "21"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("COOLDOWN_HOURS", "6")
	t.Setenv("COOLDOWN_STORE", "redis")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" || cfg.Telegram.ChatID != "100" {
		t.Errorf("env should override the file: %+v", cfg.Telegram)
	}
	if cfg.Cooldown.Hours != 6 || cfg.Cooldown.Store != "redis" {
		t.Errorf("unexpected cooldown: %+v", cfg.Cooldown)
	}
	if cfg.Strategy.RSIBuyMax == nil || *cfg.Strategy.RSIBuyMax != 65 {
		t.Error("rsi_buy_max override not parsed")
	}
	if cfg.Strategy.MultiTFVeto == nil || *cfg.Strategy.MultiTFVeto {
		t.Error("multi_tf_veto=false must be kept as an explicit override")
	}
	if cfg.Strategy.RSISellMin != nil {
		t.Error("unset overrides must stay nil")
	}
	if MapStore(cfg.Indicators).Get("RSI_PERIOD", "14") != "21" {
		t.Error("indicator overrides not loaded")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SYMBOL=EUR/USD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYMBOL", "")
	os.Unsetenv("SYMBOL")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataSource.Symbol != "EUR/USD" {
		t.Errorf("expected symbol from .env, got %q", cfg.DataSource.Symbol)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "telegram: [unclosed")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.BotToken = "t"
		c.Telegram.ChatID = "1"
		c.applyDefaults()
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }, "bot_token"},
		{"missing chat", func(c *Config) { c.Telegram.ChatID = "" }, "chat_id"},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }, "base_url"},
		{"negative cooldown", func(c *Config) { c.Cooldown.Hours = -1 }, "cooldown.hours"},
		{"unknown store", func(c *Config) { c.Cooldown.Store = "etcd" }, "etcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLayered(t *testing.T) {
	l := Layered{nil, MapStore{"A": ""}, MapStore{"A": "2", "B": "3"}}
	if l.Get("A", "x") != "2" || l.Get("B", "x") != "3" || l.Get("C", "x") != "x" {
		t.Error("unexpected layered lookup")
	}
}
