package strategy

import (
	"errors"
	"testing"

	appconfig "GoldSentinel/internal/config"
)

func TestPresets(t *testing.T) {
	names := Presets()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %v", names)
	}
	for _, n := range names {
		cfg, err := Preset(n)
		if err != nil {
			t.Fatalf("preset %s: %v", n, err)
		}
		if cfg.Name != n {
			t.Errorf("preset %s carries name %q", n, cfg.Name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s is invalid: %v", n, err)
		}
		p, err := New(cfg)
		if err != nil || p.Name() != n {
			t.Errorf("preset %s: pipeline %v, err %v", n, p, err)
		}
	}
	mtf, _ := Preset(PresetThreeStageMTF)
	if !mtf.MultiTFVeto {
		t.Error("mtf preset should enable the veto")
	}
	sell40, _ := Preset(PresetThreeStageSell40)
	if sell40.RSISellMin != 40 {
		t.Errorf("sell40 preset should raise the sell floor, got %.1f", sell40.RSISellMin)
	}
	score, _ := Preset(PresetScoreBased)
	if score.Variant != VariantScoreBased || score.ATRFallbackPct != 0.003 {
		t.Errorf("unexpected score-based preset: %+v", score)
	}
}

func TestPreset_Unknown(t *testing.T) {
	_, err := Preset("martingale")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown variant", func(c *Config) { c.Variant = "grid" }},
		{"zero window", func(c *Config) { c.LevelWindow = 0 }},
		{"short lookback", func(c *Config) { c.LevelLookback = 15 }},
		{"zero tolerance", func(c *Config) { c.LevelTolerance = 0 }},
		{"rsi out of range", func(c *Config) { c.RSIBuyMax = 120 }},
		{"zero atr multiplier", func(c *Config) { c.ATRMultiplier = 0 }},
		{"inverted score band", func(c *Config) { c.ScoreRSILow = 70 }},
		{"zero threshold", func(c *Config) { c.ScoreThreshold = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tt.name)
		}
		if _, err := New(cfg); err == nil {
			t.Errorf("%s: New should reject the config", tt.name)
		}
	}
}

func TestFromAppConfig_Overrides(t *testing.T) {
	tol, sellMin, veto := 3.5, 40.0, true
	app := &appconfig.Config{}
	app.Strategy.Preset = PresetThreeStage
	app.Strategy.LevelTolerance = &tol
	app.Strategy.RSISellMin = &sellMin
	app.Strategy.MultiTFVeto = &veto
	app.Sentiment.Enabled = true

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LevelTolerance != 3.5 || cfg.RSISellMin != 40 || !cfg.MultiTFVeto || !cfg.UseSentiment {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RSIBuyMax != 70 {
		t.Errorf("untouched fields should keep preset values, got %.1f", cfg.RSIBuyMax)
	}

	app.Strategy.Preset = "nope"
	if _, err := FromAppConfig(app); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}
