package strategy

import (
	"errors"
	"fmt"
	"sort"

	appconfig "GoldSentinel/internal/config"
)

// Variant selects the decision policy.
type Variant string

const (
	VariantThreeStage Variant = "three-stage"
	VariantScoreBased Variant = "score-based"
)

// Preset names.
const (
	PresetThreeStage       = "three-stage"
	PresetThreeStageMTF    = "three-stage-mtf"
	PresetThreeStageSell40 = "three-stage-sell40"
	PresetScoreBased       = "score-based"
)

// ErrUnknownPreset is returned by Preset for a name outside Presets.
var ErrUnknownPreset = errors.New("unknown strategy preset")

// Config holds every threshold of both decision policies.
type Config struct {
	Name    string
	Variant Variant

	LevelWindow    int     // pivot half-window on the higher frame
	LevelLookback  int     // higher-frame bars scanned for levels
	LevelTolerance float64 // absolute price distance counted as "near"

	RSIBuyMax   float64
	RSISellMin  float64
	MultiTFVeto bool

	ATRMultiplier    float64
	RewardMultiplier float64
	ATRFallbackPct   float64

	ScoreRSILow    float64
	ScoreRSIHigh   float64
	ScoreThreshold int

	UseSentiment bool
}

// DefaultConfig returns the base three-stage configuration.
func DefaultConfig() Config {
	return Config{
		Name:             PresetThreeStage,
		Variant:          VariantThreeStage,
		LevelWindow:      10,
		LevelLookback:    100,
		LevelTolerance:   5.0,
		RSIBuyMax:        70,
		RSISellMin:       30,
		ATRMultiplier:    1.5,
		RewardMultiplier: 2.0,
		ATRFallbackPct:   0.002,
		ScoreRSILow:      40,
		ScoreRSIHigh:     60,
		ScoreThreshold:   2,
		UseSentiment:     true,
	}
}

var presets = map[string]func() Config{
	PresetThreeStage: DefaultConfig,
	PresetThreeStageMTF: func() Config {
		c := DefaultConfig()
		c.Name = PresetThreeStageMTF
		c.MultiTFVeto = true
		return c
	},
	PresetThreeStageSell40: func() Config {
		c := DefaultConfig()
		c.Name = PresetThreeStageSell40
		c.RSISellMin = 40
		return c
	},
	PresetScoreBased: func() Config {
		c := DefaultConfig()
		c.Name = PresetScoreBased
		c.Variant = VariantScoreBased
		c.ATRFallbackPct = 0.003
		return c
	},
}

// Preset returns the named configuration.
func Preset(name string) (Config, error) {
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FromAppConfig resolves the configured preset and applies the file/env overrides.
func FromAppConfig(c *appconfig.Config) (Config, error) {
	cfg, err := Preset(c.Strategy.Preset)
	if err != nil {
		return Config{}, err
	}
	s := c.Strategy
	if s.LevelTolerance != nil {
		cfg.LevelTolerance = *s.LevelTolerance
	}
	if s.RSIBuyMax != nil {
		cfg.RSIBuyMax = *s.RSIBuyMax
	}
	if s.RSISellMin != nil {
		cfg.RSISellMin = *s.RSISellMin
	}
	if s.MultiTFVeto != nil {
		cfg.MultiTFVeto = *s.MultiTFVeto
	}
	if s.ATRMultiplier != nil {
		cfg.ATRMultiplier = *s.ATRMultiplier
	}
	if s.RewardMultiplier != nil {
		cfg.RewardMultiplier = *s.RewardMultiplier
	}
	cfg.UseSentiment = c.Sentiment.Enabled
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantThreeStage, VariantScoreBased:
	default:
		return fmt.Errorf("strategy variant %q is not supported", c.Variant)
	}
	if c.LevelWindow <= 0 {
		return fmt.Errorf("level window must be positive, got %d", c.LevelWindow)
	}
	if c.LevelLookback < 2*c.LevelWindow+1 {
		return fmt.Errorf("level lookback %d is too short for window %d", c.LevelLookback, c.LevelWindow)
	}
	if c.LevelTolerance <= 0 {
		return fmt.Errorf("level tolerance must be positive")
	}
	if c.RSIBuyMax <= 0 || c.RSIBuyMax > 100 || c.RSISellMin < 0 || c.RSISellMin >= 100 {
		return fmt.Errorf("rsi bounds out of range: buy<%.1f sell>%.1f", c.RSIBuyMax, c.RSISellMin)
	}
	if c.ATRMultiplier <= 0 || c.RewardMultiplier <= 0 || c.ATRFallbackPct <= 0 {
		return fmt.Errorf("stop multipliers must be positive")
	}
	if c.ScoreRSILow > c.ScoreRSIHigh {
		return fmt.Errorf("score rsi low %.1f exceeds high %.1f", c.ScoreRSILow, c.ScoreRSIHigh)
	}
	if c.ScoreThreshold <= 0 {
		return fmt.Errorf("score threshold must be positive")
	}
	return nil
}
