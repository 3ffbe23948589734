// Package config loads and validates run configuration from YAML or
// JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure so callers can match with
// errors.Is.
var ErrInvalid = errors.New("invalid config")

// Config represents the complete run configuration
type Config struct {
	Position   PositionConfig   `json:"position" yaml:"position"`
	MonteCarlo MonteCarloConfig `json:"monte_carlo" yaml:"monte_carlo"`
	Cascade    CascadeConfig    `json:"cascade" yaml:"cascade"`
	Stress     StressConfig     `json:"stress" yaml:"stress"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// PositionConfig describes the leveraged position and the market
// overrides applied when the data snapshot is captured
type PositionConfig struct {
	CollateralAsset  string  `json:"collateral_asset" yaml:"collateral_asset"`
	DebtAsset        string  `json:"debt_asset" yaml:"debt_asset"`
	CollateralAmount float64 `json:"collateral_amount" yaml:"collateral_amount"`
	DebtAmount       float64 `json:"debt_amount" yaml:"debt_amount"`
	EModeCategory    int     `json:"emode_category,omitempty" yaml:"emode_category,omitempty"`

	CollateralPrice *float64 `json:"collateral_price,omitempty" yaml:"collateral_price,omitempty"`
	Peg             *float64 `json:"peg,omitempty" yaml:"peg,omitempty"`
	Utilization     *float64 `json:"utilization,omitempty" yaml:"utilization,omitempty"`
}

// MonteCarloConfig contains the stochastic engine parameters
type MonteCarloConfig struct {
	Paths       int   `json:"paths" yaml:"paths"`
	HorizonDays int   `json:"horizon_days" yaml:"horizon_days"`
	Seed        int64 `json:"seed" yaml:"seed"`
	Workers     int   `json:"workers,omitempty" yaml:"workers,omitempty"`

	ReversionSpeed  float64 `json:"reversion_speed" yaml:"reversion_speed"`
	UtilizationVol  float64 `json:"utilization_vol" yaml:"utilization_vol"`
	PegPaths        bool    `json:"peg_paths" yaml:"peg_paths"`
	PegVol          float64 `json:"peg_vol,omitempty" yaml:"peg_vol,omitempty"`
	JumpIntensity   float64 `json:"jump_intensity,omitempty" yaml:"jump_intensity,omitempty"`
	JumpSize        float64 `json:"jump_size,omitempty" yaml:"jump_size,omitempty"`
	UtilCorrelation float64 `json:"util_correlation,omitempty" yaml:"util_correlation,omitempty"`
}

// CascadeConfig contains the liquidation cascade parameters
type CascadeConfig struct {
	InitialDebt        float64 `json:"initial_debt" yaml:"initial_debt"`
	PriceImpactPerUnit float64 `json:"price_impact_per_unit" yaml:"price_impact_per_unit"`
	DepegSensitivity   float64 `json:"depeg_sensitivity" yaml:"depeg_sensitivity"`
	MaxSteps           int     `json:"max_steps" yaml:"max_steps"`
	MinDebtThreshold   float64 `json:"min_debt_threshold" yaml:"min_debt_threshold"`
	PriceFloor         float64 `json:"price_floor" yaml:"price_floor"`
}

// StressConfig contains the correlated scenario generator parameters
type StressConfig struct {
	Scenarios      int     `json:"scenarios" yaml:"scenarios"`
	DurationDays   int     `json:"duration_days" yaml:"duration_days"`
	NumeraireVol   float64 `json:"numeraire_vol" yaml:"numeraire_vol"`
	PegVol         float64 `json:"peg_vol" yaml:"peg_vol"`
	UtilVol        float64 `json:"util_vol" yaml:"util_vol"`
	InertNumeraire bool    `json:"inert_numeraire,omitempty" yaml:"inert_numeraire,omitempty"`
	Seed           int64   `json:"seed" yaml:"seed"`
}

// JournalConfig contains run journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite" or "none"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Position.CollateralAsset == "" {
		return invalidf("position.collateral_asset is required")
	}
	if c.Position.DebtAsset == "" {
		return invalidf("position.debt_asset is required")
	}
	if c.Position.CollateralAmount < 0 || c.Position.DebtAmount < 0 {
		return invalidf("position amounts must be non-negative")
	}
	if c.Position.EModeCategory < 0 {
		return invalidf("position.emode_category must be non-negative")
	}
	if c.Position.Utilization != nil && (*c.Position.Utilization < 0 || *c.Position.Utilization > 1) {
		return invalidf("position.utilization override %v outside [0, 1]", *c.Position.Utilization)
	}
	if c.MonteCarlo.Paths <= 0 {
		return invalidf("monte_carlo.paths must be positive")
	}
	if c.MonteCarlo.HorizonDays <= 0 {
		return invalidf("monte_carlo.horizon_days must be positive")
	}
	if c.MonteCarlo.Workers < 0 {
		return invalidf("monte_carlo.workers must be non-negative")
	}
	if c.MonteCarlo.ReversionSpeed <= 0 {
		return invalidf("monte_carlo.reversion_speed must be positive")
	}
	if c.MonteCarlo.UtilizationVol < 0 {
		return invalidf("monte_carlo.utilization_vol must be non-negative")
	}
	if c.MonteCarlo.PegPaths {
		if c.MonteCarlo.PegVol <= 0 {
			return invalidf("monte_carlo.peg_vol must be positive when peg_paths is set")
		}
		if c.MonteCarlo.JumpIntensity < 0 {
			return invalidf("monte_carlo.jump_intensity must be non-negative")
		}
		if c.MonteCarlo.UtilCorrelation < -1 || c.MonteCarlo.UtilCorrelation > 1 {
			return invalidf("monte_carlo.util_correlation %v outside [-1, 1]", c.MonteCarlo.UtilCorrelation)
		}
	}
	if c.Cascade.InitialDebt <= 0 {
		return invalidf("cascade.initial_debt must be positive")
	}
	if c.Cascade.MaxSteps <= 0 {
		return invalidf("cascade.max_steps must be positive")
	}
	if c.Cascade.PriceFloor <= 0 {
		return invalidf("cascade.price_floor must be positive")
	}
	if c.Stress.Scenarios <= 0 {
		return invalidf("stress.scenarios must be positive")
	}
	if c.Stress.DurationDays <= 0 {
		return invalidf("stress.duration_days must be positive")
	}
	if c.Journal.Type != "sqlite" && c.Journal.Type != "none" {
		return invalidf("journal.type must be 'sqlite' or 'none'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return invalidf("journal.db_path required for sqlite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Position: PositionConfig{
			CollateralAsset:  "wstETH",
			DebtAsset:        "WETH",
			CollateralAmount: 12000,
			DebtAmount:       10500,
			EModeCategory:    1,
		},
		MonteCarlo: MonteCarloConfig{
			Paths:           10000,
			HorizonDays:     365,
			Seed:            42,
			ReversionSpeed:  5.0,
			UtilizationVol:  0.08,
			PegPaths:        true,
			PegVol:          0.03,
			JumpIntensity:   0.1,
			JumpSize:        -0.05,
			UtilCorrelation: -0.5,
		},
		Cascade: CascadeConfig{
			InitialDebt:        50000,
			PriceImpactPerUnit: 0.00001,
			DepegSensitivity:   5.0,
			MaxSteps:           10,
			MinDebtThreshold:   100.0,
			PriceFloor:         0.01,
		},
		Stress: StressConfig{
			Scenarios:    10000,
			DurationDays: 14,
			NumeraireVol: 0.30,
			PegVol:       0.05,
			UtilVol:      0.10,
			Seed:         42,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./vaultrisk.db",
		},
	}
}
