// Package cascade simulates multi-step cross-pool liquidation
// propagation: liquidations seize collateral, selling the collateral
// depresses its exchange rate, and the cheaper collateral puts more
// debt at risk for the next step.
//
// Steps are strictly sequential: step k+1 depends on step k's pool
// states and exchange rate. Independent cascade runs (different seeds
// or configs) may execute concurrently.
package cascade

import (
	"context"
	"fmt"

	"vaultrisk/liquidation"
	"vaultrisk/pool"
	"vaultrisk/rates"
)

// Config bounds and parameterizes a cascade run.
type Config struct {
	InitialDebtToLiquidate float64
	CollateralPrice        float64 // numeraire per collateral unit
	DebtPrice              float64 // normally 1.0
	LiquidationBonus       float64
	// PriceImpactPerUnit is the fractional exchange-rate drop per unit
	// of collateral sold. 0.00001 means selling 10,000 units drops the
	// rate by 10%.
	PriceImpactPerUnit float64
	// DepegSensitivity converts a fractional price drop into the
	// fraction of remaining debt that becomes at-risk: 5.0 turns a 10%
	// drop into 50% of debt at risk. The drop is consumed in native
	// [0, 1] units, never percentage points.
	DepegSensitivity float64
	MaxSteps         int
	MinDebtThreshold float64 // stop when at-risk debt falls below this
	PriceFloor       float64 // exchange rate can never fall below this
}

// DefaultConfig returns the documented cascade defaults.
func DefaultConfig(initialDebt float64) Config {
	return Config{
		InitialDebtToLiquidate: initialDebt,
		CollateralPrice:        1.18,
		DebtPrice:              1.0,
		LiquidationBonus:       0.01,
		PriceImpactPerUnit:     0.00001,
		DepegSensitivity:       5.0,
		MaxSteps:               10,
		MinDebtThreshold:       100.0,
		PriceFloor:             0.01,
	}
}

// Validate fails fast on malformed configuration.
func (c Config) Validate() error {
	if c.InitialDebtToLiquidate < 0 {
		return fmt.Errorf("cascade: initial debt must be non-negative")
	}
	if c.CollateralPrice <= 0 || c.DebtPrice <= 0 {
		return fmt.Errorf("cascade: prices must be positive")
	}
	if c.LiquidationBonus < 0 {
		return fmt.Errorf("cascade: liquidation bonus must be non-negative")
	}
	if c.PriceImpactPerUnit < 0 || c.DepegSensitivity < 0 {
		return fmt.Errorf("cascade: impact and sensitivity must be non-negative")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("cascade: max_steps must be positive")
	}
	if c.PriceFloor <= 0 {
		return fmt.Errorf("cascade: price floor must be positive")
	}
	if c.PriceFloor >= c.CollateralPrice {
		return fmt.Errorf("cascade: price floor %v must be below the collateral price %v", c.PriceFloor, c.CollateralPrice)
	}
	return nil
}

// Step is an immutable snapshot of one cascade iteration.
type Step struct {
	Step             int
	DebtLiquidated   float64
	CollateralSeized float64
	CumulativeSeized float64
	DebtPool         pool.State // debt-asset reserve after this step
	CollateralPool   pool.State // collateral-asset reserve after this step
	Utilization      float64    // debt pool utilization
	BorrowRate       float64
	CollateralPrice  float64
	AtRiskDebt       float64
	Terminated       bool // true on the step that ended the cascade
}

// Result is the ordered step sequence plus totals.
type Result struct {
	Steps                 []Step
	TotalDebtLiquidated   float64
	TotalCollateralSeized float64
	FinalUtilization      float64
	FinalBorrowRate       float64
	FinalCollateralPrice  float64
}

// maxStepDrop caps the per-step price drop so a single huge seizure
// cannot push the exchange rate to zero or negative.
const maxStepDrop = 0.99

// Simulate runs the cascade against independent debt- and
// collateral-asset pool snapshots. Repayment touches only the debt
// pool's debt; seizure touches only the collateral pool's supply. The
// two effects are never applied to one shared state. The inputs are
// not mutated. Cancellation is checked between steps.
func Simulate(ctx context.Context, debtPool, collateralPool pool.State, rp rates.Params, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := rp.Validate(); err != nil {
		return nil, err
	}

	seizer := liquidation.Model{LiquidationBonus: cfg.LiquidationBonus}

	price := cfg.CollateralPrice
	dp := debtPool
	cp := collateralPool

	res := &Result{}
	debtToLiquidate := cfg.InitialDebtToLiquidate

	for stepNum := 1; stepNum <= cfg.MaxSteps; stepNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if debtToLiquidate < cfg.MinDebtThreshold {
			break
		}
		if debtToLiquidate > dp.TotalDebt {
			debtToLiquidate = dp.TotalDebt
		}

		seized := seizer.CollateralSeized(debtToLiquidate, cfg.DebtPrice, price)

		// Each side lands on its own pool.
		dp = dp.SimulateDebtRepaid(debtToLiquidate)
		cp = cp.SimulateCollateralSeized(seized)

		res.TotalDebtLiquidated += debtToLiquidate
		res.TotalCollateralSeized += seized

		// Selling the seized collateral depresses the exchange rate,
		// bounded per step and floored overall.
		drop := seized * cfg.PriceImpactPerUnit
		if drop > maxStepDrop {
			drop = maxStepDrop
		}
		price *= 1.0 - drop
		floored := false
		if price < cfg.PriceFloor {
			price = cfg.PriceFloor
			floored = true
		}

		utilization := dp.Utilization()
		borrowRate := rp.BorrowRate(utilization)

		// The fractional drop stays in [0, 1] units here; rescaling to
		// percentage points would inflate at-risk debt a hundredfold.
		atRisk := dp.TotalDebt * cfg.DepegSensitivity * drop
		if atRisk < 0 {
			atRisk = 0
		}

		terminated := floored ||
			atRisk < cfg.MinDebtThreshold ||
			stepNum == cfg.MaxSteps

		res.Steps = append(res.Steps, Step{
			Step:             stepNum,
			DebtLiquidated:   debtToLiquidate,
			CollateralSeized: seized,
			CumulativeSeized: res.TotalCollateralSeized,
			DebtPool:         dp,
			CollateralPool:   cp,
			Utilization:      utilization,
			BorrowRate:       borrowRate,
			CollateralPrice:  price,
			AtRiskDebt:       atRisk,
			Terminated:       terminated,
		})

		if terminated {
			break
		}
		debtToLiquidate = atRisk
	}

	res.FinalUtilization = dp.Utilization()
	res.FinalBorrowRate = rp.BorrowRate(res.FinalUtilization)
	res.FinalCollateralPrice = price
	return res, nil
}
