// Package liquidation implements health factor arithmetic, close
// factors, cross-asset collateral seizure, and E-mode parameter
// overrides for a collateral/debt position.
package liquidation

import (
	"fmt"
	"math"
)

// Params holds the standard liquidation parameters for an asset.
type Params struct {
	LTV                  float64 // max loan-to-value for new borrows
	LiquidationThreshold float64
	LiquidationBonus     float64
}

// Validate rejects thresholds outside their valid ranges.
func (p Params) Validate() error {
	if p.LTV < 0 || p.LTV > 1 {
		return fmt.Errorf("liquidation: ltv %v outside [0, 1]", p.LTV)
	}
	if p.LiquidationThreshold < 0 || p.LiquidationThreshold > 1 {
		return fmt.Errorf("liquidation: threshold %v outside [0, 1]", p.LiquidationThreshold)
	}
	if p.LiquidationBonus < 0 {
		return fmt.Errorf("liquidation: bonus must be non-negative")
	}
	return nil
}

// EModeCategory is an efficiency-mode override: when both the collateral
// and debt assets belong to the category, its parameters replace the
// standard ones, allowing higher leverage for correlated pairs.
type EModeCategory struct {
	ID                   int
	Label                string
	LTV                  float64
	LiquidationThreshold float64
	LiquidationBonus     float64
}

// Model resolves the effective parameters for a position.
type Model struct {
	LTV                  float64
	LiquidationThreshold float64
	LiquidationBonus     float64
}

// NewModel builds a Model from standard params, applying the E-mode
// override when one is supplied.
func NewModel(p Params, emode *EModeCategory) Model {
	if emode != nil {
		return Model{
			LTV:                  emode.LTV,
			LiquidationThreshold: emode.LiquidationThreshold,
			LiquidationBonus:     emode.LiquidationBonus,
		}
	}
	return Model{
		LTV:                  p.LTV,
		LiquidationThreshold: p.LiquidationThreshold,
		LiquidationBonus:     p.LiquidationBonus,
	}
}

// HealthFactor computes
//
//	HF = (collateral_value * liquidation_threshold) / debt_value
//
// in a common numeraire. A debt-free position returns +Inf.
func (m Model) HealthFactor(collateralValue, debtValue float64) float64 {
	if debtValue <= 0 {
		return math.Inf(1)
	}
	return (collateralValue * m.LiquidationThreshold) / debtValue
}

// CloseFactor returns the fraction of debt liquidators may repay:
// nothing while healthy, half for mildly unhealthy positions, all of it
// once HF falls below 0.95.
func (m Model) CloseFactor(hf float64) float64 {
	if hf >= 1.0 {
		return 0.0
	}
	if hf >= 0.95 {
		return 0.5
	}
	return 1.0
}

// MaxBorrowable is the debt value the LTV permits against collateral.
func (m Model) MaxBorrowable(collateralValue float64) float64 {
	return collateralValue * m.LTV
}

// CollateralSeized converts repaid debt into seized collateral units:
//
//	seized = debt_repaid * debt_price * (1 + bonus) / collateral_price
//
// The conversion is explicit; debt and collateral are different assets
// even when economically related, so units are never assumed 1:1.
func (m Model) CollateralSeized(debtRepaid, debtPrice, collateralPrice float64) float64 {
	if collateralPrice <= 0 {
		return 0.0
	}
	return debtRepaid * debtPrice * (1.0 + m.LiquidationBonus) / collateralPrice
}

// LiquidationPriceDrop returns the fractional collateral-value drop that
// brings HF to exactly 1.0. Zero when already liquidatable, +Inf when
// debt-free.
func (m Model) LiquidationPriceDrop(collateralValue, debtValue float64) float64 {
	if debtValue <= 0 {
		return math.Inf(1)
	}
	critical := debtValue / (collateralValue * m.LiquidationThreshold)
	if critical >= 1.0 {
		return 0.0
	}
	return 1.0 - critical
}

// DepegToLiquidation returns the exchange-rate level at which HF reaches
// 1.0, given collateral priced at collateralPrice per unit at par. Zero
// when already liquidatable at the current rate.
func (m Model) DepegToLiquidation(collateralAmount, collateralPrice, debtValue float64) float64 {
	if debtValue <= 0 {
		return 0.0
	}
	pegAtLiquidation := debtValue / (collateralAmount * collateralPrice * m.LiquidationThreshold)
	if pegAtLiquidation >= 1.0 {
		return 0.0
	}
	return pegAtLiquidation
}

// PegPoint is one sample of a depeg sensitivity sweep.
type PegPoint struct {
	Peg          float64
	HealthFactor float64
}

// DepegSensitivity sweeps the exchange rate over [pegLo, pegHi] and
// reports the health factor at each level.
func (m Model) DepegSensitivity(collateralAmount, collateralPrice, debtValue float64, pegLo, pegHi float64, n int) []PegPoint {
	if n < 2 {
		n = 2
	}
	points := make([]PegPoint, n)
	for i := 0; i < n; i++ {
		peg := pegLo + (pegHi-pegLo)*float64(i)/float64(n-1)
		collateralValue := collateralAmount * collateralPrice * peg
		points[i] = PegPoint{
			Peg:          peg,
			HealthFactor: m.HealthFactor(collateralValue, debtValue),
		}
	}
	return points
}
