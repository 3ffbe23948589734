// Package position values a leveraged collateral/debt position in a
// common numeraire and derives leverage, carry, and unwind costs.
package position

import (
	"fmt"
	"math"
)

// Position is an immutable snapshot of a leveraged two-asset position.
// CollateralPrice is expressed in the debt asset's numeraire and already
// incorporates any exchange-rate peg; it must never be composed with a
// second peg multiplier.
type Position struct {
	CollateralAmount float64 // collateral asset units
	DebtAmount       float64 // debt asset units
	CollateralPrice  float64 // numeraire per collateral unit
	DebtPrice        float64 // normally 1.0 when debt is the numeraire

	StakingAPY float64 // annualized income embedded in the collateral asset
	SupplyAPY  float64 // annualized lending yield on the collateral
	BorrowAPY  float64 // annualized cost on the debt
}

// Default returns the documented reference position: 12,000 collateral
// units at price 1.18 against 10,500 units of debt.
func Default() Position {
	return Position{
		CollateralAmount: 12_000,
		DebtAmount:       10_500,
		CollateralPrice:  1.18,
		DebtPrice:        1.0,
		StakingAPY:       0.035,
	}
}

// Validate rejects malformed positions. Zero amounts are valid (an
// unopened or fully unwound position), negative ones are not.
func (p Position) Validate() error {
	if p.CollateralAmount < 0 || p.DebtAmount < 0 {
		return fmt.Errorf("position: amounts must be non-negative")
	}
	if p.CollateralPrice < 0 || p.DebtPrice < 0 {
		return fmt.Errorf("position: prices must be non-negative")
	}
	return nil
}

// CollateralValue is the collateral leg in the numeraire.
func (p Position) CollateralValue() float64 {
	return p.CollateralAmount * p.CollateralPrice
}

// DebtValue is the debt leg in the numeraire.
func (p Position) DebtValue() float64 {
	return p.DebtAmount * p.DebtPrice
}

// Equity is collateral value minus debt value.
func (p Position) Equity() float64 {
	return p.CollateralValue() - p.DebtValue()
}

// Leverage is collateral value over equity, both in the numeraire.
// Dividing raw asset-native amounts would be wrong whenever the two
// assets trade away from parity. Zero or negative equity returns +Inf.
func (p Position) Leverage() float64 {
	equity := p.Equity()
	if equity <= 0 {
		return math.Inf(1)
	}
	return p.CollateralValue() / equity
}
