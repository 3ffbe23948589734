// Package pool models one asset reserve of the lending pool: supply and
// debt bookkeeping plus non-mutating what-if operations for borrows,
// withdrawals, and the two sides of a liquidation.
//
// Every operation returns a new State and leaves the receiver untouched,
// so snapshots can be replayed freely across simulation paths.
package pool

import "vaultrisk/rates"

// State is an immutable snapshot of one reserve.
type State struct {
	TotalSupply float64 // total aToken supply, asset units
	TotalDebt   float64 // total variable debt, asset units
}

// Utilization returns debt/supply clamped to [0, 1]. An empty pool is
// maximally utilized (1.0) by convention, which also avoids div-by-zero.
func (s State) Utilization() float64 {
	if s.TotalSupply <= 0 {
		return 1.0
	}
	u := s.TotalDebt / s.TotalSupply
	if u < 0 {
		return 0.0
	}
	if u > 1 {
		return 1.0
	}
	return u
}

// AvailableLiquidity is supply minus debt, floored at zero.
func (s State) AvailableLiquidity() float64 {
	avail := s.TotalSupply - s.TotalDebt
	if avail < 0 {
		return 0.0
	}
	return avail
}

// SimulateBorrow applies a new borrow: debt rises, aToken supply is
// unchanged (the borrowed amount comes out of available liquidity).
func (s State) SimulateBorrow(amount float64) State {
	return State{
		TotalSupply: s.TotalSupply,
		TotalDebt:   s.TotalDebt + amount,
	}
}

// SimulateWithdrawal applies a supply withdrawal (aTokens burned). A
// withdrawal larger than the snapshot's supply clamps supply at zero
// rather than erroring; Utilization then reports 1.0.
func (s State) SimulateWithdrawal(amount float64) State {
	supply := s.TotalSupply - amount
	if supply < 0 {
		supply = 0
	}
	return State{
		TotalSupply: supply,
		TotalDebt:   s.TotalDebt,
	}
}

// SimulateDebtRepaid applies the debt-asset side of a liquidation:
// repaid debt returns to available liquidity, so supply is unchanged.
func (s State) SimulateDebtRepaid(amount float64) State {
	debt := s.TotalDebt - amount
	if debt < 0 {
		debt = 0
	}
	return State{
		TotalSupply: s.TotalSupply,
		TotalDebt:   debt,
	}
}

// SimulateCollateralSeized applies the collateral-asset side of a
// liquidation: seized collateral leaves the reserve (aTokens burned),
// its own debt is unaffected. A cross-asset position must carry two
// independent States and apply each side to its own pool.
func (s State) SimulateCollateralSeized(amount float64) State {
	supply := s.TotalSupply - amount
	if supply < 0 {
		supply = 0
	}
	return State{
		TotalSupply: supply,
		TotalDebt:   s.TotalDebt,
	}
}

// RateImpact reports utilization and rates around a simulated operation.
type RateImpact struct {
	UtilizationBefore float64
	UtilizationAfter  float64
	BorrowRateBefore  float64
	BorrowRateAfter   float64
	SupplyRateBefore  float64
	SupplyRateAfter   float64
}

func impact(before, after State, p rates.Params) RateImpact {
	uBefore := before.Utilization()
	uAfter := after.Utilization()
	return RateImpact{
		UtilizationBefore: uBefore,
		UtilizationAfter:  uAfter,
		BorrowRateBefore:  p.BorrowRate(uBefore),
		BorrowRateAfter:   p.BorrowRate(uAfter),
		SupplyRateBefore:  p.SupplyRate(uBefore),
		SupplyRateAfter:   p.SupplyRate(uAfter),
	}
}

// BorrowImpact reports the rate impact of an additional borrow.
func BorrowImpact(s State, p rates.Params, amount float64) RateImpact {
	return impact(s, s.SimulateBorrow(amount), p)
}

// WithdrawalImpact reports the rate impact of a supply withdrawal.
func WithdrawalImpact(s State, p rates.Params, amount float64) RateImpact {
	return impact(s, s.SimulateWithdrawal(amount), p)
}

// LiquidationImpact reports the rate impact on the debt pool of a
// liquidation repaying the given debt amount.
func LiquidationImpact(s State, p rates.Params, liquidatedDebt float64) RateImpact {
	return impact(s, s.SimulateDebtRepaid(liquidatedDebt), p)
}
