package position

import "math"

const daysPerYear = 365.0

// PeriodPnL is the carry P&L over durationDays in the numeraire:
// income on the collateral legs minus interest on the debt leg.
// It is evaluated whether or not equity is positive: an underwater
// position keeps accruing losses rather than flat-lining at zero.
func (p Position) PeriodPnL(durationDays float64) float64 {
	frac := durationDays / daysPerYear
	income := p.CollateralValue() * (p.StakingAPY + p.SupplyAPY) * frac
	cost := p.DebtValue() * p.BorrowAPY * frac
	return income - cost
}

// DailyPnL estimates one day of carry.
func (p Position) DailyPnL() float64 {
	return p.PeriodPnL(1)
}

// APYBreakdown separates the position's annualized return components.
type APYBreakdown struct {
	SupplyAPY  float64
	BorrowAPY  float64
	StakingAPY float64
	NetAPY     float64 // combined APY on equity; -Inf when equity <= 0
}

// APYBreakdown reports the income and cost components and the net APY
// earned on equity.
func (p Position) APYBreakdown() APYBreakdown {
	equity := p.Equity()

	netAPY := math.Inf(-1)
	if equity > 0 {
		income := p.CollateralValue() * (p.StakingAPY + p.SupplyAPY)
		cost := p.DebtValue() * p.BorrowAPY
		netAPY = (income - cost) / equity
	}

	return APYBreakdown{
		SupplyAPY:  p.SupplyAPY,
		BorrowAPY:  p.BorrowAPY,
		StakingAPY: p.StakingAPY,
		NetAPY:     netAPY,
	}
}

// PnLDecomposition breaks daily carry into its sources and reports the
// basis spread and break-even exchange-rate drop.
type PnLDecomposition struct {
	StakingIncomeDaily float64
	SupplyIncomeDaily  float64
	BorrowCostDaily    float64
	NetCarryDaily      float64
	BasisSpread        float64 // staking APY minus borrow APY
	BreakEvenPegDrop   float64 // annual exchange-rate drop absorbed by carry
}

// PnLDecomposition computes the detailed carry breakdown.
func (p Position) PnLDecomposition() PnLDecomposition {
	collateralValue := p.CollateralValue()
	debtValue := p.DebtValue()

	stakingIncome := collateralValue * p.StakingAPY / daysPerYear
	supplyIncome := collateralValue * p.SupplyAPY / daysPerYear
	borrowCost := debtValue * p.BorrowAPY / daysPerYear
	netCarry := stakingIncome + supplyIncome - borrowCost

	// Annual net carry as a fraction of collateral: the exchange rate
	// can drop by this much per year before carry turns negative.
	breakEven := 0.0
	if collateralValue > 0 {
		breakEven = netCarry * daysPerYear / collateralValue
	}
	if breakEven < 0 {
		breakEven = 0.0
	}

	return PnLDecomposition{
		StakingIncomeDaily: stakingIncome,
		SupplyIncomeDaily:  supplyIncome,
		BorrowCostDaily:    borrowCost,
		NetCarryDaily:      netCarry,
		BasisSpread:        p.StakingAPY - p.BorrowAPY,
		BreakEvenPegDrop:   breakEven,
	}
}
