package position

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuation(t *testing.T) {
	t.Parallel()

	p := Default()
	assert.InDelta(t, 14_160, p.CollateralValue(), 1e-9)
	assert.InDelta(t, 10_500, p.DebtValue(), 1e-9)
	assert.InDelta(t, 3_660, p.Equity(), 1e-9)
}

func TestLeverage_UsesCommonNumeraire(t *testing.T) {
	t.Parallel()

	// 12,000 @ 1.18 vs 10,500 debt: leverage ≈ 3.87. Dividing raw
	// amounts (12,000 / 1,500 = 8.0) would be the unit-mismatch bug.
	p := Default()
	assert.InDelta(t, 3.8689, p.Leverage(), 1e-3)
	assert.Greater(t, math.Abs(p.Leverage()-8.0), 1.0)
}

func TestLeverage_NonPositiveEquity(t *testing.T) {
	t.Parallel()

	p := Default()
	p.DebtAmount = 20_000
	assert.True(t, math.IsInf(p.Leverage(), 1))
}

func TestPeriodPnL(t *testing.T) {
	t.Parallel()

	p := Default()
	p.SupplyAPY = 0.001
	p.BorrowAPY = 0.026

	want := 14_160*(0.035+0.001)*30/365.0 - 10_500*0.026*30/365.0
	assert.InDelta(t, want, p.PeriodPnL(30), 1e-9)
	assert.InDelta(t, p.PeriodPnL(1), p.DailyPnL(), 1e-12)
}

func TestPeriodPnL_UnderwaterKeepsAccruing(t *testing.T) {
	t.Parallel()

	// Negative equity, borrow cost dominating: P&L must stay negative,
	// never clamp to zero.
	p := Position{
		CollateralAmount: 1_000,
		DebtAmount:       2_000,
		CollateralPrice:  1.0,
		DebtPrice:        1.0,
		BorrowAPY:        0.10,
	}
	assert.Less(t, p.Equity(), 0.0)
	assert.Less(t, p.PeriodPnL(30), 0.0)
}

func TestAPYBreakdown(t *testing.T) {
	t.Parallel()

	p := Default()
	p.SupplyAPY = 0.001
	p.BorrowAPY = 0.026

	b := p.APYBreakdown()
	wantNet := (14_160*(0.035+0.001) - 10_500*0.026) / 3_660
	assert.InDelta(t, wantNet, b.NetAPY, 1e-9)
	assert.Equal(t, 0.035, b.StakingAPY)

	p.DebtAmount = 20_000
	assert.True(t, math.IsInf(p.APYBreakdown().NetAPY, -1))
}

func TestPnLDecomposition(t *testing.T) {
	t.Parallel()

	p := Default()
	p.SupplyAPY = 0.001
	p.BorrowAPY = 0.026

	d := p.PnLDecomposition()
	assert.InDelta(t, 14_160*0.035/365.0, d.StakingIncomeDaily, 1e-9)
	assert.InDelta(t, 14_160*0.001/365.0, d.SupplyIncomeDaily, 1e-9)
	assert.InDelta(t, 10_500*0.026/365.0, d.BorrowCostDaily, 1e-9)
	assert.InDelta(t, d.StakingIncomeDaily+d.SupplyIncomeDaily-d.BorrowCostDaily, d.NetCarryDaily, 1e-12)
	assert.InDelta(t, 0.035-0.026, d.BasisSpread, 1e-12)

	// Break-even drop is annual net carry over collateral value.
	assert.InDelta(t, d.NetCarryDaily*365.0/14_160, d.BreakEvenPegDrop, 1e-12)
}

func TestPnLDecomposition_NegativeCarryFloorsBreakEven(t *testing.T) {
	t.Parallel()

	p := Default()
	p.BorrowAPY = 0.50 // cost swamps income
	d := p.PnLDecomposition()
	assert.Less(t, d.NetCarryDaily, 0.0)
	assert.Equal(t, 0.0, d.BreakEvenPegDrop)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.CollateralAmount = -1
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.CollateralPrice = -0.5
	assert.Error(t, bad.Validate())
}

func TestAMMPriceImpact(t *testing.T) {
	t.Parallel()

	pool := AMMPool{ReserveX: 50_000, ReserveY: 50_000, FeeBps: 4}

	// Small trades have small impact, large trades larger impact.
	small := pool.PriceImpact(100)
	large := pool.PriceImpact(10_000)
	assert.Greater(t, small, 0.0)
	assert.Greater(t, large, small)
	assert.Less(t, large, 1.0)

	// Selling 10k into 50k reserves moves the pool noticeably.
	assert.Greater(t, large, 0.15)

	assert.Equal(t, 0.0, pool.PriceImpact(0))
	assert.Equal(t, 0.0, pool.PriceImpact(-10))
	assert.Equal(t, 0.0, AMMPool{}.PriceImpact(100))
}

func TestEstimateUnwindCost(t *testing.T) {
	t.Parallel()

	pool := AMMPool{ReserveX: 50_000, ReserveY: 50_000, FeeBps: 4}

	withPool := EstimateUnwindCost(10_500, &pool, 30, 10)
	assert.Greater(t, withPool.SlippageCost, 0.0)
	assert.InDelta(t, withPool.SlippageCost+withPool.GasCost, withPool.TotalCost, 1e-12)
	assert.InDelta(t, withPool.PriceImpact*10_000, withPool.EffectiveSlippageBps, 1e-9)

	// Linear fallback: 10 bps on the debt.
	linear := EstimateUnwindCost(10_500, nil, 30, 10)
	assert.InDelta(t, 10_500*0.001, linear.SlippageCost, 1e-9)
	assert.InDelta(t, 500_000*30*1e-9, linear.GasCost, 1e-15)
}
