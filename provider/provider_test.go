package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_KnownAssets(t *testing.T) {
	t.Parallel()

	p := NewStatic()

	weth, err := p.ReserveParams(WETH)
	require.NoError(t, err)
	assert.Equal(t, 0.92, weth.OptimalUtilization)
	assert.Equal(t, 0.027, weth.Slope1)
	require.NoError(t, weth.Validate())

	wsteth, err := p.ReserveParams(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 0.80, wsteth.OptimalUtilization)
	assert.Equal(t, 0.35, wsteth.ReserveFactor)
	require.NoError(t, wsteth.Validate())

	st, err := p.ReserveState(WETH)
	require.NoError(t, err)
	assert.InDelta(t, 2_200_000.0/2_800_000.0, st.Utilization(), 1e-12)

	lp, err := p.LiquidationParams(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 0.81, lp.LiquidationThreshold)
	require.NoError(t, lp.Validate())

	cat, err := p.EModeCategory(EModeETHCorrelated)
	require.NoError(t, err)
	assert.Equal(t, "ETH correlated", cat.Label)
	assert.Equal(t, 0.955, cat.LiquidationThreshold)

	price, err := p.AssetPrice(WstETH)
	require.NoError(t, err)
	assert.Equal(t, 1.18, price)

	peg, err := p.ExchangeRatePeg()
	require.NoError(t, err)
	assert.Equal(t, 1.0, peg)

	apy, err := p.StakingAPY()
	require.NoError(t, err)
	assert.Equal(t, 0.035, apy)
}

func TestStatic_UnknownLookups(t *testing.T) {
	t.Parallel()

	p := NewStatic()

	_, err := p.ReserveParams("DOGE")
	assert.Error(t, err)
	_, err = p.ReserveState("DOGE")
	assert.Error(t, err)
	_, err = p.LiquidationParams("DOGE")
	assert.Error(t, err)
	_, err = p.AssetPrice("DOGE")
	assert.Error(t, err)
	_, err = p.EModeCategory(42)
	assert.Error(t, err)
}

func TestCapture_Defaults(t *testing.T) {
	t.Parallel()

	snap, err := Capture(NewStatic(), WstETH, WETH, EModeETHCorrelated, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, WstETH, snap.CollateralAsset)
	assert.Equal(t, WETH, snap.DebtAsset)
	assert.Equal(t, 1.18, snap.CollateralPrice)
	assert.Equal(t, 1.0, snap.DebtPrice)
	assert.Equal(t, 1.0, snap.Peg)
	assert.Equal(t, 0.035, snap.StakingAPY)

	// E-mode parameters replace the per-asset ones.
	assert.Equal(t, 0.955, snap.Liquidation.LiquidationThreshold)
	assert.Equal(t, 0.01, snap.Liquidation.LiquidationBonus)

	// Borrow rate comes off the WETH reserve below its kink.
	u := snap.DebtPool.Utilization()
	assert.InDelta(t, snap.DebtRates.BorrowRate(u), snap.BorrowAPY(), 1e-15)
	assert.Greater(t, snap.BorrowAPY(), 0.0)
	assert.Greater(t, snap.SupplyAPY(), 0.0)
	assert.Less(t, snap.SupplyAPY(), snap.BorrowAPY())
}

func TestCapture_NoEMode(t *testing.T) {
	t.Parallel()

	snap, err := Capture(NewStatic(), WstETH, WETH, 0, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.EModeID)
	assert.Equal(t, 0.81, snap.Liquidation.LiquidationThreshold)
	assert.Equal(t, 0.07, snap.Liquidation.LiquidationBonus)
}

func TestCapture_Overrides(t *testing.T) {
	t.Parallel()

	price := 1.05
	peg := 0.97
	util := 0.95
	snap, err := Capture(NewStatic(), WstETH, WETH, EModeETHCorrelated, Overrides{
		CollateralPrice: &price,
		Peg:             &peg,
		Utilization:     &util,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.05, snap.CollateralPrice)
	assert.Equal(t, 0.97, snap.Peg)
	assert.InDelta(t, 0.95, snap.DebtPool.Utilization(), 1e-12)
	// Supply is untouched; the override rewrites outstanding debt.
	assert.Equal(t, 2_800_000.0, snap.DebtPool.TotalSupply)
	assert.InDelta(t, 0.95*2_800_000.0, snap.DebtPool.TotalDebt, 1e-6)
}

func TestCapture_BadOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ov   Overrides
	}{
		{"negative price", Overrides{CollateralPrice: ptr(-1.0)}},
		{"zero peg", Overrides{Peg: ptr(0.0)}},
		{"peg too high", Overrides{Peg: ptr(2.0)}},
		{"utilization above one", Overrides{Utilization: ptr(1.5)}},
		{"negative utilization", Overrides{Utilization: ptr(-0.1)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Capture(NewStatic(), WstETH, WETH, 0, tt.ov)
			assert.Error(t, err)
		})
	}
}

func TestCapture_UnknownAsset(t *testing.T) {
	t.Parallel()

	_, err := Capture(NewStatic(), "DOGE", WETH, 0, Overrides{})
	assert.Error(t, err)
	_, err = Capture(NewStatic(), WstETH, WETH, 42, Overrides{})
	assert.Error(t, err)
}

func TestSnapshot_Position(t *testing.T) {
	t.Parallel()

	snap, err := Capture(NewStatic(), WstETH, WETH, EModeETHCorrelated, Overrides{})
	require.NoError(t, err)

	pos := snap.Position(12_000, 10_500)
	require.NoError(t, pos.Validate())
	assert.Equal(t, 12_000*1.18, pos.CollateralValue())
	assert.Equal(t, 10_500.0, pos.DebtValue())
	assert.Equal(t, snap.BorrowAPY(), pos.BorrowAPY)
	assert.Equal(t, snap.SupplyAPY(), pos.SupplyAPY)
	assert.Equal(t, 0.035, pos.StakingAPY)
}

func ptr(f float64) *float64 { return &f }
