package cascade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultrisk/pool"
	"vaultrisk/rates"
)

var wethRates = rates.Params{
	OptimalUtilization: 0.92,
	BaseRate:           0.0,
	Slope1:             0.027,
	Slope2:             0.40,
	ReserveFactor:      0.15,
}

func pools() (pool.State, pool.State) {
	debtPool := pool.State{TotalSupply: 2_800_000, TotalDebt: 2_200_000}
	collateralPool := pool.State{TotalSupply: 2_400_000, TotalDebt: 50_000}
	return debtPool, collateralPool
}

func TestSimulate_SeizureFormula(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(10_000)
	cfg.MaxSteps = 1

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)

	// seized = D * (1 + b) / p with debt_price = 1
	step := res.Steps[0]
	assert.InDelta(t, 10_000*1.01/1.18, step.CollateralSeized, 1e-9)
	assert.InDelta(t, step.CollateralSeized, res.TotalCollateralSeized, 1e-9)
}

func TestSimulate_PoolSidesAreIndependent(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(50_000)
	cfg.MaxSteps = 3

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Steps)

	last := res.Steps[len(res.Steps)-1]

	// Debt pool: repayment reduced debt, supply untouched.
	assert.Equal(t, debtPool.TotalSupply, last.DebtPool.TotalSupply)
	assert.InDelta(t, debtPool.TotalDebt-res.TotalDebtLiquidated, last.DebtPool.TotalDebt, 1e-6)

	// Collateral pool: seizure reduced supply, its own debt untouched.
	assert.Equal(t, collateralPool.TotalDebt, last.CollateralPool.TotalDebt)
	assert.InDelta(t, collateralPool.TotalSupply-res.TotalCollateralSeized, last.CollateralPool.TotalSupply, 1e-6)

	// Inputs were never mutated.
	assert.InDelta(t, 2_200_000, debtPool.TotalDebt, 1e-9)
	assert.InDelta(t, 2_400_000, collateralPool.TotalSupply, 1e-9)
}

func TestSimulate_UtilizationDropsAsDebtRepaid(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(100_000)
	cfg.DepegSensitivity = 8.0 // keep the cascade going a few rounds

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Steps)

	prev := debtPool.Utilization()
	for _, s := range res.Steps {
		assert.Less(t, s.Utilization, prev)
		prev = s.Utilization
	}
	assert.Equal(t, res.Steps[len(res.Steps)-1].Utilization, res.FinalUtilization)
}

func TestSimulate_PriceNeverBelowFloor(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(2_000_000) // absurdly large seizure
	cfg.PriceImpactPerUnit = 0.01
	cfg.DepegSensitivity = 50.0
	cfg.MaxSteps = 100

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)

	for _, s := range res.Steps {
		assert.GreaterOrEqual(t, s.CollateralPrice, cfg.PriceFloor)
		assert.Greater(t, s.CollateralPrice, 0.0)
	}
	assert.GreaterOrEqual(t, res.FinalCollateralPrice, cfg.PriceFloor)
	// A floored price terminates the cascade.
	assert.True(t, res.Steps[len(res.Steps)-1].Terminated)
}

func TestSimulate_AtRiskDebtUsesFractionalDrop(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(10_000)
	cfg.MaxSteps = 1

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)

	step := res.Steps[0]
	drop := step.CollateralSeized * cfg.PriceImpactPerUnit
	want := step.DebtPool.TotalDebt * cfg.DepegSensitivity * drop
	assert.InDelta(t, want, step.AtRiskDebt, 1e-6)

	// The drop is a fraction, so at-risk debt stays far below the
	// hundredfold figure a percentage-point rescale would produce.
	assert.Less(t, step.AtRiskDebt, step.DebtPool.TotalDebt)
}

func TestSimulate_TerminatesBelowThreshold(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()

	// Initial debt below the threshold: nothing happens.
	cfg := DefaultConfig(50)
	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Steps)
	assert.Equal(t, 0.0, res.TotalDebtLiquidated)
	assert.Equal(t, debtPool.Utilization(), res.FinalUtilization)
}

func TestSimulate_RepayCappedAtOutstandingDebt(t *testing.T) {
	t.Parallel()

	debtPool := pool.State{TotalSupply: 100_000, TotalDebt: 20_000}
	collateralPool := pool.State{TotalSupply: 500_000}
	cfg := DefaultConfig(1_000_000)
	cfg.MaxSteps = 1

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.InDelta(t, 20_000, res.Steps[0].DebtLiquidated, 1e-9)
	assert.Equal(t, 0.0, res.Steps[0].DebtPool.TotalDebt)
}

func TestSimulate_MaxStepsBound(t *testing.T) {
	t.Parallel()

	debtPool, collateralPool := pools()
	cfg := DefaultConfig(200_000)
	cfg.DepegSensitivity = 100.0 // self-sustaining cascade
	cfg.MaxSteps = 4

	res, err := Simulate(context.Background(), debtPool, collateralPool, wethRates, cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Steps), 4)
	assert.True(t, res.Steps[len(res.Steps)-1].Terminated)
}

func TestSimulate_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	debtPool, collateralPool := pools()
	_, err := Simulate(ctx, debtPool, collateralPool, wethRates, DefaultConfig(10_000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative debt", func(c *Config) { c.InitialDebtToLiquidate = -1 }},
		{"zero price", func(c *Config) { c.CollateralPrice = 0 }},
		{"negative bonus", func(c *Config) { c.LiquidationBonus = -0.01 }},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }},
		{"zero floor", func(c *Config) { c.PriceFloor = 0 }},
		{"floor above price", func(c *Config) { c.PriceFloor = 2.0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig(10_000)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig(10_000).Validate())
}
