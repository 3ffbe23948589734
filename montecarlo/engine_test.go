package montecarlo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultrisk/rates"
)

var wethRates = rates.Params{
	OptimalUtilization: 0.92,
	BaseRate:           0.0,
	Slope1:             0.027,
	Slope2:             0.40,
	ReserveFactor:      0.15,
}

func baseConfig() Config {
	return Config{
		InitialUtilization:   0.78,
		CollateralValue:      14_160,
		DebtValue:            10_500,
		LiquidationThreshold: 0.955,
		StakingAPY:           0.035,
		SupplyAPY:            0.001,
		Rates:                wethRates,
		OU:                   DefaultOU(0.78),
		Paths:                200,
		HorizonDays:          365,
		Seed:                 42,
	}
}

func TestRun_StepCountCoversFullHorizon(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// 365-day horizon: steps 0..365 inclusive, so 365 accrual periods.
	assert.Equal(t, 366, res.Steps)
	require.Len(t, res.Paths, cfg.Paths)
	for _, p := range res.Paths[:5] {
		assert.Len(t, p.Utilization, 366)
		assert.Len(t, p.Debt, 366)
	}
}

func TestRun_DeterministicPerSeed(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 20
	cfg.HorizonDays = 60

	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// Same seed: identical results regardless of scheduling, because
	// path i always consumes stream seed+i.
	for i := range a.Paths {
		assert.Equal(t, a.Paths[i].Utilization, b.Paths[i].Utilization, "path %d", i)
		assert.Equal(t, a.TerminalPnL[i], b.TerminalPnL[i], "path %d", i)
	}

	cfg.Seed = 43
	c, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.TerminalPnL, c.TerminalPnL)
}

func TestRun_UtilizationStaysInRange(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 50
	cfg.HorizonDays = 120
	cfg.OU.Sigma = 0.5 // violent shocks to force clamping

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, p := range res.Paths {
		for _, u := range p.Utilization {
			assert.GreaterOrEqual(t, u, 0.0)
			assert.LessOrEqual(t, u, 1.0)
		}
	}
}

func TestRun_DebtGrowsCollateralAccrues(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 5
	cfg.HorizonDays = 30

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, p := range res.Paths {
		require.Equal(t, -1, p.LiquidatedAt)
		for t_ := 1; t_ < res.Steps; t_++ {
			assert.GreaterOrEqual(t, p.Debt[t_], p.Debt[t_-1], "debt accrues")
			assert.Greater(t, p.Collateral[t_], p.Collateral[t_-1], "collateral accrues")
		}
	}
}

func TestRun_FreezeAfterLiquidation(t *testing.T) {
	t.Parallel()

	// Near-underwater position with a crushing borrow rate so every
	// path liquidates early.
	cfg := baseConfig()
	cfg.Paths = 10
	cfg.HorizonDays = 90
	cfg.CollateralValue = 11_000
	cfg.DebtValue = 10_500
	cfg.StakingAPY = 0
	cfg.SupplyAPY = 0
	cfg.Rates.BaseRate = 1.5 // 150% APR

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for i, p := range res.Paths {
		k := p.LiquidatedAt
		require.GreaterOrEqual(t, k, 0, "path %d should liquidate", i)
		assert.True(t, res.Liquidated[i])
		assert.Less(t, p.HealthFactor[k], 1.0)

		for t_ := k + 1; t_ < res.Steps; t_++ {
			assert.Equal(t, p.Collateral[k], p.Collateral[t_])
			assert.Equal(t, p.Debt[k], p.Debt[t_])
			assert.Equal(t, p.Equity[k], p.Equity[t_])
			assert.Equal(t, p.HealthFactor[k], p.HealthFactor[t_])
		}
	}
}

func TestRun_InitialStepAlreadyUnderwater(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 3
	cfg.HorizonDays = 10
	cfg.CollateralValue = 10_000
	cfg.DebtValue = 10_500 // HF < 1 at step 0

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, p := range res.Paths {
		assert.Equal(t, 0, p.LiquidatedAt)
		// Nothing accrues on a dead-on-arrival position.
		assert.Equal(t, p.Debt[0], p.Debt[res.Steps-1])
		assert.Equal(t, 0.0, res.TerminalPnL[0])
	}
}

func TestRun_PegDynamics(t *testing.T) {
	t.Parallel()

	peg := DefaultPegParams()
	cfg := baseConfig()
	cfg.Paths = 50
	cfg.HorizonDays = 180
	cfg.Peg = &peg
	cfg.InitialPeg = 1.0

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	sawMovement := false
	for _, p := range res.Paths {
		require.NotNil(t, p.Peg)
		assert.Equal(t, 1.0, p.Peg[0])
		for _, v := range p.Peg {
			assert.GreaterOrEqual(t, v, 0.01) // numerical floor
		}
		if p.Peg[res.Steps-1] != 1.0 {
			sawMovement = true
		}
	}
	assert.True(t, sawMovement, "peg paths should move")
}

func TestRun_FixedPegHasNoPegPath(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 2
	cfg.HorizonDays = 5

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, res.Paths[0].Peg)
}

func TestRun_LiquidationProb(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Paths = 40
	cfg.HorizonDays = 30

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	// Healthy position over a short horizon should not liquidate.
	assert.Equal(t, 0.0, res.LiquidationProb())
}

func TestRun_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := baseConfig()
	cfg.Paths = 10_000
	_, err := Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero paths", func(c *Config) { c.Paths = 0 }},
		{"negative horizon", func(c *Config) { c.HorizonDays = -1 }},
		{"utilization above one", func(c *Config) { c.InitialUtilization = 1.5 }},
		{"negative collateral", func(c *Config) { c.CollateralValue = -1 }},
		{"zero threshold", func(c *Config) { c.LiquidationThreshold = 0 }},
		{"zero dt", func(c *Config) { c.OU.Dt = 0 }},
		{"bad rates", func(c *Config) { c.Rates.OptimalUtilization = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, baseConfig().Validate())
}

func TestCalibratePegParams(t *testing.T) {
	t.Parallel()

	// Too few observations: defaults.
	few := CalibratePegParams([]float64{1.0, 0.99, 1.0}, 30)
	assert.Equal(t, DefaultPegParams(), few)

	// Flat series with one large negative jump.
	pegs := make([]float64, 120)
	for i := range pegs {
		pegs[i] = 1.0 + 0.001*math.Sin(float64(i))
	}
	pegs[60] = 0.90

	cal := CalibratePegParams(pegs, 30)
	assert.Greater(t, cal.JumpIntensity, 0.01)
	assert.LessOrEqual(t, cal.JumpSize, -0.001)
	assert.GreaterOrEqual(t, cal.Vol, 0.005)
}
