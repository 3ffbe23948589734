package stress

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"vaultrisk/position"
	"vaultrisk/rates"
)

// ShockResult is the deterministic impact of one scenario on a position.
type ShockResult struct {
	HFBefore         float64
	HFAfter          float64
	CollateralBefore float64
	CollateralAfter  float64
	DebtBefore       float64
	DebtAfter        float64
	PnLImpact        float64 // equity change under the scenario
	Liquidated       bool
}

// Apply stresses a position with a scenario:
//
//   - collateral value scales by the exchange-rate shock only (the
//     ETH/USD-style factor cancels when both legs share a numeraire),
//     then accrues staking/supply income on the post-shock base;
//   - debt grows by the stressed borrow rate over the duration.
func Apply(sc Scenario, pos position.Position, rp rates.Params, liquidationThreshold float64) ShockResult {
	frac := float64(sc.DurationDays) / 365.0

	collateralBefore := pos.CollateralValue()
	debtBefore := pos.DebtValue()

	shocked := collateralBefore * sc.ExchangeRateShock
	// Income tracks the stressed base: accruing on the pre-shock base
	// would overstate carry after a negative shock.
	collateralAfter := shocked * (1.0 + (pos.StakingAPY+pos.SupplyAPY)*frac)

	stressedRate := rp.BorrowRate(sc.UtilizationShock)
	debtAfter := debtBefore * (1.0 + stressedRate*frac)

	return ShockResult{
		HFBefore:         hf(collateralBefore, debtBefore, liquidationThreshold),
		HFAfter:          hf(collateralAfter, debtAfter, liquidationThreshold),
		CollateralBefore: collateralBefore,
		CollateralAfter:  collateralAfter,
		DebtBefore:       debtBefore,
		DebtAfter:        debtAfter,
		PnLImpact:        (collateralAfter - collateralBefore) - (debtAfter - debtBefore),
		Liquidated:       hf(collateralAfter, debtAfter, liquidationThreshold) < 1.0,
	}
}

func hf(collateral, debt, threshold float64) float64 {
	if debt <= 0 {
		return math.Inf(1)
	}
	return collateral * threshold / debt
}

// Draw is one correlated shock vector. NumeraireChange is carried for
// reporting; it never enters health-factor arithmetic.
type Draw struct {
	NumeraireChange float64
	ExchangeRate    float64 // absolute level, clamped to [0.01, 1]
	Utilization     float64 // absolute level, clamped to [0, 1]
}

// DefaultCorrelation is the default factor correlation, ordered
// [numeraire change, exchange-rate change, utilization change].
func DefaultCorrelation() *mat.SymDense {
	return mat.NewSymDense(3, []float64{
		1.0, 0.6, -0.5,
		0.6, 1.0, -0.3,
		-0.5, -0.3, 1.0,
	})
}

// GeneratorConfig parameterizes correlated scenario generation.
// Scenarios are centered on the caller-supplied current baseline, never
// on a hardcoded constant.
type GeneratorConfig struct {
	Scenarios       int
	BasePeg         float64 // current exchange rate to center on
	BaseUtilization float64 // current debt-pool utilization to center on

	NumeraireVol float64
	PegVol       float64
	UtilVol      float64

	Corr *mat.SymDense // nil = DefaultCorrelation

	// InertNumeraire severs the numeraire factor entirely: its
	// correlations are zeroed so it cannot widen the exchange-rate or
	// utilization distributions. When false the factor still shapes
	// the joint draws through correlation but never enters health
	// factor arithmetic either way. Source revisions disagree on the
	// intended behavior, so it is an explicit, tested switch.
	InertNumeraire bool

	Seed int64
}

// Validate fails fast on malformed generator configuration.
func (c GeneratorConfig) Validate() error {
	if c.Scenarios <= 0 {
		return fmt.Errorf("stress: scenarios must be positive, got %d", c.Scenarios)
	}
	if c.BasePeg <= 0 {
		return fmt.Errorf("stress: base peg must be positive")
	}
	if c.BaseUtilization < 0 || c.BaseUtilization > 1 {
		return fmt.Errorf("stress: base utilization %v outside [0, 1]", c.BaseUtilization)
	}
	if c.NumeraireVol < 0 || c.PegVol < 0 || c.UtilVol < 0 {
		return fmt.Errorf("stress: volatilities must be non-negative")
	}
	return nil
}

// GenerateScenarios draws jointly-shocked factor vectors via a Cholesky
// decomposition of the factor covariance. The seed is explicit.
func GenerateScenarios(cfg GeneratorConfig) ([]Draw, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	corr := cfg.Corr
	if corr == nil {
		corr = DefaultCorrelation()
	}
	if corr.SymmetricDim() != 3 {
		return nil, fmt.Errorf("stress: correlation matrix must be 3x3, got %d", corr.SymmetricDim())
	}

	work := mat.NewSymDense(3, nil)
	work.CopySym(corr)
	if cfg.InertNumeraire {
		work.SetSym(0, 1, 0)
		work.SetSym(0, 2, 0)
	}

	// Covariance = correlation scaled by the factor volatilities.
	vols := []float64{cfg.NumeraireVol, cfg.PegVol, cfg.UtilVol}
	cov := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			cov.SetSym(i, j, work.At(i, j)*vols[i]*vols[j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("stress: factor covariance is not positive definite")
	}
	var l mat.TriDense
	chol.LTo(&l)

	rng := rand.New(rand.NewSource(cfg.Seed))
	draws := make([]Draw, cfg.Scenarios)
	for s := range draws {
		z0 := rng.NormFloat64()
		z1 := rng.NormFloat64()
		z2 := rng.NormFloat64()

		x0 := l.At(0, 0) * z0
		x1 := l.At(1, 0)*z0 + l.At(1, 1)*z1
		x2 := l.At(2, 0)*z0 + l.At(2, 1)*z1 + l.At(2, 2)*z2

		draws[s] = Draw{
			NumeraireChange: x0,
			ExchangeRate:    clamp(cfg.BasePeg+x1, 0.01, 1.0),
			Utilization:     clamp(cfg.BaseUtilization+x2, 0.0, 1.0),
		}
	}
	return draws, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// CorrelatedRunConfig bundles everything for a correlated stress run.
type CorrelatedRunConfig struct {
	Generator            GeneratorConfig
	DurationDays         int
	Position             position.Position
	Rates                rates.Params
	LiquidationThreshold float64
}

// CorrelatedResult carries per-scenario stressed values plus the
// aggregate risk metrics.
type CorrelatedResult struct {
	Draws              []Draw
	PnL                []float64
	StressedCollateral []float64
	StressedDebt       []float64
	VaR                VaRResult
}

// RunCorrelated generates correlated scenarios, applies each to the
// position, and aggregates VaR/CVaR and the HF-based liquidation
// probability from the per-scenario stressed collateral/debt values.
func RunCorrelated(cfg CorrelatedRunConfig) (*CorrelatedResult, error) {
	if cfg.DurationDays <= 0 {
		return nil, fmt.Errorf("stress: duration_days must be positive, got %d", cfg.DurationDays)
	}
	if cfg.LiquidationThreshold <= 0 || cfg.LiquidationThreshold > 1 {
		return nil, fmt.Errorf("stress: liquidation threshold %v outside (0, 1]", cfg.LiquidationThreshold)
	}
	if err := cfg.Position.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}

	draws, err := GenerateScenarios(cfg.Generator)
	if err != nil {
		return nil, err
	}

	res := &CorrelatedResult{
		Draws:              draws,
		PnL:                make([]float64, len(draws)),
		StressedCollateral: make([]float64, len(draws)),
		StressedDebt:       make([]float64, len(draws)),
	}

	basePeg := cfg.Generator.BasePeg
	for i, d := range draws {
		sc := Scenario{
			Name:              fmt.Sprintf("correlated-%d", i),
			ETHPriceChange:    d.NumeraireChange,
			ExchangeRateShock: d.ExchangeRate / basePeg,
			UtilizationShock:  d.Utilization,
			DurationDays:      cfg.DurationDays,
		}
		shock := Apply(sc, cfg.Position, cfg.Rates, cfg.LiquidationThreshold)
		res.PnL[i] = shock.PnLImpact
		res.StressedCollateral[i] = shock.CollateralAfter
		res.StressedDebt[i] = shock.DebtAfter
	}

	v, err := ComputeVaRFromScenarios(res.PnL, res.StressedCollateral, res.StressedDebt, cfg.LiquidationThreshold)
	if err != nil {
		return nil, err
	}
	res.VaR = v
	return res, nil
}
