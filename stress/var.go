package stress

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"vaultrisk/montecarlo"
)

// VaRResult holds quantile-based tail risk metrics. All values are in
// the numeraire; losses are negative.
type VaRResult struct {
	VaR95   float64 // 5th percentile P&L
	VaR99   float64 // 1st percentile P&L
	CVaR95  float64 // mean P&L at or below VaR95
	CVaR99  float64 // mean P&L at or below VaR99
	MaxLoss float64 // worst-case P&L

	// LiquidationProb is the fraction of outcomes with
	// (stressed_collateral * threshold) / stressed_debt < 1. It is
	// only meaningful when LiquidationProbComputed is true; a false
	// flag means the inputs for an HF-based check were missing and no
	// proxy was substituted.
	LiquidationProb         float64
	LiquidationProbComputed bool
}

func quantiles(pnl []float64) (var95, var99, cvar95, cvar99, maxLoss float64) {
	sorted := make([]float64, len(pnl))
	copy(sorted, pnl)
	sort.Float64s(sorted)

	var95 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	var99 = stat.Quantile(0.01, stat.Empirical, sorted, nil)
	maxLoss = sorted[0]

	cvar95 = tailMean(sorted, var95)
	cvar99 = tailMean(sorted, var99)
	return
}

// tailMean averages the sorted values at or below the cutoff; with an
// empty tail it degrades to the cutoff itself.
func tailMean(sorted []float64, cutoff float64) float64 {
	i := sort.SearchFloat64s(sorted, cutoff)
	// Include values equal to the cutoff.
	for i < len(sorted) && sorted[i] <= cutoff {
		i++
	}
	if i == 0 {
		return cutoff
	}
	return stat.Mean(sorted[:i], nil)
}

// ComputeVaR aggregates a Monte Carlo run: quantile metrics from the
// terminal P&L distribution, liquidation probability from the per-path
// liquidation flags (which are themselves HF-derived).
func ComputeVaR(res *montecarlo.Result) (VaRResult, error) {
	if res == nil || len(res.TerminalPnL) == 0 {
		return VaRResult{}, fmt.Errorf("stress: monte carlo result has no terminal pnl")
	}

	var95, var99, cvar95, cvar99, maxLoss := quantiles(res.TerminalPnL)
	return VaRResult{
		VaR95:                   var95,
		VaR99:                   var99,
		CVaR95:                  cvar95,
		CVaR99:                  cvar99,
		MaxLoss:                 maxLoss,
		LiquidationProb:         res.LiquidationProb(),
		LiquidationProbComputed: true,
	}, nil
}

// ComputeVaRFromScenarios aggregates per-scenario P&L outcomes. The
// liquidation probability is computed strictly from the per-scenario
// stressed collateral/debt arrays; when either is missing the
// probability is reported as 0.0 with LiquidationProbComputed=false,
// an explicit "not computed", never a statistical proxy on P&L.
func ComputeVaRFromScenarios(pnl, stressedCollateral, stressedDebt []float64, liquidationThreshold float64) (VaRResult, error) {
	if len(pnl) == 0 {
		return VaRResult{}, fmt.Errorf("stress: scenario pnl array is empty")
	}

	var95, var99, cvar95, cvar99, maxLoss := quantiles(pnl)
	res := VaRResult{
		VaR95:   var95,
		VaR99:   var99,
		CVaR95:  cvar95,
		CVaR99:  cvar99,
		MaxLoss: maxLoss,
	}

	if len(stressedCollateral) == 0 || len(stressedDebt) == 0 {
		return res, nil
	}
	if len(stressedCollateral) != len(stressedDebt) {
		return VaRResult{}, fmt.Errorf("stress: stressed collateral and debt arrays differ in length (%d vs %d)",
			len(stressedCollateral), len(stressedDebt))
	}
	if liquidationThreshold <= 0 || liquidationThreshold > 1 {
		return VaRResult{}, fmt.Errorf("stress: liquidation threshold %v outside (0, 1]", liquidationThreshold)
	}

	liquidated := 0
	for i := range stressedCollateral {
		if hf(stressedCollateral[i], stressedDebt[i], liquidationThreshold) < 1.0 {
			liquidated++
		}
	}
	res.LiquidationProb = float64(liquidated) / float64(len(stressedCollateral))
	res.LiquidationProbComputed = true
	return res, nil
}
