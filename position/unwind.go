package position

// Unwind cost estimation for closing the position: withdraw collateral,
// swap it back to the debt asset on a constant-product AMM, repay debt.
// The constant-product model overestimates impact for stableswap venues,
// which makes it a conservative bound.

// AMMPool parameterizes a constant-product (x*y = k) pool used to price
// the collateral-to-numeraire swap.
type AMMPool struct {
	ReserveX float64 // collateral-side reserve
	ReserveY float64 // numeraire-side reserve
	FeeBps   float64 // swap fee in basis points
}

// PriceImpact returns the fractional shortfall vs the spot price when
// selling tradeSize of X into the pool.
func (a AMMPool) PriceImpact(tradeSize float64) float64 {
	if tradeSize <= 0 || a.ReserveX <= 0 || a.ReserveY <= 0 {
		return 0.0
	}

	dxAfterFee := tradeSize * (1.0 - a.FeeBps/10_000)

	k := a.ReserveX * a.ReserveY
	newReserveX := a.ReserveX + dxAfterFee
	dy := a.ReserveY - k/newReserveX

	spot := a.ReserveY / a.ReserveX
	expected := tradeSize * spot
	if expected <= 0 {
		return 0.0
	}

	impact := 1.0 - dy/expected
	if impact < 0 {
		return 0.0
	}
	return impact
}

// GasCost estimates the transaction cost in numeraire units for a full
// unwind (flash loan, repay, withdraw, swap, repay flash loan), which
// typically runs 400-600k gas.
func GasCost(gasPriceGwei float64, gasUnits int) float64 {
	return float64(gasUnits) * gasPriceGwei * 1e-9
}

// UnwindCost is the detailed cost breakdown for closing the position.
type UnwindCost struct {
	SlippageCost         float64
	PriceImpact          float64
	GasCost              float64
	TotalCost            float64
	EffectiveSlippageBps float64
}

// EstimateUnwindCost prices a full unwind of debtAmount. When pool is
// non-nil the swap leg uses the constant-product impact model, otherwise
// a linear slippageBps fallback.
func EstimateUnwindCost(debtAmount float64, pool *AMMPool, gasPriceGwei, slippageBps float64) UnwindCost {
	gas := GasCost(gasPriceGwei, 500_000)

	var impact float64
	if pool != nil {
		// Need ~debtAmount of numeraire out, so sell ~debtAmount in.
		impact = pool.PriceImpact(debtAmount)
	} else {
		impact = slippageBps / 10_000
	}

	slippage := debtAmount * impact
	return UnwindCost{
		SlippageCost:         slippage,
		PriceImpact:          impact,
		GasCost:              gas,
		TotalCost:            slippage + gas,
		EffectiveSlippageBps: impact * 10_000,
	}
}
