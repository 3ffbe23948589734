package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// OUParams drives the Ornstein-Uhlenbeck utilization process.
//
// Theta must be the pool's formula-derived utilization at snapshot
// time, not a stale constant; callers wire it from the live pool state.
type OUParams struct {
	Theta float64 // long-run mean utilization
	Kappa float64 // mean-reversion speed
	Sigma float64 // volatility of utilization shocks
	Dt    float64 // step size in years, typically 1/365
}

// DefaultOU returns standard OU parameters reverting to theta.
func DefaultOU(theta float64) OUParams {
	return OUParams{Theta: theta, Kappa: 5.0, Sigma: 0.08, Dt: 1.0 / 365.0}
}

// PegParams drives the exchange-rate jump-diffusion:
//
//	dS/S = (staking_apy - σ²/2)dt + σ·dW + J·dN
//
// where dW correlates with the utilization shocks via UtilCorrelation
// and dN is a Poisson process with intensity JumpIntensity (slashing
// style events, so JumpSize is normally negative).
type PegParams struct {
	Vol             float64 // annualized diffusion volatility
	JumpIntensity   float64 // expected jumps per year
	JumpSize        float64 // mean fractional jump, negative for slashing
	UtilCorrelation float64 // correlation with utilization shocks
}

// DefaultPegParams returns conservative exchange-rate dynamics.
func DefaultPegParams() PegParams {
	return PegParams{
		Vol:             0.03,
		JumpIntensity:   0.1,
		JumpSize:        -0.05,
		UtilCorrelation: -0.5,
	}
}

// CalibratePegParams fits PegParams to a chronological series of daily
// exchange-rate observations. Jumps are log returns beyond three daily
// standard deviations; the diffusion volatility excludes them. With
// fewer than minObservations points the defaults are returned.
func CalibratePegParams(dailyPegs []float64, minObservations int) PegParams {
	if minObservations <= 0 {
		minObservations = 30
	}
	if len(dailyPegs) < minObservations {
		return DefaultPegParams()
	}

	logReturns := make([]float64, 0, len(dailyPegs)-1)
	for i := 1; i < len(dailyPegs); i++ {
		if dailyPegs[i-1] <= 0 || dailyPegs[i] <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(dailyPegs[i]/dailyPegs[i-1]))
	}
	if len(logReturns) < 2 {
		return DefaultPegParams()
	}

	dailyVol := stat.StdDev(logReturns, nil)
	annualVol := dailyVol * math.Sqrt(365)

	threshold := 3.0 * dailyVol
	var jumps, diffusion []float64
	for _, r := range logReturns {
		if math.Abs(r) > threshold {
			jumps = append(jumps, r)
		} else {
			diffusion = append(diffusion, r)
		}
	}

	jumpIntensity := float64(len(jumps)) / float64(len(logReturns)) * 365
	if jumpIntensity < 0.01 {
		jumpIntensity = 0.01
	}

	jumpSize := -0.05
	if len(jumps) > 0 {
		jumpSize = stat.Mean(jumps, nil)
	}
	if jumpSize > -0.001 {
		jumpSize = -0.001 // slashing jumps are always adverse
	}

	diffusionVol := annualVol
	if len(diffusion) > 1 {
		diffusionVol = stat.StdDev(diffusion, nil) * math.Sqrt(365)
	}
	if diffusionVol < 0.005 {
		diffusionVol = 0.005
	}

	return PegParams{
		Vol:             diffusionVol,
		JumpIntensity:   jumpIntensity,
		JumpSize:        jumpSize,
		UtilCorrelation: -0.5, // calibrating this needs joint utilization data
	}
}
