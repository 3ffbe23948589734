// Package montecarlo evolves a leveraged position over stochastic
// utilization and exchange-rate paths, detecting liquidations along the
// way. Paths are mutually independent and run concurrently; each path
// consumes its own seeded random stream and writes only its own result
// slot.
package montecarlo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vaultrisk/rates"
)

// Config is the full parameter bundle for one simulation invocation.
// The seed is explicit: determinism is per-call, never global state.
type Config struct {
	InitialUtilization   float64
	CollateralValue      float64 // numeraire units
	DebtValue            float64 // numeraire units
	LiquidationThreshold float64
	StakingAPY           float64
	SupplyAPY            float64

	Rates rates.Params
	OU    OUParams
	Peg   *PegParams // nil = exchange rate held constant
	// InitialPeg is the starting exchange rate when Peg is set
	// (1.0 = par). Defaults to 1.0 when zero.
	InitialPeg float64

	Paths       int
	HorizonDays int
	Seed        int64
	Workers     int // goroutine limit; defaults to GOMAXPROCS
}

// Validate fails fast on malformed configuration. Boundary states of a
// running market (utilization at 0 or 1) are not errors.
func (c Config) Validate() error {
	if c.Paths <= 0 {
		return fmt.Errorf("montecarlo: paths must be positive, got %d", c.Paths)
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("montecarlo: horizon_days must be positive, got %d", c.HorizonDays)
	}
	if c.InitialUtilization < 0 || c.InitialUtilization > 1 {
		return fmt.Errorf("montecarlo: initial utilization %v outside [0, 1]", c.InitialUtilization)
	}
	if c.CollateralValue < 0 || c.DebtValue < 0 {
		return fmt.Errorf("montecarlo: collateral and debt values must be non-negative")
	}
	if c.LiquidationThreshold <= 0 || c.LiquidationThreshold > 1 {
		return fmt.Errorf("montecarlo: liquidation threshold %v outside (0, 1]", c.LiquidationThreshold)
	}
	if c.OU.Dt <= 0 {
		return fmt.Errorf("montecarlo: ou dt must be positive")
	}
	if c.Peg != nil && c.InitialPeg < 0 {
		return fmt.Errorf("montecarlo: initial peg must be non-negative")
	}
	return c.Rates.Validate()
}

// Path holds one simulated trajectory, all slices of length Steps.
type Path struct {
	Utilization  []float64
	BorrowRate   []float64
	Collateral   []float64
	Debt         []float64
	Equity       []float64
	HealthFactor []float64
	Peg          []float64 // nil when peg dynamics are disabled

	// LiquidatedAt is the first step index with HF < 1, or -1. From
	// that step on collateral, debt, and peg are frozen at their
	// liquidation-time values; equity and HF echo the frozen values.
	LiquidatedAt int
}

// Result aggregates all paths of one run.
type Result struct {
	Paths       []Path
	TerminalPnL []float64 // equity change from step 0 to the horizon
	Liquidated  []bool
	Steps       int // HorizonDays + 1: step 0 is the initial state
}

// LiquidationProb is the fraction of paths that hit liquidation.
func (r *Result) LiquidationProb() float64 {
	if len(r.Liquidated) == 0 {
		return 0.0
	}
	n := 0
	for _, liq := range r.Liquidated {
		if liq {
			n++
		}
	}
	return float64(n) / float64(len(r.Liquidated))
}

// Run executes the simulation. Paths run concurrently up to
// cfg.Workers; cancellation is honored between paths, never mid-path,
// so every completed path is internally consistent.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// A horizon of N days covers N accrual periods: steps 0..N where
	// step 0 is the initial state. Dropping the final day would bias
	// every aggregate low.
	nSteps := cfg.HorizonDays + 1

	res := &Result{
		Paths:       make([]Path, cfg.Paths),
		TerminalPnL: make([]float64, cfg.Paths),
		Liquidated:  make([]bool, cfg.Paths),
		Steps:       nSteps,
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < cfg.Paths; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := simulatePath(cfg, nSteps, cfg.Seed+int64(i))
			res.Paths[i] = p
			res.Liquidated[i] = p.LiquidatedAt >= 0
			res.TerminalPnL[i] = p.Equity[nSteps-1] - p.Equity[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func healthFactor(collateral, debt, threshold float64) float64 {
	if debt <= 0 {
		return math.Inf(1)
	}
	return collateral * threshold / debt
}

// simulatePath runs one trajectory on its own seeded random stream.
func simulatePath(cfg Config, nSteps int, seed int64) Path {
	rng := rand.New(rand.NewSource(seed))

	dt := cfg.OU.Dt
	sqrtDt := math.Sqrt(dt)

	p := Path{
		Utilization:  make([]float64, nSteps),
		BorrowRate:   make([]float64, nSteps),
		Collateral:   make([]float64, nSteps),
		Debt:         make([]float64, nSteps),
		Equity:       make([]float64, nSteps),
		HealthFactor: make([]float64, nSteps),
		LiquidatedAt: -1,
	}

	pegEnabled := cfg.Peg != nil
	initialPeg := cfg.InitialPeg
	if initialPeg == 0 {
		initialPeg = 1.0
	}

	var rho, rhoComp float64
	var collateralAmount float64
	if pegEnabled {
		p.Peg = make([]float64, nSteps)
		p.Peg[0] = initialPeg
		rho = cfg.Peg.UtilCorrelation
		rhoComp = math.Sqrt(math.Max(0, 1-rho*rho))
		// Track the collateral "amount" separately: supply yield grows
		// the amount, the peg path carries the staking drift.
		collateralAmount = cfg.CollateralValue / initialPeg
	}

	p.Utilization[0] = clamp01(cfg.InitialUtilization)
	p.BorrowRate[0] = cfg.Rates.BorrowRate(p.Utilization[0])
	p.Collateral[0] = cfg.CollateralValue
	p.Debt[0] = cfg.DebtValue
	p.Equity[0] = p.Collateral[0] - p.Debt[0]
	p.HealthFactor[0] = healthFactor(p.Collateral[0], p.Debt[0], cfg.LiquidationThreshold)
	if p.HealthFactor[0] < 1.0 {
		p.LiquidatedAt = 0
	}

	for t := 1; t < nSteps; t++ {
		// Utilization keeps evolving even after a liquidation: the
		// pool does not stop because one position died, and drawing
		// every step keeps the stream layout deterministic.
		zUtil := rng.NormFloat64()
		var zPeg float64
		if pegEnabled {
			zPeg = rho*zUtil + rhoComp*rng.NormFloat64()
		}

		u := p.Utilization[t-1] +
			cfg.OU.Kappa*(cfg.OU.Theta-p.Utilization[t-1])*dt +
			cfg.OU.Sigma*sqrtDt*zUtil
		p.Utilization[t] = clamp01(u)
		p.BorrowRate[t] = cfg.Rates.BorrowRate(p.Utilization[t])

		var jumped bool
		if pegEnabled {
			jumped = rng.Float64() < cfg.Peg.JumpIntensity*dt
		}

		if p.LiquidatedAt >= 0 {
			// Frozen at liquidation-time values: no further accrual.
			p.Collateral[t] = p.Collateral[t-1]
			p.Debt[t] = p.Debt[t-1]
			if pegEnabled {
				p.Peg[t] = p.Peg[t-1]
			}
			p.Equity[t] = p.Equity[t-1]
			p.HealthFactor[t] = p.HealthFactor[t-1]
			continue
		}

		// Interest is debt growth, never a subtraction from collateral.
		p.Debt[t] = p.Debt[t-1] * (1.0 + p.BorrowRate[t]*dt)

		if pegEnabled {
			sigma := cfg.Peg.Vol
			logReturn := (cfg.StakingAPY-0.5*sigma*sigma)*dt + sigma*sqrtDt*zPeg
			jumpFactor := 1.0
			if jumped {
				jumpFactor = 1.0 + cfg.Peg.JumpSize
			}
			peg := p.Peg[t-1] * math.Exp(logReturn) * jumpFactor
			if peg < 0.01 {
				peg = 0.01 // numerical floor
			}
			p.Peg[t] = peg

			collateralAmount *= 1.0 + cfg.SupplyAPY*dt
			p.Collateral[t] = collateralAmount * peg
		} else {
			p.Collateral[t] = p.Collateral[t-1] * (1.0 + (cfg.StakingAPY+cfg.SupplyAPY)*dt)
		}

		p.Equity[t] = p.Collateral[t] - p.Debt[t]
		p.HealthFactor[t] = healthFactor(p.Collateral[t], p.Debt[t], cfg.LiquidationThreshold)
		if p.HealthFactor[t] < 1.0 {
			p.LiquidatedAt = t
		}
	}

	return p
}
