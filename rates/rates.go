// Package rates implements the kinked (piecewise linear) interest rate
// curve used by the lending pool: a gentle slope below the optimal
// utilization kink and a steep slope above it.
package rates

import "fmt"

// Params describes one reserve's rate curve.
type Params struct {
	OptimalUtilization float64 // kink point, in (0, 1)
	BaseRate           float64
	Slope1             float64
	Slope2             float64
	ReserveFactor      float64 // fraction of borrow interest kept by the protocol, in [0, 1]
}

// Validate rejects malformed curve parameters. Arithmetic edge cases
// (utilization excursions) are clamped at call sites, not rejected here.
func (p Params) Validate() error {
	if p.OptimalUtilization <= 0 || p.OptimalUtilization >= 1 {
		return fmt.Errorf("rates: optimal_utilization %v outside (0, 1)", p.OptimalUtilization)
	}
	if p.BaseRate < 0 || p.Slope1 < 0 || p.Slope2 < 0 {
		return fmt.Errorf("rates: base rate and slopes must be non-negative")
	}
	if p.ReserveFactor < 0 || p.ReserveFactor > 1 {
		return fmt.Errorf("rates: reserve_factor %v outside [0, 1]", p.ReserveFactor)
	}
	return nil
}

func clamp01(u float64) float64 {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

// BorrowRate returns the annual variable borrow rate for a utilization.
// Utilization is clamped to [0, 1] before the curve lookup.
func (p Params) BorrowRate(utilization float64) float64 {
	u := clamp01(utilization)
	if u <= 0 {
		return p.BaseRate
	}
	if u <= p.OptimalUtilization {
		return p.BaseRate + (u/p.OptimalUtilization)*p.Slope1
	}
	excess := (u - p.OptimalUtilization) / (1.0 - p.OptimalUtilization)
	return p.BaseRate + p.Slope1 + excess*p.Slope2
}

// SupplyRate returns the annual deposit rate:
//
//	R_supply = R_borrow * U * (1 - reserve_factor)
//
// The utilization is clamped before both the rate lookup and the
// multiplication, so SupplyRate can never exceed BorrowRate.
func (p Params) SupplyRate(utilization float64) float64 {
	u := clamp01(utilization)
	return p.BorrowRate(u) * u * (1.0 - p.ReserveFactor)
}

// CurvePoint is one sample of the rate curve.
type CurvePoint struct {
	Utilization float64
	BorrowRate  float64
	SupplyRate  float64
}

// Curve samples the full rate curve at n evenly spaced utilizations in
// [0, 1]. Useful for tables and charts; n < 2 returns the endpoints.
func (p Params) Curve(n int) []CurvePoint {
	if n < 2 {
		n = 2
	}
	points := make([]CurvePoint, n)
	for i := 0; i < n; i++ {
		u := float64(i) / float64(n-1)
		points[i] = CurvePoint{
			Utilization: u,
			BorrowRate:  p.BorrowRate(u),
			SupplyRate:  p.SupplyRate(u),
		}
	}
	return points
}
