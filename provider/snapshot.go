package provider

import (
	"fmt"

	"vaultrisk/liquidation"
	"vaultrisk/pool"
	"vaultrisk/position"
	"vaultrisk/rates"
)

// Overrides are what-if inputs injected when a Snapshot is captured.
// A nil field keeps the provider's value. Utilization rewrites the
// debt reserve's outstanding debt to hit the target exactly.
type Overrides struct {
	CollateralPrice *float64
	Peg             *float64
	Utilization     *float64
}

// Snapshot is an immutable capture of everything the engines need for
// one run. Engines read the snapshot only; they never call back into
// the live provider mid-simulation.
type Snapshot struct {
	CollateralAsset string
	DebtAsset       string

	CollateralRates rates.Params
	DebtRates       rates.Params
	CollateralPool  pool.State
	DebtPool        pool.State

	// Liquidation carries the effective parameters, with the e-mode
	// override already applied when one was requested.
	Liquidation liquidation.Model
	EModeID     int

	CollateralPrice float64
	DebtPrice       float64
	Peg             float64
	StakingAPY      float64
}

// Capture reads every engine input from the provider once, applying
// overrides at capture time. Pass emodeID 0 for no e-mode.
func Capture(p Provider, collateralAsset, debtAsset string, emodeID int, ov Overrides) (*Snapshot, error) {
	snap := &Snapshot{
		CollateralAsset: collateralAsset,
		DebtAsset:       debtAsset,
		EModeID:         emodeID,
	}

	var err error
	if snap.CollateralRates, err = p.ReserveParams(collateralAsset); err != nil {
		return nil, err
	}
	if snap.DebtRates, err = p.ReserveParams(debtAsset); err != nil {
		return nil, err
	}
	if snap.CollateralPool, err = p.ReserveState(collateralAsset); err != nil {
		return nil, err
	}
	if snap.DebtPool, err = p.ReserveState(debtAsset); err != nil {
		return nil, err
	}

	lp, err := p.LiquidationParams(collateralAsset)
	if err != nil {
		return nil, err
	}
	var emode *liquidation.EModeCategory
	if emodeID != 0 {
		cat, err := p.EModeCategory(emodeID)
		if err != nil {
			return nil, err
		}
		emode = &cat
	}
	snap.Liquidation = liquidation.NewModel(lp, emode)

	if snap.CollateralPrice, err = p.AssetPrice(collateralAsset); err != nil {
		return nil, err
	}
	if snap.DebtPrice, err = p.AssetPrice(debtAsset); err != nil {
		return nil, err
	}
	if snap.Peg, err = p.ExchangeRatePeg(); err != nil {
		return nil, err
	}
	if snap.StakingAPY, err = p.StakingAPY(); err != nil {
		return nil, err
	}

	if ov.CollateralPrice != nil {
		if *ov.CollateralPrice <= 0 {
			return nil, fmt.Errorf("provider: collateral price override %v must be positive", *ov.CollateralPrice)
		}
		snap.CollateralPrice = *ov.CollateralPrice
	}
	if ov.Peg != nil {
		if *ov.Peg <= 0 || *ov.Peg > 1.5 {
			return nil, fmt.Errorf("provider: peg override %v outside (0, 1.5]", *ov.Peg)
		}
		snap.Peg = *ov.Peg
	}
	if ov.Utilization != nil {
		u := *ov.Utilization
		if u < 0 || u > 1 {
			return nil, fmt.Errorf("provider: utilization override %v outside [0, 1]", u)
		}
		snap.DebtPool.TotalDebt = u * snap.DebtPool.TotalSupply
	}

	return snap, nil
}

// BorrowAPY is the current borrow rate on the debt reserve.
func (s *Snapshot) BorrowAPY() float64 {
	return s.DebtRates.BorrowRate(s.DebtPool.Utilization())
}

// SupplyAPY is the current supply rate on the collateral reserve.
func (s *Snapshot) SupplyAPY() float64 {
	return s.CollateralRates.SupplyRate(s.CollateralPool.Utilization())
}

// Position builds a position over the snapshot's prices and yields.
func (s *Snapshot) Position(collateralAmount, debtAmount float64) position.Position {
	return position.Position{
		CollateralAmount: collateralAmount,
		DebtAmount:       debtAmount,
		CollateralPrice:  s.CollateralPrice,
		DebtPrice:        s.DebtPrice,
		StakingAPY:       s.StakingAPY,
		SupplyAPY:        s.SupplyAPY(),
		BorrowAPY:        s.BorrowAPY(),
	}
}
