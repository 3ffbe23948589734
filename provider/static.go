package provider

import (
	"fmt"

	"vaultrisk/liquidation"
	"vaultrisk/pool"
	"vaultrisk/rates"
)

// Static serves hardcoded Aave V3 mainnet governance parameters and a
// representative pool snapshot. It backs every run that does not pull
// live chain data.
type Static struct {
	reserveParams     map[string]rates.Params
	reserveStates     map[string]pool.State
	liquidationParams map[string]liquidation.Params
	emodeCategories   map[int]liquidation.EModeCategory
	assetPrices       map[string]float64
	peg               float64
	stakingAPY        float64
}

// NewStatic builds the default static provider.
func NewStatic() *Static {
	return &Static{
		reserveParams: map[string]rates.Params{
			WETH: {
				OptimalUtilization: 0.92,
				BaseRate:           0.0,
				Slope1:             0.027,
				Slope2:             0.40,
				ReserveFactor:      0.15,
			},
			WstETH: {
				OptimalUtilization: 0.80,
				BaseRate:           0.0,
				Slope1:             0.01,
				Slope2:             0.40,
				ReserveFactor:      0.35,
			},
		},
		reserveStates: map[string]pool.State{
			WETH:   {TotalSupply: 2_800_000.0, TotalDebt: 2_200_000.0},
			WstETH: {TotalSupply: 2_400_000.0, TotalDebt: 50_000.0},
		},
		liquidationParams: map[string]liquidation.Params{
			WETH:   {LTV: 0.805, LiquidationThreshold: 0.83, LiquidationBonus: 0.05},
			WstETH: {LTV: 0.795, LiquidationThreshold: 0.81, LiquidationBonus: 0.07},
		},
		emodeCategories: map[int]liquidation.EModeCategory{
			EModeETHCorrelated: {
				ID:                   EModeETHCorrelated,
				Label:                "ETH correlated",
				LTV:                  0.935,
				LiquidationThreshold: 0.955,
				LiquidationBonus:     0.01,
			},
		},
		assetPrices: map[string]float64{
			WETH:   1.0,
			WstETH: 1.18, // wstETH/ETH exchange rate, includes staking rewards
		},
		peg:        1.0,
		stakingAPY: 0.035,
	}
}

func (s *Static) ReserveParams(asset string) (rates.Params, error) {
	p, ok := s.reserveParams[asset]
	if !ok {
		return rates.Params{}, fmt.Errorf("provider: unknown asset %q", asset)
	}
	return p, nil
}

func (s *Static) ReserveState(asset string) (pool.State, error) {
	st, ok := s.reserveStates[asset]
	if !ok {
		return pool.State{}, fmt.Errorf("provider: unknown asset %q", asset)
	}
	return st, nil
}

func (s *Static) LiquidationParams(asset string) (liquidation.Params, error) {
	p, ok := s.liquidationParams[asset]
	if !ok {
		return liquidation.Params{}, fmt.Errorf("provider: unknown asset %q", asset)
	}
	return p, nil
}

func (s *Static) EModeCategory(id int) (liquidation.EModeCategory, error) {
	c, ok := s.emodeCategories[id]
	if !ok {
		return liquidation.EModeCategory{}, fmt.Errorf("provider: unknown e-mode category %d", id)
	}
	return c, nil
}

func (s *Static) AssetPrice(asset string) (float64, error) {
	p, ok := s.assetPrices[asset]
	if !ok {
		return 0, fmt.Errorf("provider: unknown asset %q", asset)
	}
	return p, nil
}

func (s *Static) ExchangeRatePeg() (float64, error) { return s.peg, nil }

func (s *Static) StakingAPY() (float64, error) { return s.stakingAPY, nil }
