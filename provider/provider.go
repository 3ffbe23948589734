// Package provider supplies reserve parameters, pool states, prices and
// staking yields to the simulation engines. Engines never query a
// Provider inside their loops; they consume a one-shot Snapshot.
package provider

import (
	"vaultrisk/liquidation"
	"vaultrisk/pool"
	"vaultrisk/rates"
)

// Canonical asset symbols.
const (
	WETH   = "WETH"
	WstETH = "wstETH"
)

// EModeETHCorrelated is the Aave V3 ETH-correlated e-mode category.
const EModeETHCorrelated = 1

// Provider is the read-side interface over a lending pool deployment.
type Provider interface {
	ReserveParams(asset string) (rates.Params, error)
	ReserveState(asset string) (pool.State, error)
	LiquidationParams(asset string) (liquidation.Params, error)
	EModeCategory(id int) (liquidation.EModeCategory, error)

	// AssetPrice is quoted in the common numeraire (ETH terms).
	AssetPrice(asset string) (float64, error)

	// ExchangeRatePeg is the stETH/ETH secondary-market peg.
	ExchangeRatePeg() (float64, error)

	// StakingAPY is the staking yield as a decimal, e.g. 0.035.
	StakingAPY() (float64, error)
}
