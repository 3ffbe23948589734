// Package stress applies deterministic and correlated stochastic shock
// scenarios to a position and aggregates the outcomes into VaR, CVaR,
// and liquidation probability.
package stress

// Scenario is one stress specification.
//
// ETHPriceChange is informational only: when collateral and debt share
// a numeraire the term cancels in the health-factor ratio, so it has
// zero numerical effect on any stressed value.
type Scenario struct {
	Name        string
	Description string

	ETHPriceChange    float64 // fractional numeraire/USD move, reporting only
	ExchangeRateShock float64 // multiplicative factor on the collateral price, >= 0
	UtilizationShock  float64 // absolute utilization level for the debt pool
	DurationDays      int     // accrual period under stress
}

// Historical scenario catalog.
var (
	June2022Depeg = Scenario{
		Name: "June 2022 stETH Depeg",
		Description: "stETH depegged to ~0.93 amid the Celsius/3AC collapse. " +
			"ETH dropped ~40%, WETH utilization spiked as borrowers fled.",
		ETHPriceChange:    -0.40,
		ExchangeRateShock: 0.93,
		UtilizationShock:  0.95,
		DurationDays:      14,
	}

	March2020BlackThursday = Scenario{
		Name: "March 2020 Black Thursday",
		Description: "COVID crash: ETH fell ~50% in 24 hours with a massive " +
			"liquidation cascade across DeFi.",
		ETHPriceChange:    -0.50,
		ExchangeRateShock: 0.98,
		UtilizationShock:  0.98,
		DurationDays:      3,
	}

	May2022TerraLuna = Scenario{
		Name: "May 2022 Terra/Luna",
		Description: "UST depeg and Luna collapse. ETH dropped ~35%, stETH " +
			"depegged to ~0.95 on contagion fears.",
		ETHPriceChange:    -0.35,
		ExchangeRateShock: 0.95,
		UtilizationShock:  0.93,
		DurationDays:      7,
	}
)

// HistoricalScenarios lists the built-in catalog.
func HistoricalScenarios() []Scenario {
	return []Scenario{June2022Depeg, March2020BlackThursday, May2022TerraLuna}
}

// NewScenario builds a custom scenario.
func NewScenario(name string, exchangeRateShock, utilizationShock float64, durationDays int) Scenario {
	return Scenario{
		Name:              name,
		Description:       "Custom scenario",
		ExchangeRateShock: exchangeRateShock,
		UtilizationShock:  utilizationShock,
		DurationDays:      durationDays,
	}
}
