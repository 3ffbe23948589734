package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultrisk/provider"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the interest-rate curve for a reserve",
	Long: `Sample the kinked borrow/supply rate curve of a reserve across the
full utilization range.

Example:
  vaultrisk rates --asset WETH --points 21`,
	RunE: runRates,
}

var (
	ratesAsset  string
	ratesPoints int
)

func init() {
	rootCmd.AddCommand(ratesCmd)

	ratesCmd.Flags().StringVar(&ratesAsset, "asset", provider.WETH, "reserve asset symbol")
	ratesCmd.Flags().IntVar(&ratesPoints, "points", 21, "number of utilization samples")
}

func runRates(cmd *cobra.Command, args []string) error {
	p := provider.NewStatic()
	params, err := p.ReserveParams(ratesAsset)
	if err != nil {
		return err
	}
	state, err := p.ReserveState(ratesAsset)
	if err != nil {
		return err
	}

	u := state.Utilization()
	fmt.Printf("%s rate curve (kink at %.2f, current utilization %.4f)\n",
		ratesAsset, params.OptimalUtilization, u)
	fmt.Printf("%12s %12s %12s\n", "utilization", "borrow", "supply")
	for _, pt := range params.Curve(ratesPoints) {
		fmt.Printf("%12.4f %12.4f %12.4f\n", pt.Utilization, pt.BorrowRate, pt.SupplyRate)
	}
	fmt.Printf("\nCurrent borrow rate: %.4f\n", params.BorrowRate(u))
	fmt.Printf("Current supply rate: %.4f\n", params.SupplyRate(u))
	return nil
}
