package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled runs",
	Long: `List recorded simulation runs from the journal, newest first.

Example:
  vaultrisk runs --kind montecarlo --limit 10`,
	RunE: runRuns,
}

var (
	runsKind  string
	runsLimit int
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsKind, "kind", "", "filter by run kind (montecarlo, cascade, stress)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context(), runsKind, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-26s %-10s %-20s %10s %12s %8s\n",
		"run id", "kind", "created", "var95", "max loss", "liq prob")
	for _, r := range runs {
		fmt.Printf("%-26s %-10s %-20s %10.2f %12.2f %8.4f\n",
			r.RunID, r.Kind, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.VaR95, r.MaxLoss, r.LiquidationProb)
	}
	return nil
}
