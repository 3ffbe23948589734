// Package cli wires the vaultrisk subcommands.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vaultrisk/config"
	"vaultrisk/journal"
	"vaultrisk/provider"
)

var log = logrus.New()

var (
	cfgPath  string
	dbPath   string
	logLevel string
	seedFlag int64
)

var rootCmd = &cobra.Command{
	Use:   "vaultrisk",
	Short: "Risk simulator for leveraged staked-ETH lending positions",
	Long: `Vaultrisk models a looped wstETH/WETH position on an Aave V3 style
lending pool.

It provides tools for:
  - Monte Carlo simulation of utilization and exchange-rate paths
  - Liquidation cascade analysis with endogenous price impact
  - Historical and correlated stress scenarios with VaR/CVaR
  - Interest-rate curve inspection
  - Journaling run summaries to SQLite`,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override the journal database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "override the configured random seed (0 keeps it)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.WithField("path", cfgPath).Debug("loaded config")
	return cfg, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	path := cfg.Journal.DBPath
	if dbPath != "" {
		path = dbPath
	}
	if cfg.Journal.Type == "none" && dbPath == "" {
		return journal.Nop{}, nil
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

// captureSnapshot reads all market inputs once, with the config's
// what-if overrides applied.
func captureSnapshot(cfg *config.Config) (*provider.Snapshot, error) {
	return provider.Capture(
		provider.NewStatic(),
		cfg.Position.CollateralAsset,
		cfg.Position.DebtAsset,
		cfg.Position.EModeCategory,
		provider.Overrides{
			CollateralPrice: cfg.Position.CollateralPrice,
			Peg:             cfg.Position.Peg,
			Utilization:     cfg.Position.Utilization,
		},
	)
}

func effectiveSeed(configured int64) int64 {
	if seedFlag != 0 {
		return seedFlag
	}
	return configured
}
