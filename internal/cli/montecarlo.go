package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vaultrisk/journal"
	"vaultrisk/montecarlo"
	"vaultrisk/pkg/id"
	"vaultrisk/stress"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run the Monte Carlo position simulation",
	Long: `Simulate the position over stochastic utilization and exchange-rate
paths and report terminal P&L, VaR/CVaR and the liquidation probability.

Example:
  vaultrisk montecarlo -f examples/configs/basic.yaml --seed 7`,
	RunE: runMonteCarlo,
}

func init() {
	rootCmd.AddCommand(montecarloCmd)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := captureSnapshot(cfg)
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	pos := snap.Position(cfg.Position.CollateralAmount, cfg.Position.DebtAmount)

	var peg *montecarlo.PegParams
	if cfg.MonteCarlo.PegPaths {
		peg = &montecarlo.PegParams{
			Vol:             cfg.MonteCarlo.PegVol,
			JumpIntensity:   cfg.MonteCarlo.JumpIntensity,
			JumpSize:        cfg.MonteCarlo.JumpSize,
			UtilCorrelation: cfg.MonteCarlo.UtilCorrelation,
		}
	}

	u0 := snap.DebtPool.Utilization()
	mc := montecarlo.Config{
		InitialUtilization:   u0,
		CollateralValue:      pos.CollateralValue(),
		DebtValue:            pos.DebtValue(),
		LiquidationThreshold: snap.Liquidation.LiquidationThreshold,
		StakingAPY:           snap.StakingAPY,
		SupplyAPY:            snap.SupplyAPY(),
		Rates:                snap.DebtRates,
		OU: montecarlo.OUParams{
			Theta: u0,
			Kappa: cfg.MonteCarlo.ReversionSpeed,
			Sigma: cfg.MonteCarlo.UtilizationVol,
			Dt:    1.0 / 365.0,
		},
		Peg:         peg,
		InitialPeg:  snap.Peg,
		Paths:       cfg.MonteCarlo.Paths,
		HorizonDays: cfg.MonteCarlo.HorizonDays,
		Seed:        effectiveSeed(cfg.MonteCarlo.Seed),
		Workers:     cfg.MonteCarlo.Workers,
	}

	log.WithFields(map[string]any{
		"paths":   mc.Paths,
		"horizon": mc.HorizonDays,
		"seed":    mc.Seed,
	}).Info("starting monte carlo run")

	start := time.Now()
	res, err := montecarlo.Run(cmd.Context(), mc)
	if err != nil {
		return fmt.Errorf("monte carlo: %w", err)
	}
	v, err := stress.ComputeVaR(res)
	if err != nil {
		return fmt.Errorf("compute var: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Monte Carlo: %d paths, %d day horizon (%s)\n", mc.Paths, mc.HorizonDays, elapsed.Round(time.Millisecond))
	fmt.Printf("  Position: %.0f collateral @ %.4f vs %.0f debt (HF %.3f)\n",
		pos.CollateralAmount, pos.CollateralPrice, pos.DebtValue(),
		snap.Liquidation.HealthFactor(pos.CollateralValue(), pos.DebtValue()))
	fmt.Printf("  VaR 95%%: %.2f\n", v.VaR95)
	fmt.Printf("  VaR 99%%: %.2f\n", v.VaR99)
	fmt.Printf("  CVaR 95%%: %.2f\n", v.CVaR95)
	fmt.Printf("  CVaR 99%%: %.2f\n", v.CVaR99)
	fmt.Printf("  Max loss: %.2f\n", v.MaxLoss)
	fmt.Printf("  Liquidation probability: %.4f\n", v.LiquidationProb)

	params, _ := json.Marshal(cfg.MonteCarlo)
	rec := journal.RunRecord{
		RunID:           id.New(),
		Kind:            "montecarlo",
		CreatedAt:       time.Now().UTC(),
		Seed:            mc.Seed,
		Paths:           mc.Paths,
		Steps:           res.Steps,
		Params:          string(params),
		VaR95:           v.VaR95,
		VaR99:           v.VaR99,
		CVaR95:          v.CVaR95,
		CVaR99:          v.CVaR99,
		MaxLoss:         v.MaxLoss,
		LiquidationProb: v.LiquidationProb,
	}
	if err := j.RecordRun(cmd.Context(), rec); err != nil {
		return err
	}
	log.WithField("run_id", rec.RunID).Info("run recorded")
	return nil
}
