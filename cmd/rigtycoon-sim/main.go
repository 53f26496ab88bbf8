package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rigtycoon/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Validation happens in run, after flags have been applied.
	cfg, _ := config.LoadSimFromEnv()
	cmd := &cobra.Command{
		Use:           "rigtycoon-sim",
		Short:         "Run a headless autopilot simulation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			res, err := run(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("sim failed", "err", err)
				return err
			}
			logger.Info("sim complete",
				"game_id", res.GameID,
				"months", res.Months,
				"bankrupt", res.Bankrupt,
				"cash_m", res.CashM,
				"debt_m", res.DebtM,
				"digest", res.Digest,
				"save", res.SavePath,
				"csv", res.CSVPath,
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Months, "months", cfg.Months, "number of months to play")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "rng seed")
	f.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory for saves, turn log and csv")
	f.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "yaml tuning overrides")
	f.StringVar(&cfg.HistorySQLite, "sqlite", cfg.HistorySQLite, "sqlite history database")
	f.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres history database")
	f.IntVar(&cfg.CheckpointEvery, "checkpoint-every", cfg.CheckpointEvery, "write a save every N months (0 disables)")
	return cmd
}
