package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
	"rigtycoon/internal/history"
	"rigtycoon/internal/tuning"
)

type summary struct {
	GameID   string
	Months   int
	Bankrupt bool
	CashM    float64
	DebtM    float64
	Digest   string
	SavePath string
	CSVPath  string
}

// run plays cfg.Months turns with the player on autopilot, placing every
// suggested bid each month.
func run(ctx context.Context, cfg config.SimConfig, logger *slog.Logger) (summary, error) {
	if err := cfg.Validate(); err != nil {
		return summary{}, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return summary{}, fmt.Errorf("create output dir: %w", err)
	}

	opts, err := tuning.Load(cfg.TuningPath, game.DefaultOptions(cfg.Seed))
	if err != nil {
		return summary{}, err
	}
	opts.Seed = cfg.Seed
	opts.Logger = logger
	g, err := game.New(opts)
	if err != nil {
		return summary{}, err
	}

	rec, err := openRecorder(ctx, cfg, g.ID(), logger)
	if err != nil {
		return summary{}, err
	}
	defer rec.Close()

	logger.Info("sim started", "game_id", g.ID(), "seed", cfg.Seed, "months", cfg.Months)
	played := 0
	for played < cfg.Months {
		if err := ctx.Err(); err != nil {
			logger.Warn("sim interrupted", "month", g.Month(), "err", err)
			break
		}
		if _, err := g.PrepareTurn(); err != nil {
			return summary{}, err
		}
		report, err := g.ResolveTurn(g.SuggestBids()...)
		if err != nil {
			return summary{}, err
		}
		played++
		if err := rec.Record(ctx, g, report); err != nil {
			return summary{}, fmt.Errorf("record month %d: %w", report.Month, err)
		}
		st := g.Status()
		logger.Info("month resolved",
			"month", report.Month,
			"date", report.Date,
			"oil", report.OilPrice,
			"awards", len(report.Awards),
			"cash_m", st.CashM,
			"debt_m", st.DebtM,
		)
		if cfg.CheckpointEvery > 0 && report.Month%cfg.CheckpointEvery == 0 {
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("save_month_%02d.json", report.Month))
			if err := g.Save(path); err != nil {
				return summary{}, err
			}
			logger.Debug("checkpoint written", "path", path)
		}
		if report.Bankrupt {
			logger.Warn("player bankrupt", "month", report.Month, "cash_m", st.CashM)
			break
		}
	}

	out := summary{
		GameID:   g.ID(),
		Months:   played,
		Bankrupt: g.Phase() == game.PhaseBankrupt,
		CashM:    g.Player().Cash,
		DebtM:    g.Player().Debt,
		Digest:   g.Digest(),
		SavePath: filepath.Join(cfg.OutputDir, "final_save.json"),
		CSVPath:  filepath.Join(cfg.OutputDir, "sim_history.csv"),
	}
	if err := g.Save(out.SavePath); err != nil {
		return summary{}, err
	}
	if err := history.WriteCSVFile(out.CSVPath, g.History()); err != nil {
		return summary{}, err
	}
	return out, nil
}

func openRecorder(ctx context.Context, cfg config.SimConfig, runID string, logger *slog.Logger) (*history.Recorder, error) {
	var stores history.Multi
	if cfg.HistorySQLite != "" {
		s, err := history.OpenSQLite(cfg.HistorySQLite)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	if cfg.DatabaseURL != "" {
		s, err := history.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores = append(stores, s)
	}
	turns, err := history.OpenTurnLog(history.TurnLogPath(cfg.OutputDir, runID))
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	rec := &history.Recorder{Turns: turns, Log: logger}
	if len(stores) > 0 {
		rec.Store = stores
	}
	return rec, nil
}
