package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rigtycoon/internal/api"
	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
	"rigtycoon/internal/history"
	"rigtycoon/internal/tuning"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	g, err := openGame(cfg, logger)
	if err != nil {
		logger.Error("open game failed", "path", cfg.SavePath, "err", err)
		os.Exit(1)
	}

	rec, err := openRecorder(ctx, cfg, g.ID(), logger)
	if err != nil {
		logger.Error("history init failed", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	server := api.New(cfg, logger, g, rec)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("rigtycoon api listening", "addr", cfg.Addr, "game_id", g.ID(), "month", g.Month())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("rigtycoon api stopped")
}

// openGame resumes the save at cfg.SavePath or starts a new game there.
func openGame(cfg config.APIConfig, logger *slog.Logger) (*game.Game, error) {
	if _, err := os.Stat(cfg.SavePath); err == nil {
		return game.Load(cfg.SavePath, logger)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	opts, err := tuning.Load(cfg.TuningPath, game.DefaultOptions(cfg.Seed))
	if err != nil {
		return nil, err
	}
	opts.Seed = cfg.Seed
	opts.Logger = logger
	g, err := game.New(opts)
	if err != nil {
		return nil, err
	}
	if _, err := g.PrepareTurn(); err != nil {
		return nil, err
	}
	return g, g.Save(cfg.SavePath)
}

func openRecorder(ctx context.Context, cfg config.APIConfig, runID string, logger *slog.Logger) (*history.Recorder, error) {
	rec := &history.Recorder{Log: logger}
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
	if len(stores) > 0 {
		rec.Store = stores
	}
	if cfg.TurnLogDir != "" {
		l, err := history.OpenTurnLog(history.TurnLogPath(cfg.TurnLogDir, runID))
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		rec.Turns = l
	}
	return rec, nil
}
