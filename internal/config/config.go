package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr            string
	SavePath        string
	Seed            int64
	TuningPath      string
	HistorySQLite   string
	DatabaseURL     string
	TurnLogDir      string
	RatePerSec      float64
	RateBurst       int
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
}

type CLIConfig struct {
	Home       string
	TuningPath string
	APIBaseURL string
}

type SimConfig struct {
	Months          int
	Seed            int64
	OutputDir       string
	TuningPath      string
	HistorySQLite   string
	DatabaseURL     string
	CheckpointEvery int
	LogLevel        slog.Level
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("RIGTYCOON_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:            addr,
		SavePath:        strings.TrimSpace(os.Getenv("RIGTYCOON_SAVE_PATH")),
		Seed:            envInt64Default("RIGTYCOON_SEED", time.Now().UnixNano()),
		TuningPath:      strings.TrimSpace(os.Getenv("RIGTYCOON_TUNING")),
		HistorySQLite:   strings.TrimSpace(os.Getenv("RIGTYCOON_HISTORY_SQLITE")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TurnLogDir:      strings.TrimSpace(os.Getenv("RIGTYCOON_TURN_LOG_DIR")),
		RatePerSec:      envFloatDefault("RIGTYCOON_RATE_PER_SEC", 5),
		RateBurst:       envIntDefault("RIGTYCOON_RATE_BURST", 10),
		ShutdownTimeout: envDurationDefault("RIGTYCOON_SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        envLevelDefault("RIGTYCOON_LOG_LEVEL", slog.LevelInfo),
	}
	if cfg.SavePath == "" {
		return cfg, fmt.Errorf("RIGTYCOON_SAVE_PATH is required")
	}
	if cfg.RatePerSec <= 0 || cfg.RateBurst < 1 {
		return cfg, fmt.Errorf("rate limit must be positive (got %v/s burst %d)", cfg.RatePerSec, cfg.RateBurst)
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	home := strings.TrimSpace(os.Getenv("RIGTYCOON_HOME"))
	if home == "" {
		if dir, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(dir, ".rigtycoon")
		} else {
			home = ".rigtycoon"
		}
	}
	return CLIConfig{
		Home:       home,
		TuningPath: strings.TrimSpace(os.Getenv("RIGTYCOON_TUNING")),
		APIBaseURL: strings.TrimRight(envDefault("RIGTYCOON_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func LoadSimFromEnv() (SimConfig, error) {
	cfg := SimConfig{
		Months:          envIntDefault("RIGTYCOON_SIM_MONTHS", 36),
		Seed:            envInt64Default("RIGTYCOON_SEED", 7),
		OutputDir:       envDefault("RIGTYCOON_OUTPUT_DIR", "output"),
		TuningPath:      strings.TrimSpace(os.Getenv("RIGTYCOON_TUNING")),
		HistorySQLite:   strings.TrimSpace(os.Getenv("RIGTYCOON_HISTORY_SQLITE")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CheckpointEvery: envIntDefault("RIGTYCOON_CHECKPOINT_EVERY", 0),
		LogLevel:        envLevelDefault("RIGTYCOON_LOG_LEVEL", slog.LevelInfo),
	}
	return cfg, cfg.Validate()
}

func (c SimConfig) Validate() error {
	if c.Months < 1 {
		return fmt.Errorf("months must be >= 1 (got %d)", c.Months)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint interval must be >= 0 (got %d)", c.CheckpointEvery)
	}
	return nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
