package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultWeeksToShow          = 16
	DefaultGoalMinutes          = 20
	DefaultWeeklyCommuteMinutes = 60
	DefaultSource               = "commutecast_cli"
	DefaultDevice               = "unknown"
)

func applyDefaults(cfg *Config) {
	if cfg.UserID == "" {
		cfg.UserID = "local"
	}
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}
	if cfg.REST.Timeout == 0 {
		cfg.REST.Timeout = 10 * time.Second
	}

	if cfg.Progress.WeeksToShow == 0 {
		cfg.Progress.WeeksToShow = DefaultWeeksToShow
	}
	if cfg.Progress.GoalMinutes == 0 {
		cfg.Progress.GoalMinutes = DefaultGoalMinutes
	}
	if cfg.Progress.WeeklyCommuteMinutes == 0 {
		cfg.Progress.WeeklyCommuteMinutes = DefaultWeeklyCommuteMinutes
	}

	if cfg.Schedule.CommuteCron == "" {
		cfg.Schedule.CommuteCron = "30 7 * * 1-5"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Playback.TickInterval == 0 {
		cfg.Playback.TickInterval = time.Second
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".commutecast"
	}
	return filepath.Join(home, ".commutecast")
}
