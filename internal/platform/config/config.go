package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"commutecast/internal/platform/validate"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

// Config represents commutecast.yaml after defaults and env overrides.
type Config struct {
	UserID     string         `yaml:"user_id" validate:"required"`
	Device     string         `yaml:"device"`
	Source     string         `yaml:"source"`
	DataDir    string         `yaml:"data_dir" validate:"required"`
	JournalDir string         `yaml:"journal_dir"`
	Backend    string         `yaml:"backend" validate:"oneof=sqlite postgres rest"`
	Database   DatabaseConfig `yaml:"database"`
	REST       RESTConfig     `yaml:"rest"`
	Progress   ProgressConfig `yaml:"progress"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	Logging    LoggingConfig  `yaml:"logging"`
	Playback   PlaybackConfig `yaml:"playback"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RESTConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries" validate:"gte=0"`
}

type ProgressConfig struct {
	WeeksToShow          int `yaml:"weeks_to_show" validate:"gte=1,lte=104"`
	GoalMinutes          int `yaml:"goal_minutes" validate:"gte=0"`
	WeeklyCommuteMinutes int `yaml:"weekly_commute_minutes" validate:"gte=0"`
}

type ScheduleConfig struct {
	CommuteCron string `yaml:"commute_cron"`
	Timezone    string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type PlaybackConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Load reads path (if it exists), loads .env from the working directory and
// applies COMMUTECAST_* overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes raw YAML without consulting the environment.
func Parse(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Backend == BackendREST && c.REST.BaseURL == "" {
		return fmt.Errorf("config: rest.base_url is required for the rest backend")
	}
	if c.Backend == BackendPostgres && c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required for the postgres backend")
	}
	return nil
}

// DBPath is the sqlite file used when no DSN is configured.
func (c Config) DBPath() string {
	if c.Backend == BackendSQLite && c.Database.DSN != "" {
		return c.Database.DSN
	}
	return filepath.Join(c.DataDir, "commutecast.db")
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("COMMUTECAST_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("COMMUTECAST_DEVICE"); v != "" {
		cfg.Device = v
	}
	if v := os.Getenv("COMMUTECAST_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("COMMUTECAST_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("COMMUTECAST_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("COMMUTECAST_REST_URL"); v != "" {
		cfg.REST.BaseURL = v
	}
	if v := os.Getenv("COMMUTECAST_REST_API_KEY"); v != "" {
		cfg.REST.APIKey = v
	}
	if v := os.Getenv("COMMUTECAST_WEEKLY_COMMUTE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse COMMUTECAST_WEEKLY_COMMUTE_MINUTES %q: %w", v, err)
		}
		cfg.Progress.WeeklyCommuteMinutes = n
	}
	if v := os.Getenv("COMMUTECAST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}
