package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/rowcount-backend/internal/db"
	"github.com/yungbote/rowcount-backend/internal/platform/envutil"
)

type Config struct {
	// Path is the YAML file the config was read from, if any.
	Path string `yaml:"-"`

	Env          string             `yaml:"env"`
	Log          LogConfig          `yaml:"log"`
	HTTP         HTTPConfig         `yaml:"http"`
	DB           db.Config          `yaml:"db"`
	Redis        RedisConfig        `yaml:"redis"`
	QuickCounter QuickCounterConfig `yaml:"quick_counter"`
	Reminders    ReminderConfig     `yaml:"reminders"`
	ServiceName  string             `yaml:"service_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

// RedisConfig enables the Redis quick counter store when Addr is set.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	KeyPrefix  string        `yaml:"key_prefix"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type QuickCounterConfig struct {
	UndoDepth int `yaml:"undo_depth"`
}

type ReminderConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

func defaultConfig() Config {
	return Config{
		Env: "development",
		Log: LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   15 * time.Second,
		},
		DB:           db.Config{Driver: db.DriverSQLite, SQLitePath: "rowcount.db", SSLMode: "disable"},
		Redis:        RedisConfig{SessionTTL: 24 * time.Hour},
		QuickCounter: QuickCounterConfig{UndoDepth: 50},
		Reminders:    ReminderConfig{Enabled: true, PollInterval: time.Minute},
		ServiceName:  "rowcount",
	}
}

// LoadConfig reads path (or CONFIG_FILE when path is empty) over the
// defaults, then applies environment overrides. A missing file is only an
// error when it was named explicitly.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = envutil.String("CONFIG_FILE", "")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			cfg.Path = path
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.Log.Level = envutil.String("LOG_LEVEL", cfg.Log.Level)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)

	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envutil.String("DB_DSN", cfg.DB.DSN)
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)
	cfg.DB.LogSQL = envutil.Bool("DB_LOG_SQL", cfg.DB.LogSQL)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.KeyPrefix = envutil.String("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.SessionTTL = envutil.Duration("QUICK_COUNTER_TTL", cfg.Redis.SessionTTL)

	cfg.QuickCounter.UndoDepth = envutil.Int("UNDO_DEPTH", cfg.QuickCounter.UndoDepth)
	cfg.Reminders.Enabled = envutil.Bool("REMINDERS_ENABLED", cfg.Reminders.Enabled)
	cfg.Reminders.PollInterval = envutil.Duration("REMINDER_POLL_INTERVAL", cfg.Reminders.PollInterval)
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http addr is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.QuickCounter.UndoDepth <= 0 {
		return fmt.Errorf("quick_counter.undo_depth must be positive")
	}
	if c.Reminders.Enabled && c.Reminders.PollInterval <= 0 {
		return fmt.Errorf("reminders.poll_interval must be positive")
	}
	return nil
}
