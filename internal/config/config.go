package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"reminders/internal/logger"
	"reminders/internal/planner"
)

const (
	DriverSQLite3 = "sqlite3"
	DriverModernc = "modernc"
)

// Config keeps runtime settings for every surface of the app.
type Config struct {
	Env        string           `toml:"env" env:"REMINDERS_ENV" env-default:"prod"`
	Timezone   string           `toml:"timezone" env:"REMINDERS_TIMEZONE"`
	Database   DatabaseConfig   `toml:"database"`
	HTTP       HTTPConfig       `toml:"http"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Notify     NotifyConfig     `toml:"notify"`
	Planner    PlannerConfig    `toml:"planner"`
	Annotation AnnotationConfig `toml:"annotation"`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (cgo) or "modernc" (pure Go).
	Driver string `toml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite3"`
	DSN    string `toml:"dsn" env:"DATABASE_URL" env-default:"reminders.db"`
}

type HTTPConfig struct {
	Host            string   `toml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port            string   `toml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type TelegramConfig struct {
	// Token enables the bot; an empty token disables it.
	Token  string `toml:"token" env:"TELEGRAM_TOKEN"`
	ChatID int64  `toml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type NotifyConfig struct {
	DailyAt       string `toml:"daily_at" env:"NOTIFY_DAILY_AT" env-default:"08:00"`
	IntervalHours int    `toml:"interval_hours" env:"REPORT_INTERVAL_HOURS"`
}

type PlannerConfig struct {
	DistantRecurringDays int  `toml:"distant_recurring_days" env:"PLANNER_DISTANT_RECURRING_DAYS" env-default:"3"`
	IgnoreUrgent         bool `toml:"ignore_urgent" env:"PLANNER_IGNORE_URGENT"`
	TopItems             int  `toml:"top_items" env:"PLANNER_TOP_ITEMS" env-default:"5"`
}

type AnnotationConfig struct {
	// Endpoint enables annotation; an empty endpoint disables it.
	Endpoint string   `toml:"endpoint" env:"ANNOTATION_ENDPOINT"`
	APIKey   string   `toml:"api_key" env:"ANNOTATION_API_KEY"`
	Model    string   `toml:"model" env:"ANNOTATION_MODEL"`
	Timeout  Duration `toml:"timeout" env:"ANNOTATION_TIMEOUT" env-default:"15s"`
}

// Duration is a time.Duration written as "15s" in files and env vars.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads an optional .env file, an optional TOML file at path, then
// environment variables, which win over the file.
func Load(path string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Env {
	case logger.EnvLocal, logger.EnvDev, logger.EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	switch c.Database.Driver {
	case DriverSQLite3, DriverModernc:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Notify.IntervalHours < 0 {
		return fmt.Errorf("interval hours must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means the host default.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.Notify.IntervalHours) * time.Hour
}

func (c Config) PlannerOptions() planner.Options {
	return planner.Options{
		DistantRecurringDays: c.Planner.DistantRecurringDays,
		UrgentNeedsAttention: !c.Planner.IgnoreUrgent,
		TopItems:             c.Planner.TopItems,
	}
}
