package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/infrastructure/scheduler"
)

const EnvPrefix = "FC"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cron      CronConfig      `mapstructure:"cron"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Mail      MailConfig      `mapstructure:"mail"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	APIToken string `mapstructure:"api_token"`
}

type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Timezone      string        `mapstructure:"timezone"`
	SweepAt       string        `mapstructure:"sweep_at"`
	DigestWeekday string        `mapstructure:"digest_weekday"`
	DigestAt      string        `mapstructure:"digest_at"`
	Tick          time.Duration `mapstructure:"tick"`
}

type MailConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	AdminEmail string `mapstructure:"admin_email"`
}

type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err == nil {
		logging.Info(logCtx, "loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("mail_driver", cfg.Mail.Driver),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		slog.Bool("archive_enabled", cfg.Archive.Enabled),
	)

	return cfg, nil
}

// Validate checks settings every command depends on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Mail.Driver) {
	case "log":
	case "smtp":
		if strings.TrimSpace(c.Mail.Host) == "" || strings.TrimSpace(c.Mail.From) == "" {
			return errors.New("mail.host and mail.from are required for the smtp driver")
		}
	default:
		return fmt.Errorf("unsupported mail.driver %q", c.Mail.Driver)
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}
	if _, _, err := scheduler.ParseClock(c.Scheduler.SweepAt); err != nil {
		return errs.Wrap(err, "scheduler.sweep_at")
	}
	if _, _, err := scheduler.ParseClock(c.Scheduler.DigestAt); err != nil {
		return errs.Wrap(err, "scheduler.digest_at")
	}
	if _, err := scheduler.ParseWeekday(c.Scheduler.DigestWeekday); err != nil {
		return errs.Wrap(err, "scheduler.digest_weekday")
	}
	if c.Archive.Enabled && (strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "") {
		return errors.New("archive.endpoint and archive.bucket are required when archive is enabled")
	}
	return nil
}

// ValidateServe checks the settings only the long running server needs.
func (c Config) ValidateServe() error {
	if strings.TrimSpace(c.Cron.Secret) == "" {
		return errors.New("cron.secret is required to serve the cron trigger")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	return nil
}

func (s SchedulerConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errs.Wrapf(err, "scheduler.timezone %q", name)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fleetcheck")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/fleetcheck.sqlite")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.api_token", "")
	v.SetDefault("cron.secret", "")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.sweep_at", "06:00")
	v.SetDefault("scheduler.digest_weekday", "monday")
	v.SetDefault("scheduler.digest_at", "08:00")
	v.SetDefault("scheduler.tick", time.Minute)
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.admin_email", "")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key_id", "")
	v.SetDefault("archive.secret_access_key", "")
	v.SetDefault("archive.use_ssl", true)
	v.SetDefault("archive.bucket", "fleetcheck-reports")
	v.SetDefault("archive.prefix", "digests")
}
