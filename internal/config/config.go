package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"moneytracker/internal/limits"
)

type Config struct {
	// HTTP Server
	Port string `toml:"port"`

	// Storage
	DataBackend  string `toml:"data_backend"`
	SQLiteDBPath string `toml:"sqlite_db_path"`
	SeedFile     string `toml:"seed_file"`

	// AMQP (optional, alerts only)
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Limits
	DailyWarningRatio   string `toml:"daily_warning_ratio"`
	MonthlyWarningRatio string `toml:"monthly_warning_ratio"`

	// Maintenance
	RetentionMonths int    `toml:"retention_months"`
	PruneSchedule   string `toml:"prune_schedule"`

	LogLevel string `toml:"log_level"`
}

// Defaults returns the configuration used when neither a file nor the
// environment say otherwise.
func Defaults() *Config {
	return &Config{
		Port:                "8081",
		DataBackend:         "memory",
		SQLiteDBPath:        "./data/moneytracker.db",
		AMQPExchange:        "moneytracker",
		AMQPQueue:           "spending_alerts",
		DailyWarningRatio:   "0.80",
		MonthlyWarningRatio: "0.75",
		RetentionMonths:     12,
		PruneSchedule:       "@daily",
		LogLevel:            "info",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile overlays the values present in a TOML file.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.SeedFile = getEnv("SEED_FILE", c.SeedFile)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.DailyWarningRatio = getEnv("DAILY_WARNING_RATIO", c.DailyWarningRatio)
	c.MonthlyWarningRatio = getEnv("MONTHLY_WARNING_RATIO", c.MonthlyWarningRatio)

	c.RetentionMonths = getEnvInt("RETENTION_MONTHS", c.RetentionMonths)
	c.PruneSchedule = getEnv("PRUNE_SCHEDULE", c.PruneSchedule)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "memory" && c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil && !os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("cannot read seed file '%s': %v", c.SeedFile, err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	for _, r := range []struct{ name, raw string }{
		{"daily", c.DailyWarningRatio},
		{"monthly", c.MonthlyWarningRatio},
	} {
		v, err := decimal.NewFromString(r.raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s warning ratio '%s': must be a number", r.name, r.raw))
			continue
		}
		if err := limits.ValidateRatio(r.name, v); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.RetentionMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid retention %d months: must be at least 1", c.RetentionMonths))
	}

	if _, err := cron.ParseStandard(c.PruneSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid prune schedule '%s': %v", c.PruneSchedule, err))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Warnings returns the parsed warning ratios. Call after Validate.
func (c *Config) Warnings() (daily, monthly decimal.Decimal) {
	daily, _ = decimal.NewFromString(c.DailyWarningRatio)
	monthly, _ = decimal.NewFromString(c.MonthlyWarningRatio)
	return daily, monthly
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
