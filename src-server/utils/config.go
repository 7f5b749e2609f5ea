package utils

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"calendar/src-server/model"
)

// envConfig is what the environment is parsed into; Config keeps the
// validated values behind getters.
type envConfig struct {
	DBPath             string        `env:"CALENDAR_DB_PATH" envDefault:"./calendar.db"`
	ForeignKeys        bool          `env:"CALENDAR_DB_FOREIGN_KEYS" envDefault:"false"`
	DanglingReferences string        `env:"CALENDAR_DANGLING_REFERENCES" envDefault:"allow"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	Port               string        `env:"PORT" envDefault:"8080"`
	Timezone           string        `env:"TIMEZONE"`
	MetricInterval     time.Duration `env:"METRIC_COLLECTION_INTERVAL" envDefault:"15s"`
}

type Config struct {
	dbPath      string
	foreignKeys bool
	dangling    model.DanglingPolicy

	logLevel slog.Level
	port     string
	location *time.Location

	metricCollectionInterval time.Duration
}

func NewConfig() (*Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("NewConfig: parse env: %w", err)
	}

	dangling, err := model.ParseDanglingPolicy(raw.DanglingReferences)
	if err != nil {
		return nil, fmt.Errorf("NewConfig: CALENDAR_DANGLING_REFERENCES: %w", err)
	}

	logLevel, err := ParseLogLevel(raw.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("NewConfig: LOG_LEVEL: %w", err)
	}

	if raw.MetricInterval <= 0 {
		return nil, fmt.Errorf("NewConfig: METRIC_COLLECTION_INTERVAL must be positive, got %s", raw.MetricInterval)
	}

	if strings.TrimSpace(raw.DBPath) == "" {
		return nil, fmt.Errorf("NewConfig: CALENDAR_DB_PATH is blank")
	}

	var loc *time.Location
	switch raw.Timezone {
	case "":
		slog.Debug("TIMEZONE is not set, using local timezone", "timezone", time.Local)
		loc = time.Local
	case "UTC":
		loc = time.UTC
	default:
		loc, err = time.LoadLocation(raw.Timezone)
		if err != nil {
			return nil, fmt.Errorf("NewConfig: invalid TIMEZONE %q: %w", raw.Timezone, err)
		}
	}

	slog.Debug("env",
		"CALENDAR_DB_PATH", raw.DBPath,
		"CALENDAR_DB_FOREIGN_KEYS", raw.ForeignKeys,
		"CALENDAR_DANGLING_REFERENCES", dangling,
		"LOG_LEVEL", logLevel,
		"PORT", raw.Port,
		"TIMEZONE", loc,
		"METRIC_COLLECTION_INTERVAL", raw.MetricInterval,
	)

	return &Config{
		dbPath:                   raw.DBPath,
		foreignKeys:              raw.ForeignKeys,
		dangling:                 dangling,
		logLevel:                 logLevel,
		port:                     raw.Port,
		location:                 loc,
		metricCollectionInterval: raw.MetricInterval,
	}, nil
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Get CALENDAR_DB_PATH env, default to ./calendar.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// SetDBPath overrides the database path, used by the --db flag.
func (c *Config) SetDBPath(path string) {
	if path != "" {
		c.dbPath = path
	}
}

// Get CALENDAR_DB_FOREIGN_KEYS env
func (c *Config) GetForeignKeys() bool {
	return c.foreignKeys
}

// Get CALENDAR_DANGLING_REFERENCES env
func (c *Config) GetDanglingPolicy() model.DanglingPolicy {
	return c.dangling
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
