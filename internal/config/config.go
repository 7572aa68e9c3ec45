// Package config loads and validates run configuration from a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"price-stats-lab/internal/domain"
)

// Storage backend names.
const (
	SampleBackendMemory     = "memory"
	SampleBackendClickhouse = "clickhouse"

	SnapshotBackendNone     = "none"
	SnapshotBackendSQLite   = "sqlite"
	SnapshotBackendPostgres = "postgres"
)

const (
	defaultWindowSize      = 20
	defaultLookback        = 7 * 24 * time.Hour
	defaultSampleBackend   = SampleBackendMemory
	defaultSnapshotBackend = SnapshotBackendSQLite
	defaultSQLitePath      = "data/stdev_snapshot.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultLogFileEnabled  = false
	defaultLogDirectory    = "log"
	defaultLogFilename     = "app.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 7
	defaultLogCompress     = false

	// Environment variable prefix
	envPrefix = "PRICESTATS"
)

type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Storage StorageConfig `mapstructure:"storage"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

type EngineConfig struct {
	WindowSize int           `mapstructure:"windowSize"`
	Lookback   time.Duration `mapstructure:"lookback"`
	RangeStart string        `mapstructure:"rangeStart"`
	RangeEnd   string        `mapstructure:"rangeEnd"`
}

type StorageConfig struct {
	SampleBackend   string `mapstructure:"sampleBackend"`   // memory | clickhouse
	SnapshotBackend string `mapstructure:"snapshotBackend"` // none | sqlite | postgres
	ClickhouseDSN   string `mapstructure:"clickhouseDSN"`
	PostgresDSN     string `mapstructure:"postgresDSN"`
	SQLitePath      string `mapstructure:"sqlitePath"`
}

type InputConfig struct {
	SamplesCSV  string `mapstructure:"samplesCSV"`
	CcyPairsCSV string `mapstructure:"ccyPairsCSV"`
	SpotCSV     string `mapstructure:"spotCSV"`
	PricesCSV   string `mapstructure:"pricesCSV"`
}

type OutputConfig struct {
	StdevCSV string `mapstructure:"stdevCSV"`
	RatesCSV string `mapstructure:"ratesCSV"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// ReportingRange parses the configured inclusive reporting range.
func (e EngineConfig) ReportingRange() (domain.TimeRange, error) {
	if e.RangeStart == "" || e.RangeEnd == "" {
		return domain.TimeRange{}, ErrMissingRange
	}
	start, err := parseInstant(e.RangeStart)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("rangeStart: %w", err)
	}
	end, err := parseInstant(e.RangeEnd)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("rangeEnd: %w", err)
	}
	return domain.TimeRange{Start: start, End: end}, nil
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)
	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.windowSize", defaultWindowSize)
	v.SetDefault("engine.lookback", defaultLookback)
	v.SetDefault("storage.sampleBackend", defaultSampleBackend)
	v.SetDefault("storage.snapshotBackend", defaultSnapshotBackend)
	v.SetDefault("storage.sqlitePath", defaultSQLitePath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile reads the configuration file if one was set.
func readConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// validateConfig checks the loaded configuration for consistency.
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.Engine.WindowSize <= 0 {
		errs = append(errs, ErrInvalidWindowSize)
	}
	if cfg.Engine.Lookback <= 0 {
		errs = append(errs, ErrInvalidLookback)
	}

	// The range is only required by commands that report over one; parsing
	// is still validated here when configured.
	if cfg.Engine.RangeStart != "" || cfg.Engine.RangeEnd != "" {
		if r, err := cfg.Engine.ReportingRange(); err != nil {
			errs = append(errs, err)
		} else if r.Start.After(r.End) {
			errs = append(errs, ErrInvalidRange)
		}
	}

	switch cfg.Storage.SampleBackend {
	case SampleBackendMemory:
	case SampleBackendClickhouse:
		if cfg.Storage.ClickhouseDSN == "" {
			errs = append(errs, ErrMissingClickhouseDSN)
		}
	default:
		errs = append(errs, ErrInvalidSampleBackend)
	}

	switch cfg.Storage.SnapshotBackend {
	case SnapshotBackendNone, SnapshotBackendSQLite:
	case SnapshotBackendPostgres:
		if cfg.Storage.PostgresDSN == "" {
			errs = append(errs, ErrMissingPostgresDSN)
		}
	default:
		errs = append(errs, ErrInvalidStateBackend)
	}

	return errors.Join(errs...)
}

// parseInstant parses a configured timestamp in any of the accepted layouts.
func parseInstant(s string) (time.Time, error) {
	layouts := []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
