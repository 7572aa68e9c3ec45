package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrInvalidWindowSize    = errors.New("engine windowSize must be positive")
	ErrInvalidLookback      = errors.New("engine lookback must be positive")
	ErrInvalidRange         = errors.New("engine rangeStart must not be after rangeEnd")
	ErrMissingRange         = errors.New("engine rangeStart and rangeEnd are required")
	ErrInvalidSampleBackend = errors.New("storage sampleBackend must be one of: memory, clickhouse")
	ErrInvalidStateBackend  = errors.New("storage snapshotBackend must be one of: none, sqlite, postgres")
	ErrMissingClickhouseDSN = errors.New("storage clickhouseDSN is required for the clickhouse backend")
	ErrMissingPostgresDSN   = errors.New("storage postgresDSN is required for the postgres backend")
)
