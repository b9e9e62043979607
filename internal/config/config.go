// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory question queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of judgment workers.
	WorkerCount int `koanf:"worker_count"`

	// CacheSize bounds the chart cache. Zero disables caching.
	CacheSize int `koanf:"cache_size"`

	// StoreDriver selects the question store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the SQLite database file.
	StorePath string `koanf:"store_path"`

	// HouseSystem is regiomontanus, porphyry or equal.
	HouseSystem string `koanf:"house_system"`

	// IncludePoints adds the nodes and Part of Fortune to aspect detection.
	IncludePoints bool `koanf:"include_points"`

	// EnableQuincunx adds the 150 degree aspect.
	EnableQuincunx bool `koanf:"enable_quincunx"`

	// EphemerisMinYear and EphemerisMaxYear bound the supported dates.
	EphemerisMinYear int `koanf:"ephemeris_min_year"`
	EphemerisMaxYear int `koanf:"ephemeris_max_year"`

	// Fallback location used when a question carries no coordinate.
	FallbackLatitude     float64 `koanf:"fallback_latitude"`
	FallbackLongitude    float64 `koanf:"fallback_longitude"`
	FallbackLocationName string  `koanf:"fallback_location_name"`

	// RecastConcurrency caps concurrent re-judgments in a batch recast.
	RecastConcurrency int `koanf:"recast_concurrency"`

	// MaxListLimit caps GET /questions?limit.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		CacheSize:            10_000,
		StoreDriver:          StoreMemory,
		StorePath:            "horary.db",
		HouseSystem:          "regiomontanus",
		EphemerisMinYear:     1800,
		EphemerisMaxYear:     2199,
		FallbackLatitude:     51.4769,
		FallbackLongitude:    -0.0005,
		FallbackLocationName: "Greenwich",
		RecastConcurrency:    runtime.NumCPU(),
		MaxListLimit:         100,
	}
}
