package app

import (
	"fmt"
	"io"
)

// Config holds everything an App instance needs.
type Config struct {
	LogFormat string
	LogLevel  string

	// MinPositiveMean and Floor override the forecast clamps when positive.
	MinPositiveMean float64
	Floor           float64
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if _, err := newLogger(cfg.LogLevel, cfg.LogFormat, io.Discard); err != nil {
		return nil, err
	}
	if cfg.MinPositiveMean < 0 || cfg.Floor < 0 {
		return nil, fmt.Errorf("forecast clamps must not be negative")
	}
	return &cfg, nil
}
