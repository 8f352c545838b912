// Package config loads runner settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Settings are the defaults shared by every command. Each field can be set
// with a FINSIMS_ prefixed variable; command line flags override them.
type Settings struct {
	DataDir      string `envconfig:"DATA_DIR" default:"data" validate:"required"`
	Format       string `envconfig:"FORMAT" default:"diffusionts" validate:"oneof=diffusionts tsdiff"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	Seed         uint64 `envconfig:"SEED" default:"42"`
	Workers      int    `envconfig:"WORKERS" default:"1" validate:"gte=1,lte=1024"`
	ManifestPath string `envconfig:"MANIFEST"`
	Progress     bool   `envconfig:"PROGRESS" default:"true"`
}

// Load reads the settings from the environment and validates them.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("FINSIMS", &s); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings, typically again after flags were applied.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// NewLogger builds a logger writing to stderr. Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
