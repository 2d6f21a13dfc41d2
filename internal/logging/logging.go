// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/internal/config"
)

// New returns a logger writing to stdout with the configured level and format.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("logging.format must be text or json, got %q", cfg.Format)
	}
	return l, nil
}
