package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger: JSON-formatted to stdout, with
// the level parsed from Config.LogLevel (invalid values fall back to info).
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
