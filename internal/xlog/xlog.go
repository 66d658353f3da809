// Package xlog provides the coordinator's single structured logger instance.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New constructs a logrus.Logger writing to stderr at the given level ("debug", "info", "warn", "error"), falling
// back to Info on an unrecognised level.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
