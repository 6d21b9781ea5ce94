// internal/pkg/logger/logger.go
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds the process logger from the logging config. An unknown level
// falls back to info.
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}
