package logger

import (
	"testing"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		level     logrus.Level
		formatter logrus.Formatter
	}{
		{"json debug", config.LoggingConfig{Level: "debug", Format: "json"}, logrus.DebugLevel, &logrus.JSONFormatter{}},
		{"text warn", config.LoggingConfig{Level: "warn", Format: "text"}, logrus.WarnLevel, &logrus.TextFormatter{}},
		{"bad level", config.LoggingConfig{Level: "loud", Format: "JSON"}, logrus.InfoLevel, &logrus.JSONFormatter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.cfg)
			assert.Equal(t, tt.level, l.GetLevel())
			assert.IsType(t, tt.formatter, l.Formatter)
		})
	}
}
