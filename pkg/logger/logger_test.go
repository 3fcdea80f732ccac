package logger

import (
	"examhub_backend/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		mode, level string
		want        string
	}{
		{"debug", "error", "debug"},
		{"release", "warn", "warn"},
		{"release", "", "info"},
		{"release", "nonsense", "info"},
	}
	for _, tt := range tests {
		cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
		assert.Equal(t, tt.want, ResolveLevel(cfg).String(), "mode=%s level=%s", tt.mode, tt.level)
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel(&config.Config{Server: config.ServerConfig{Mode: "release"}, Log: config.LogConfig{Level: "error"}})
	assert.Equal(t, zap.ErrorLevel, Level())

	SetLevel(&config.Config{Server: config.ServerConfig{Mode: "release"}, Log: config.LogConfig{Level: "info"}})
	assert.Equal(t, zap.InfoLevel, Level())
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotPanics(t, func() {
		Log.Info("no-op")
	})
}
