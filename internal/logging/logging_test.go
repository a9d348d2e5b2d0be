package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/rural-credit/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"Defaults", config.LoggingConfig{}, "", zapcore.InfoLevel, false},
		{"Config level", config.LoggingConfig{Level: "warn"}, "", zapcore.WarnLevel, false},
		{"Override wins", config.LoggingConfig{Level: "error"}, "debug", zapcore.DebugLevel, false},
		{"Warning alias", config.LoggingConfig{Level: "warning", Format: "console"}, "", zapcore.WarnLevel, false},
		{"Case insensitive", config.LoggingConfig{Level: "DEBUG", Format: "JSON"}, "", zapcore.DebugLevel, false},
		{"Bad level", config.LoggingConfig{Level: "trace"}, "", 0, true},
		{"Bad override", config.LoggingConfig{Level: "info"}, "verbose", 0, true},
		{"Bad format", config.LoggingConfig{Format: "logfmt"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Errorf("New() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level %s to be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestNewOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rural-credit.log")

	logger, err := New(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("expected log file to contain the entry")
	}
}
