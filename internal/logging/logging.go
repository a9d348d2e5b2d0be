// Package logging builds the zap logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/rural-credit/internal/config"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger from the logging section of a case file or server
// config. A non-empty logLevelOverride (the -log-level flag) wins over the
// configured level.
func New(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if err := validation.ValidateLogLevel(level); err != nil {
		return nil, err
	}
	level = strings.ToLower(level)
	switch level {
	case "":
		level = constants.DefaultLogLevel
	case "warning":
		level = "warn"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := strings.ToLower(loggingConfig.Format)
	if err := validation.ValidateLogFormat(format); err != nil {
		return nil, err
	}
	if format == "" {
		format = constants.DefaultLogFormat
	}

	zapConfig := zap.NewProductionConfig()
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}
