// Package validation checks the presentation options chosen on the command
// line or in a case file.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rural-credit/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %q",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateLogLevel accepts the zap level names plus "warning".
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", level)
}

// ValidateLogFormat accepts json and console; empty selects the default.
func ValidateLogFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("expected log format of json or console, got %q", format)
}
