package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format    string
		expectErr bool
	}{
		{"pretty", false},
		{"csv", false},
		{"json", true},
		{"", true},
		{"CSV", true},
		{" pretty ", true},
	}

	for _, tt := range tests {
		err := ValidateOutputFormat(tt.format)
		if tt.expectErr && err == nil {
			t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
		}
		if !tt.expectErr && err != nil {
			t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
		}
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error for xml")
	}
	if !strings.Contains(err.Error(), `"xml"`) {
		t.Errorf("error should name the rejected format: %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warning", "error"} {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%q) unexpected error = %v", level, err)
		}
	}
	if ValidateLogLevel("trace") == nil {
		t.Errorf("ValidateLogLevel(trace) expected error")
	}

	for _, format := range []string{"", "json", "Console"} {
		if err := ValidateLogFormat(format); err != nil {
			t.Errorf("ValidateLogFormat(%q) unexpected error = %v", format, err)
		}
	}
	if ValidateLogFormat("logfmt") == nil {
		t.Errorf("ValidateLogFormat(logfmt) expected error")
	}
}
