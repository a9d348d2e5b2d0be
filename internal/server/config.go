package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/rural-credit/internal/config"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address        string               `yaml:"address"`
	MaxUploadSize  string               `yaml:"maxUploadSize"`
	AllowedOrigins []string             `yaml:"allowedOrigins"`
	Logging        config.LoggingConfig `yaml:"logging"`
	Policy         policyConfig         `yaml:"policy"`

	uploadSizeBytes int64
}

type policyConfig struct {
	AttentionMargin *float64 `yaml:"attentionMargin"`
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// PolicyConfig returns the compliance policy in case-file form so the engine
// policy is derived the same way for the CLI and the server.
func (c *Config) PolicyConfig() config.PolicyConfig {
	return config.PolicyConfig{AttentionMargin: c.Policy.AttentionMargin}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Policy.AttentionMargin != nil && *c.Policy.AttentionMargin < 0 {
		return fmt.Errorf("policy.attentionMargin must not be negative, got %v", *c.Policy.AttentionMargin)
	}

	bytes, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = bytes
	c.MaxUploadSize = strconv.FormatInt(bytes, 10)
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "1M") into bytes.
// Empty input selects the default limit.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	idx := strings.IndexFunc(upper, func(r rune) bool { return !unicode.IsDigit(r) })
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart, unitPart := upper, ""
	if idx > 0 {
		numPart, unitPart = upper[:idx], strings.TrimSpace(upper[idx:])
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var shift uint
	switch unitPart {
	case "", "B":
		shift = 0
	case "K", "KB":
		shift = 10
	case "M", "MB":
		shift = 20
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	if n > (1<<62)>>shift {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n << shift, nil
}
