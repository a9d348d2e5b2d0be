// Package config defines the data structures of a case file and includes
// functions for loading, validating and converting it.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration holds everything one run of the CLI analyzes.
type Configuration struct {
	Logging   LoggingConfig
	Output    OutputConfig
	Policy    PolicyConfig
	Contracts []Contract `validate:"dive"`
	TCR       []TCRCase  `validate:"dive"`
	Chains    []Chain    `validate:"dive"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"outputFile,omitempty"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `validate:"omitempty,oneof=pretty csv"` // pretty, csv
}

// PolicyConfig holds the non-statutory compliance policy.
type PolicyConfig struct {
	// AttentionMargin in percentage points; nil keeps the compiled default.
	AttentionMargin *float64 `validate:"omitempty,gte=0"`
}

// Contract is one financing contract as written in the case file.
type Contract struct {
	Name         string
	Principal    float64 `validate:"gt=0"`
	AnnualRate   float64 `validate:"gte=0"`
	RateBasis    string  `validate:"omitempty,oneof=nominal effective"`
	Term         int     `validate:"gt=0"`
	System       string  `validate:"required,oneof=price sac saf"`
	Granularity  string  `validate:"omitempty,oneof=monthly annual"`
	PaidPeriods  int     `validate:"gte=0,ltefield=Term"`
	GracePeriods int     `validate:"gte=0"`
	// MoratoryRate and PenaltyRate, when set, are checked against their caps.
	MoratoryRate *float64 `validate:"omitempty,gte=0"`
	PenaltyRate  *float64 `validate:"omitempty,gte=0"`
}

// TCRCase is one Total Real Cost computation.
type TCRCase struct {
	Name      string    `validate:"required"`
	Mode      string    `validate:"required,oneof=pre pos"`
	Principal float64   `validate:"gte=0"`
	Series    []float64 // monthly index variations, percent
	Jm        float64
	FII       float64
	FP        float64
	FA        float64
}

// Chain is an ordered sequence of contracts.
type Chain struct {
	Name  string `validate:"required"`
	Links []Link `validate:"required,min=1,dive"`
}

// Link is one contract of a chain.
type Link struct {
	Order                   int    `validate:"gt=0"`
	Type                    string `validate:"required"`
	Contract                `mapstructure:",squash"`
	PriorOutstandingBalance float64
	IncorporatedCharges     float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix("RURAL_CREDIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// Validate checks the structural rules of the case file. Numeric domain
// rules are left to the engine, which reports them with field detail.
func (conf *Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateConfiguration returns warnings about values the engine will see
// only after defaults were applied.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string
	for _, contract := range conf.Contracts {
		warnings = append(warnings, contract.defaultWarnings("contract "+contract.Name)...)
	}
	for _, chain := range conf.Chains {
		for _, link := range chain.Links {
			warnings = append(warnings, link.Contract.defaultWarnings(fmt.Sprintf("chain %s link %d", chain.Name, link.Order))...)
		}
	}
	for _, tc := range conf.TCR {
		if tc.Mode == "pos" && len(tc.Series) == 0 {
			warnings = append(warnings, fmt.Sprintf("tcr %s has no index series: no monetary correction will be applied", tc.Name))
		}
	}
	return warnings
}

func (c Contract) defaultWarnings(where string) []string {
	var warnings []string
	if c.RateBasis == "" {
		warnings = append(warnings, fmt.Sprintf("%s has no rateBasis, assuming %s", where, DefaultRateBasis))
	}
	if c.Granularity == "" {
		warnings = append(warnings, fmt.Sprintf("%s has no granularity, assuming %s", where, DefaultGranularity))
	}
	return warnings
}
