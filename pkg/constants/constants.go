// Package constants provides shared constants for the rural-credit engine.
//
// Statutory caps live here on purpose: they derive from statute and
// central-bank regulation and only change with a new release of the engine.
package constants

// Period granularity
const (
	// MonthsPerYear is the number of monthly periods in a year
	MonthsPerYear = 12

	// YearsPerYear is the number of annual periods in a year
	YearsPerYear = 1
)

// Numeric precision
const (
	// CurrencyPlaces is the number of fractional digits of every externally
	// visible currency amount
	CurrencyPlaces int32 = 2

	// RatePlaces is the number of fractional digits kept for displayed
	// percentages and factors
	RatePlaces int32 = 4

	// RatePrecision is the number of fractional digits kept for period rates
	// and other dimensionless ratios used inside the formulas
	RatePrecision int32 = 10

	// FactorPrecision bounds intermediate powers such as (1+i)^n
	FactorPrecision int32 = 16

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Statutory caps, in percent. Not user-editable.
const (
	// RemunerativeCapAnnual is the ceiling for remunerative interest (Decreto
	// 22.626/33 art. 1, Decreto-Lei 167/67 art. 5).
	RemunerativeCapAnnual = "12"

	// MoratoryCapAnnual is the ceiling for moratory interest in rural credit
	// (Decreto-Lei 167/67 art. 5, paragrafo unico).
	MoratoryCapAnnual = "1"

	// PenaltyCap is the ceiling for the contractual penalty (CDC art. 52 par. 1).
	PenaltyCap = "2"
)

// Compliance policy
const (
	// DefaultAttentionMargin is the margin, in percentage points above the cap,
	// still reported as "atencao" instead of "nao_conforme". It covers program
	// rates fixed by the central bank that the engine cannot resolve.
	DefaultAttentionMargin = "0.5"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Logging defaults
const (
	// DefaultLogLevel is used when neither the config nor -log-level sets one
	DefaultLogLevel = "info"

	// DefaultLogFormat is used when the config does not set one
	DefaultLogFormat = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default case file name
	DefaultConfigFile = "cases.yaml"

	// ExampleConfigFile is the example case file name
	ExampleConfigFile = "cases.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = "0.01"
)
