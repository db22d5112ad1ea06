// Package constants provides shared constants for the finsim application.
package constants

// DateTimeLayout is the year-month format expected in config files and is
// also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerPeriod approximates the number of days in one monthly period,
	// used when no start date is available for exact day counts
	DaysPerPeriod = 30

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PayoffTolerance is the residual balance below which a loan is
	// considered fully amortized
	PayoffTolerance = 0.005

	// DefaultIOFFactor is the fixed first-period IOF penalty factor used
	// when no explicit factor is configured
	DefaultIOFFactor = 0.30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum size for JSON
	// simulation requests (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024
)
