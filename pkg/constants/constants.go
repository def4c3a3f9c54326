// Package constants provides shared constants for the growth-forecast application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// MaxProjectionMonths bounds a single projection (100 years)
	MaxProjectionMonths = 1200
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

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "GROWTH"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimit is the default sustained request rate per second
	DefaultRateLimit = 10.0

	// DefaultRateBurst is the default request burst size
	DefaultRateBurst = 30

	// DefaultCacheTTLSeconds is the default lifetime of cached results
	DefaultCacheTTLSeconds = 600

	// CacheBackendMemory keeps results in process
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps results in redis
	CacheBackendRedis = "redis"

	// CacheBackendNone disables result caching
	CacheBackendNone = "none"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultMortgageInsuranceCutoff is the default LTV cutoff for mortgage insurance
	DefaultMortgageInsuranceCutoff = 78.0
)

// Locale defaults
const (
	// DefaultLocale is the BCP 47 tag used when none is configured
	DefaultLocale = "en-US"

	// DefaultCurrency is the ISO 4217 code used when none is configured
	DefaultCurrency = "USD"
)
