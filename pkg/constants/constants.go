// Package constants provides shared constants for the water-builder application.
package constants

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Solver mode constants
const (
	// ModeSolve runs a single solve with the configured constraints and goal
	ModeSolve = "solve"

	// ModeBestFit searches constraint templates for the lowest error score
	ModeBestFit = "bestfit"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Solver defaults
const (
	// DefaultMaxSaltPerLiter bounds every salt decision variable (g/L). Brewing
	// additions sit well below this, it only keeps the LP bounded.
	DefaultMaxSaltPerLiter = 5.0

	// DefaultEqualityTolerance is the half-width (ppm) of the band an EQ
	// constraint accepts. Zero means strict equality.
	DefaultEqualityTolerance = 0.0

	// DefaultFeasibilityTolerance is how far (ppm) a projected ion may sit
	// outside its constraint before a solution is rejected.
	DefaultFeasibilityTolerance = 1e-6

	// DefaultSimplexTolerance is handed to the simplex implementation.
	DefaultSimplexTolerance = 1e-10

	// DefaultMaxIterations caps the least-squares coordinate descent sweeps.
	DefaultMaxIterations = 100000

	// DefaultConvergence stops coordinate descent once no variable moves by
	// more than this many g/L in a sweep.
	DefaultConvergence = 1e-12

	// DefaultBestFitWorkers bounds concurrent candidate solves in best fit.
	DefaultBestFitWorkers = 4
)

// Validation constants
const (
	// PPMTolerance is the tolerance for treating ion concentrations as equal
	PPMTolerance = 1e-6

	// DisplayPrecision is the rounding factor for displayed quantities (3 decimal places)
	DisplayPrecision = 1000

	// MilligramsPerGram converts a mass fraction into ppm per g/L
	MilligramsPerGram = 1000.0
)
