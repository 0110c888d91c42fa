// Package config loads the macrocycle configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//  1. Default() values
//  2. YAML file (--config flag, MACRO_CONFIG_FILE, or ./macrocycle.yaml)
//  3. Environment variables, including a .env file in the working directory
//
// # Environment Variables
//
// Variables are prefixed with MACRO and follow the struct layout:
//
//	MACRO_ANALYSIS_BASE_QUARTER="1995 1Q"
//	MACRO_ANALYSIS_VERBOSE=true
//	MACRO_OUTPUT_FORMATS=csv,xlsx
//	MACRO_SERVER_PORT=8080
//	MACRO_TELEMETRY_TRACE_EXPORTER=stdout
//
// Run `macrocycle config` to list every variable.
//
// # Validation
//
// Load validates every section and returns an *errors.ConfigurationError
// naming the first offending field. The base quarter must parse with the
// default quarter grammar; whether it lies within the data is checked later,
// once the time axis is known.
package config
