// Package config provides configuration loading for tripreport.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. YAML configuration file
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern TRIPS_<SECTION>_<KEY>:
//
//	TRIPS_PIPELINE_INPUT_DIR=/data/divvy
//	TRIPS_PIPELINE_TOP_STATIONS=10
//	TRIPS_OUTPUT_EXCEL=true
//	TRIPS_LOGGING_LEVEL=debug
//
// # Paths
//
// Paths resolves the configured input, output and log locations against a
// base directory so relative settings behave the same from any caller.
package config
