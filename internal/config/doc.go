// Package config loads the pipeline configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML file named by SOURCEMAPS_CONFIG_FILE, or ./sourcemaps.yaml
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SOURCEMAPS_<SECTION>_<FIELD>:
//
//	SOURCEMAPS_PATHS_INPUT_FILE=categories-tables-us.xlsx
//	SOURCEMAPS_PIPELINE_ALTERNATION=legacy
//	SOURCEMAPS_LOGGING_LEVEL=debug
//	SOURCEMAPS_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/sourcemaps.prom
//
// # Paths
//
// Paths are relative to the working directory unless absolute. GetPaths
// resolves them once; OutputDirs lists the directories the outputs land in.
package config
