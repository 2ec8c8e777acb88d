package config

import "sourcemaps/pkg/contracts"

// Application constants
const (
	AppName    = "sourcemaps"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable: SOURCEMAPS_PATHS_INPUT_FILE, ...
	EnvPrefix = "SOURCEMAPS"

	// ConfigFileEnv names the variable that points at an optional YAML file.
	ConfigFileEnv = "SOURCEMAPS_CONFIG_FILE"
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "sourcemaps.yaml"
)
