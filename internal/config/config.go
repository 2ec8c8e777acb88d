package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "sourcemaps/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/sourcemaps.log" validate:"required_unless=Output console"`
}

// PathsConfig contains the input and output locations, relative to the working directory
type PathsConfig struct {
	InputFile       string `yaml:"input_file" envconfig:"INPUT_FILE" default:"categories-tables-us.csv" validate:"required"`
	InputSheet      string `yaml:"input_sheet" envconfig:"INPUT_SHEET"`
	NodeTableFile   string `yaml:"node_table_file" envconfig:"NODE_TABLE_FILE" default:"all_tables.csv" validate:"required"`
	StreamTableFile string `yaml:"stream_table_file" envconfig:"STREAM_TABLE_FILE" default:"composed_streams.csv" validate:"required"`
	WorkbookFile    string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
}

// PipelineConfig contains the taxonomy normalization settings
type PipelineConfig struct {
	RootID              string `yaml:"root_id" envconfig:"ROOT_ID" default:"999" validate:"required"`
	RootName            string `yaml:"root_name" envconfig:"ROOT_NAME" default:"CPI" validate:"required"`
	MaxIdentifierLength int    `yaml:"max_identifier_length" envconfig:"MAX_IDENTIFIER_LENGTH" default:"32" validate:"min=2"`
	Alternation         string `yaml:"alternation" envconfig:"ALTERNATION" default:"keep-first" validate:"oneof=keep-first legacy"`
}

// TelemetryConfig contains optional trace and metrics outputs; empty disables them
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"sourcemaps" validate:"required"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from file %s", configFile), err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no environment and no file
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/sourcemaps.log",
		},
		Paths: PathsConfig{
			InputFile:       "categories-tables-us.csv",
			NodeTableFile:   "all_tables.csv",
			StreamTableFile: "composed_streams.csv",
		},
		Pipeline: PipelineConfig{
			RootID:              "999",
			RootName:            "CPI",
			MaxIdentifierLength: 32,
			Alternation:         "keep-first",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}

// getConfigFilePath returns the YAML file location
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	return DefaultConfigFile
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// A file value wins only when its variable is unset and it is not the zero value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	key := func(section, name string) string { return EnvPrefix + "_" + section + "_" + name }

	// Logging config
	envConfig.Logging.Level = pick(key("LOGGING", "LEVEL"), envConfig.Logging.Level, fileConfig.Logging.Level)
	envConfig.Logging.Format = pick(key("LOGGING", "FORMAT"), envConfig.Logging.Format, fileConfig.Logging.Format)
	envConfig.Logging.Output = pick(key("LOGGING", "OUTPUT"), envConfig.Logging.Output, fileConfig.Logging.Output)
	envConfig.Logging.FilePath = pick(key("LOGGING", "FILE_PATH"), envConfig.Logging.FilePath, fileConfig.Logging.FilePath)

	// Paths config
	envConfig.Paths.InputFile = pick(key("PATHS", "INPUT_FILE"), envConfig.Paths.InputFile, fileConfig.Paths.InputFile)
	envConfig.Paths.InputSheet = pick(key("PATHS", "INPUT_SHEET"), envConfig.Paths.InputSheet, fileConfig.Paths.InputSheet)
	envConfig.Paths.NodeTableFile = pick(key("PATHS", "NODE_TABLE_FILE"), envConfig.Paths.NodeTableFile, fileConfig.Paths.NodeTableFile)
	envConfig.Paths.StreamTableFile = pick(key("PATHS", "STREAM_TABLE_FILE"), envConfig.Paths.StreamTableFile, fileConfig.Paths.StreamTableFile)
	envConfig.Paths.WorkbookFile = pick(key("PATHS", "WORKBOOK_FILE"), envConfig.Paths.WorkbookFile, fileConfig.Paths.WorkbookFile)

	// Pipeline config
	envConfig.Pipeline.RootID = pick(key("PIPELINE", "ROOT_ID"), envConfig.Pipeline.RootID, fileConfig.Pipeline.RootID)
	envConfig.Pipeline.RootName = pick(key("PIPELINE", "ROOT_NAME"), envConfig.Pipeline.RootName, fileConfig.Pipeline.RootName)
	envConfig.Pipeline.MaxIdentifierLength = pick(key("PIPELINE", "MAX_IDENTIFIER_LENGTH"), envConfig.Pipeline.MaxIdentifierLength, fileConfig.Pipeline.MaxIdentifierLength)
	envConfig.Pipeline.Alternation = pick(key("PIPELINE", "ALTERNATION"), envConfig.Pipeline.Alternation, fileConfig.Pipeline.Alternation)

	// Telemetry config
	envConfig.Telemetry.ServiceName = pick(key("TELEMETRY", "SERVICE_NAME"), envConfig.Telemetry.ServiceName, fileConfig.Telemetry.ServiceName)
	envConfig.Telemetry.TraceFile = pick(key("TELEMETRY", "TRACE_FILE"), envConfig.Telemetry.TraceFile, fileConfig.Telemetry.TraceFile)
	envConfig.Telemetry.MetricsFile = pick(key("TELEMETRY", "METRICS_FILE"), envConfig.Telemetry.MetricsFile, fileConfig.Telemetry.MetricsFile)

	return envConfig
}

func pick[T comparable](envKey string, envValue, fileValue T) T {
	var zero T
	if _, set := os.LookupEnv(envKey); set || fileValue == zero {
		return envValue
	}
	return fileValue
}

// validate validates the configuration
func (c *Config) validate() error {
	return validator.New().Struct(c)
}
