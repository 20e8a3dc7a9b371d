package mysqltools

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Analysis modes
const (
	AnalysisAuto      = "auto"
	AnalysisProcedure = "procedure"
	AnalysisEmulate   = "emulate"
)

// Config represents the mysqltools configuration
type Config struct {
	Databases  map[string]Database `yaml:"databases"`
	Snapshot   SnapshotConfig      `yaml:"snapshot"`
	Analysis   AnalysisConfig      `yaml:"analysis"`
	Optimize   OptimizeConfig      `yaml:"optimize"`
	Duplicates DuplicatesConfig    `yaml:"duplicates"`
	Load       BulkLoadConfig      `yaml:"load"`
}

// Database represents database connection configuration
type Database struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"` // mysql:// URL or go-sql-driver DSN
	Database   string `yaml:"database"`   // overrides the database part of Connection
}

// SnapshotConfig controls where schema snapshots are written
type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

// AnalysisConfig selects how per-column statistics are gathered
type AnalysisConfig struct {
	Mode string `yaml:"mode"`
}

// OptimizeConfig holds the enumeration thresholds of the field type classifier
type OptimizeConfig struct {
	MaxEnumValues      int      `yaml:"max_enum_values"`
	MaxEnumValueLength int      `yaml:"max_enum_value_length"`
	Enums              []string `yaml:"enums"`
}

// DuplicatesConfig lists the columns ignored by duplicate detection.
// The identifier column is "<table><id_suffix>".
type DuplicatesConfig struct {
	IDSuffix       string   `yaml:"id_suffix"`
	ExcludeColumns []string `yaml:"exclude_columns"`
}

// BulkLoadConfig represents bulk load settings
type BulkLoadConfig struct {
	Delimiter string `yaml:"delimiter"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data with strict field checking.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

func validateConfig(config *Config) error {
	for name, db := range config.Databases {
		if db.Driver != "" && db.Driver != "mysql" {
			return fmt.Errorf("%w: database '%s': unsupported driver '%s': only mysql is supported", ErrConfigValidation, name, db.Driver)
		}

		if db.Connection == "" {
			return fmt.Errorf("%w: database '%s': connection is required", ErrConfigValidation, name)
		}
	}

	switch config.Analysis.Mode {
	case "", AnalysisAuto, AnalysisProcedure, AnalysisEmulate:
	default:
		return fmt.Errorf("%w: analysis.mode '%s' is invalid: must be one of auto, procedure, emulate", ErrConfigValidation, config.Analysis.Mode)
	}

	if config.Optimize.MaxEnumValues < 0 {
		return fmt.Errorf("%w: optimize.max_enum_values must be non-negative, got %d", ErrConfigValidation, config.Optimize.MaxEnumValues)
	}

	if config.Optimize.MaxEnumValueLength < 0 {
		return fmt.Errorf("%w: optimize.max_enum_value_length must be non-negative, got %d", ErrConfigValidation, config.Optimize.MaxEnumValueLength)
	}

	if len([]rune(config.Load.Delimiter)) > 1 {
		return fmt.Errorf("%w: load.delimiter must be a single character, got %q", ErrConfigValidation, config.Load.Delimiter)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Databases == nil {
		config.Databases = make(map[string]Database)
	}

	for name, db := range config.Databases {
		if db.Driver == "" {
			db.Driver = "mysql"
			config.Databases[name] = db
		}
	}

	if config.Snapshot.Dir == "" {
		config.Snapshot.Dir = "./snapshots"
	}

	if config.Analysis.Mode == "" {
		config.Analysis.Mode = AnalysisAuto
	}

	if config.Optimize.MaxEnumValues == 0 {
		config.Optimize.MaxEnumValues = 30
	}

	if config.Optimize.MaxEnumValueLength == 0 {
		config.Optimize.MaxEnumValueLength = 100
	}

	if config.Duplicates.IDSuffix == "" {
		config.Duplicates.IDSuffix = "_id"
	}

	if config.Duplicates.ExcludeColumns == nil {
		config.Duplicates.ExcludeColumns = []string{"last_change"}
	}

	if config.Load.Delimiter == "" {
		config.Load.Delimiter = "\t"
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExpandEnvVars expands environment variables in the format ${VAR} or $VAR
func ExpandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = ExpandEnvVars(db.Connection)
		db.Driver = ExpandEnvVars(db.Driver)
		db.Database = ExpandEnvVars(db.Database)
		config.Databases[name] = db
	}

	config.Snapshot.Dir = ExpandEnvVars(config.Snapshot.Dir)
}
