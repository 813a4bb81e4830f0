// Package config loads settings from the config file, environment, and
// defaults, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete snapmerge configuration
type Config struct {
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MongoConfig contains document store connection settings
type MongoConfig struct {
	URI                     string `mapstructure:"uri"`
	Database                string `mapstructure:"database"`
	EquipmentCollection     string `mapstructure:"equipment_collection"`
	SelectOptionsCollection string `mapstructure:"select_options_collection"`
}

// BackupConfig contains snapshot storage settings
type BackupConfig struct {
	Directory     string  `mapstructure:"directory"`
	IntervalHours float64 `mapstructure:"interval_hours"`
	RetentionDays int     `mapstructure:"retention_days"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Mongo: MongoConfig{
			URI:                     "mongodb://localhost:27017",
			Database:                "inventory",
			EquipmentCollection:     "equipment",
			SelectOptionsCollection: "select_options",
		},
		Backup: BackupConfig{
			Directory:     filepath.Join(homeDir, ".snapmerge", "backups"),
			IntervalHours: 1,
			RetentionDays: 7,
		},
		Output: OutputConfig{
			Format:  "table",
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".snapmerge"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SNAPMERGE")
	viper.AutomaticEnv()

	// Map environment variables to config keys. The bare MONGO_URI form is
	// what docker-compose setups usually export.
	viper.BindEnv("mongo.uri", "SNAPMERGE_MONGO_URI", "MONGO_URI")
	viper.BindEnv("mongo.database", "SNAPMERGE_MONGO_DATABASE", "MONGO_DATABASE")
	viper.BindEnv("backup.directory", "SNAPMERGE_BACKUP_DIR")
	viper.BindEnv("backup.interval_hours", "SNAPMERGE_BACKUP_INTERVAL_HOURS")
	viper.BindEnv("backup.retention_days", "SNAPMERGE_BACKUP_RETENTION_DAYS")
	viper.BindEnv("logging.level", "SNAPMERGE_LOG_LEVEL", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we'll use defaults
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo database name is required")
	}
	if c.Backup.Directory == "" {
		return fmt.Errorf("backup directory is required")
	}
	if c.Backup.RetentionDays <= 0 {
		return fmt.Errorf("backup retention must be at least one day")
	}
	return nil
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	expanded, err := expandPath(c.Backup.Directory)
	if err != nil {
		return fmt.Errorf("failed to expand backup directory: %w", err)
	}
	c.Backup.Directory = expanded
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
