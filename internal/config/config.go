package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Database    string `mapstructure:"database"`
	Compression string `mapstructure:"compression"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	NoProgress  bool   `mapstructure:"no_progress"`
}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	// Set defaults
	viper.SetDefault("database", "swg.db")
	viper.SetDefault("compression", "zlib")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("no_progress", false)

	// Config file handling
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName("swgdb")
		viper.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateCompression(cfg.Compression); err != nil {
		return nil, fmt.Errorf("invalid compression configuration: %w", err)
	}

	return &cfg, nil
}

// validateCompression rejects compression method names the archive
// format has no codec for.
func validateCompression(name string) error {
	switch name {
	case "none", "zlib":
		return nil
	}
	return fmt.Errorf("unknown compression method %q (expected none or zlib)", name)
}
