//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-retailgen.
// Configuration is loaded from config files and environment variables;
// CLI flags take precedence over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// dateLayout is the format of every date setting.
const dateLayout = "2006-01-02"

// Config holds all configuration for pgedge-retailgen.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`

	// S3 holds object storage settings for upload and trigger.
	S3 S3Config `mapstructure:"s3"`

	// Trigger holds configuration for the daily trigger.
	Trigger TriggerConfig `mapstructure:"trigger"`
}

// GenerateConfig holds configuration for data generation.
type GenerateConfig struct {
	// StartDate is the first simulated day (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`

	// Days is the number of days after the start date; 0 generates one day.
	Days int `mapstructure:"days"`

	// Output is the directory the CSV files are written to.
	Output string `mapstructure:"output"`

	// Seed seeds the random stream.
	Seed uint64 `mapstructure:"seed"`

	// Dimension sizes.
	Products  int `mapstructure:"products"`
	Stores    int `mapstructure:"stores"`
	Suppliers int `mapstructure:"suppliers"`
}

// S3Config holds object storage settings.
type S3Config struct {
	// Bucket is the data lake bucket.
	Bucket string `mapstructure:"bucket"`

	// Region is the AWS region of the bucket.
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string `mapstructure:"endpoint"`
}

// TriggerConfig holds configuration for the daily trigger.
type TriggerConfig struct {
	// Date is the day to generate (YYYY-MM-DD); empty means yesterday UTC.
	Date string `mapstructure:"date"`

	// Object keys of the dimension tables.
	ProductsKey  string `mapstructure:"products_key"`
	StoresKey    string `mapstructure:"stores_key"`
	SuppliersKey string `mapstructure:"suppliers_key"`
}

// envBindings maps config keys to the environment variables read for them.
// The first variable set wins.
var envBindings = map[string][]string{
	"connection":            {"RETAILGEN_CONNECTION"},
	"log_level":             {"RETAILGEN_LOG_LEVEL"},
	"generate.start_date":   {"RETAILGEN_START_DATE"},
	"generate.days":         {"RETAILGEN_DAYS"},
	"generate.output":       {"RETAILGEN_OUTPUT"},
	"generate.seed":         {"RETAILGEN_SEED"},
	"generate.products":     {"RETAILGEN_PRODUCTS"},
	"generate.stores":       {"RETAILGEN_STORES"},
	"generate.suppliers":    {"RETAILGEN_SUPPLIERS"},
	"s3.bucket":             {"RETAILGEN_S3_BUCKET", "S3_BUCKET"},
	"s3.region":             {"RETAILGEN_S3_REGION", "AWS_REGION"},
	"s3.endpoint":           {"RETAILGEN_S3_ENDPOINT"},
	"trigger.date":          {"RETAILGEN_TRIGGER_DATE"},
	"trigger.products_key":  {"PRODUCTS_KEY"},
	"trigger.stores_key":    {"STORES_KEY"},
	"trigger.suppliers_key": {"SUPPLIERS_KEY"},
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Generate: GenerateConfig{
			StartDate: "2024-07-01",
			Days:      180,
			Output:    filepath.Join("data", "synthetic"),
			Seed:      42,
			Products:  200,
			Stores:    20,
			Suppliers: 30,
		},
		S3: S3Config{
			Region: "eu-west-2",
		},
		Trigger: TriggerConfig{
			ProductsKey:  "raw/products/products.csv",
			StoresKey:    "raw/stores/stores.csv",
			SuppliersKey: "raw/suppliers/suppliers.csv",
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-retailgen.yaml
// 3. ~/.config/pgedge-retailgen/pgedge-retailgen.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-retailgen")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-retailgen"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("error binding environment for %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file and environment values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the database connection is configured.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	g := c.Generate
	if _, err := time.Parse(dateLayout, g.StartDate); err != nil {
		return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", g.StartDate)
	}
	if g.Days < 0 {
		return fmt.Errorf("days must be non-negative, got %d", g.Days)
	}
	if g.Output == "" {
		return fmt.Errorf("output directory is required")
	}
	if g.Products < 0 || g.Stores < 0 || g.Suppliers < 0 {
		return fmt.Errorf("dimension sizes must be non-negative")
	}
	if g.Products > 0 && g.Suppliers == 0 {
		return fmt.Errorf("products require at least one supplier")
	}
	return nil
}

// ValidateS3 checks configuration required for object storage access.
func (c *Config) ValidateS3() error {
	if c.S3.Bucket == "" {
		return fmt.Errorf("S3 bucket is required")
	}
	return nil
}

// ValidateTrigger checks configuration required for the trigger command.
func (c *Config) ValidateTrigger() error {
	if err := c.ValidateS3(); err != nil {
		return err
	}
	if c.Trigger.Date != "" {
		if _, err := time.Parse(dateLayout, c.Trigger.Date); err != nil {
			return fmt.Errorf("invalid trigger date %q (expected YYYY-MM-DD)", c.Trigger.Date)
		}
	}
	if c.Trigger.ProductsKey == "" || c.Trigger.StoresKey == "" || c.Trigger.SuppliersKey == "" {
		return fmt.Errorf("dimension object keys are required")
	}
	return nil
}
