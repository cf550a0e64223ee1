// Package config provides Viper-based configuration loading for evspread.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. Reports go to stdout, so
	// logs default to stderr.
	Output string `mapstructure:"output"`
}

// Dex sources.
const (
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// DexConfig selects where reference data comes from.
type DexConfig struct {
	// Source is "yaml" or "postgres".
	Source string `mapstructure:"source"`
	// Dir is the YAML content directory. Required for the yaml source and for import-dex.
	Dir string `mapstructure:"dir"`
}

// SolverConfig holds allocation solver settings.
type SolverConfig struct {
	// RetypeMode is "full" or "multiplier_only".
	RetypeMode string `mapstructure:"retype_mode"`
	// Workers bounds how many requests are solved in parallel.
	Workers int `mapstructure:"workers"`
	// Seed, when non-zero, makes reported damage rolls reproducible.
	Seed uint64 `mapstructure:"seed"`
}

// ScriptingConfig holds Lua modifier script settings.
type ScriptingConfig struct {
	// Dir holds *.lua modifier scripts. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the VM instructions per hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	// Dir receives xlsx reports. Empty disables the report.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dex       DexConfig       `mapstructure:"dex"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Output    OutputConfig    `mapstructure:"output"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDex(c.Dex); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSolver(c.Solver); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateDex(d DexConfig) error {
	switch d.Source {
	case SourceYAML:
		if d.Dir == "" {
			return errors.New("dex.dir must not be empty when dex.source is yaml")
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("dex.source must be one of [yaml, postgres], got %q", d.Source)
	}
	return nil
}

func validateSolver(s SolverConfig) error {
	var errs []string
	if s.RetypeMode != "full" && s.RetypeMode != "multiplier_only" {
		errs = append(errs, fmt.Sprintf("solver.retype_mode must be one of [full, multiplier_only], got %q", s.RetypeMode))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Sprintf("solver.workers must be >= 1, got %d", s.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with EVSPREAD_ prefix
	v.SetEnvPrefix("EVSPREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance carrying only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "evspread")
	v.SetDefault("database.password", "evspread")
	v.SetDefault("database.name", "evspread")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("dex.source", SourceYAML)
	v.SetDefault("dex.dir", "content/dex")

	v.SetDefault("solver.retype_mode", "full")
	v.SetDefault("solver.workers", 4)
	v.SetDefault("solver.seed", 0)

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("output.dir", "")
}
