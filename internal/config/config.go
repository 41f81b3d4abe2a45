// Package config loads the engine configuration from an HCL file.
package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/dontreeza/sangpragay-strapi/internal/store"
)

// Config is the root configuration block.
type Config struct {
	// SchemaDir is the directory holding the content-type and component
	// descriptor files.
	SchemaDir string `hcl:"schema_dir"`

	// DefaultLocale seeds the locale registry on startup.
	DefaultLocale string `hcl:"default_locale,optional"`

	// LogLevel sets the hclog level (trace, debug, info, warn, error).
	LogLevel string `hcl:"log_level,optional"`

	// Database configures the backing store.
	Database *Database `hcl:"database,block"`
}

// Database configures the storage connection.
type Database struct {
	// Driver selects the backend: postgres or sqlite.
	Driver string `hcl:"driver"`

	// Postgres connection settings.
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	// Path is the sqlite database file. Empty means in-memory.
	Path string `hcl:"path,optional"`
}

// FromFile decodes and validates the configuration at path.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.SchemaDir, validation.Required),
		validation.Field(&c.Database, validation.Required),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(c.Database,
		validation.Field(&c.Database.Driver,
			validation.Required,
			validation.In(store.DriverPostgres, store.DriverSQLite)),
	)
}

// StoreConfig translates the database block into a store configuration.
func (c *Config) StoreConfig() store.Config {
	d := c.Database
	return store.Config{
		Driver:   d.Driver,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.DBName,
		SSLMode:  d.SSLMode,
		Path:     d.Path,
	}
}
