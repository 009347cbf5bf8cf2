// Package config loads turbtax settings from a YAML file, a .env file and
// TURBTAX_* environment variables, in that order of increasing precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Environment variables read by Load.
const (
	EnvConfig      = "TURBTAX_CONFIG"
	EnvDriver      = "TURBTAX_DRIVER"
	EnvDB          = "TURBTAX_DB"
	EnvDSN         = "TURBTAX_DSN"
	EnvCurrency    = "TURBTAX_CURRENCY"
	EnvCompounding = "TURBTAX_COMPOUNDING"
)

// DotEnvFile is the dotenv file Load reads from the working directory.
const DotEnvFile = ".env"

// Config is the complete turbtax configuration.
type Config struct {
	Database    DatabaseConfig `json:"database" yaml:"database"`
	Currency    string         `json:"currency" yaml:"currency"`
	Compounding int            `json:"compounding" yaml:"compounding"`
	Format      string         `json:"format" yaml:"format"`
	LogLevel    string         `json:"log_level" yaml:"log_level"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "postgres"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Default returns the configuration used when nothing else is given:
// a SQLite database under ./files, USD display and monthly compounding.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(".", "files", "turb_tax.db"),
		},
		Currency:    "USD",
		Compounding: 12,
		Format:      "text",
		LogLevel:    "warn",
	}
}

// Load builds the effective configuration.
//
// Precedence (lowest first): Default, the YAML file at path (or at
// $TURBTAX_CONFIG when path is empty), then environment variables. A .env
// file in the working directory is loaded into the environment first and
// never overrides variables that are already set.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// mergeFile overlays the YAML file onto c. Unknown keys are rejected.
func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		c.Currency = strings.ToUpper(v)
	}
	if v := os.Getenv(EnvCompounding); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvCompounding, v)
		}
		c.Compounding = n
	}
	return nil
}

// Validate checks c against the embedded CUE schema, then the rules the
// schema cannot express.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	val := def.Unify(ctx.Encode(c))
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	}

	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("unknown currency: %s", c.Currency)
	}
	return nil
}

// Source returns the driver name and data source for store.OpenDriver.
func (c *Config) Source() (driver, dsn string) {
	if c.Database.Driver == "postgres" {
		return c.Database.Driver, c.Database.DSN
	}
	return c.Database.Driver, c.Database.Path
}

// Level maps LogLevel onto a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

