// Package config loads and saves the table.toml file that describes a
// table: its title, resource, columns, data source and logging.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/util"
)

// Source kinds
const (
	SourceMemory   = "memory"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config represents a table.toml file
type Config struct {
	Title            string `toml:"title" config:"title" default:"Comments" desc:"Title shown above the table"`
	APIURL           string `toml:"api_url" config:"api_url" default:"/comments" desc:"Resource passed verbatim to the data source"`
	RowIdentifier    string `toml:"row_identifier" config:"row_identifier" default:"id" desc:"Field that keys each row"`
	PageSize         int    `toml:"page_size" config:"page_size" default:"10" min:"1" max:"1000" desc:"Rows per page (memory and SQL sources)"`
	MaxPagesToRender int    `toml:"max_pages_to_render" config:"max_pages_to_render" default:"10" min:"1" max:"99" desc:"Numbered page controls shown"`
	PageCount        int    `toml:"page_count" config:"page_count" default:"0" min:"0" max:"1000000" desc:"Known number of pages (0 = unknown)"`
	Searchable       bool   `toml:"searchable" config:"searchable" default:"true" desc:"Show the search box"`
	Paginatable      bool   `toml:"paginatable" config:"paginatable" default:"true" desc:"Show the paginator"`

	Source  SourceConfig    `toml:"source"`
	Log     LogConfig       `toml:"log"`
	Columns []record.Column `toml:"columns"`
}

// SourceConfig selects and configures the data source
type SourceConfig struct {
	Kind           string  `toml:"kind" config:"source.kind" default:"memory" desc:"memory, http, postgres or sqlite"`
	BaseURL        string  `toml:"base_url" config:"source.base_url" default:"http://127.0.0.1:7488" desc:"Base for relative api_url values (http)"`
	DSN            string  `toml:"dsn" config:"source.dsn" desc:"Database DSN (postgres, sqlite)"`
	TimeoutSeconds int     `toml:"timeout_seconds" config:"source.timeout_seconds" default:"10" min:"1" max:"600" desc:"Request timeout (http)"`
	RateLimit      float64 `toml:"rate_limit" config:"source.rate_limit" default:"0" desc:"Max requests per second, 0 = unlimited (http)"`
	RateBurst      int     `toml:"rate_burst" config:"source.rate_burst" default:"1" min:"1" max:"100" desc:"Request burst size (http)"`
}

// LogConfig controls the debug log file
type LogConfig struct {
	File       string `toml:"file" config:"log.file" desc:"Log file, empty disables logging"`
	Level      string `toml:"level" config:"log.level" default:"info" desc:"debug, info, warn or error"`
	MaxSizeMB  int    `toml:"max_size_mb" config:"log.max_size_mb" default:"5" min:"1" max:"1024" desc:"Rotate after this many megabytes"`
	MaxBackups int    `toml:"max_backups" config:"log.max_backups" default:"3" min:"0" max:"100" desc:"Rotated files to keep"`
}

// DefaultConfig returns the demo table over the embedded comment fixtures
func DefaultConfig() *Config {
	return &Config{
		Title:            "Comments",
		APIURL:           fixture.Resource,
		RowIdentifier:    "id",
		PageSize:         10,
		MaxPagesToRender: 10,
		Searchable:       true,
		Paginatable:      true,
		Source: SourceConfig{
			Kind:           SourceMemory,
			BaseURL:        "http://127.0.0.1:7488",
			TimeoutSeconds: 10,
			RateBurst:      1,
		},
		Log: LogConfig{
			File:       filepath.Join(util.StateDir(), util.LogFile),
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Columns: fixture.CommentColumns(),
	}
}

// DefaultPath returns the path of the per-user table config
func DefaultPath() string {
	return filepath.Join(util.ConfigDir(), util.ConfigFile)
}

// Load reads a config file. Settings missing from the file keep their
// defaults, except columns: a file that defines a table defines all of it.
func Load(path string) (*Config, error) {
	path = util.ExpandHome(path)

	cfg := DefaultConfig()
	cfg.Columns = nil

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, util.ConfigNotFoundError(path)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Columns without an id are numbered by position
	for i := range cfg.Columns {
		if cfg.Columns[i].ID == 0 {
			cfg.Columns[i].ID = i + 1
		}
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, util.ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Save writes the config file
func (c *Config) Save(path string) error {
	path = util.ExpandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// Validate checks the settings a table needs before it can run
func (c *Config) Validate() error {
	if c.RowIdentifier == "" {
		return util.NewError("Row identifier not configured").
			WithSuggestion("lttable config row_identifier id").
			Wrap(util.ErrNoRowIdentifier)
	}
	if len(c.Columns) == 0 {
		return util.NewError("No columns configured").
			WithMessage("Add at least one [[columns]] table to the config file").
			Wrap(util.ErrNoColumns)
	}
	if err := record.ValidateColumns(c.Columns); err != nil {
		return util.NewError("Invalid column definition").Wrap(err)
	}
	switch c.Source.Kind {
	case SourceMemory, SourceHTTP, SourcePostgres, SourceSQLite:
	default:
		return util.UnknownSourceError(c.Source.Kind)
	}
	if (c.Source.Kind == SourcePostgres || c.Source.Kind == SourceSQLite) && c.Source.DSN == "" {
		return util.NewError("Database DSN not configured").
			WithMessage(fmt.Sprintf("source.kind %q needs source.dsn", c.Source.Kind)).
			WithSuggestion("lttable config source.dsn <dsn>")
	}
	return nil
}

// Column returns the column with the given data path
func (c *Config) Column(dataPath string) (record.Column, bool) {
	for _, col := range c.Columns {
		if col.DataPath == dataPath {
			return col, true
		}
	}
	return record.Column{}, false
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
