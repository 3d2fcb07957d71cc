// Package config loads the YAML description of one foreign table: which
// source backs it, its server and table options, the requested columns and
// any connection settings the source needs.
//
//	source: httpjson
//	server:
//	  api_url: http://localhost:8080
//	table:
//	  object: events
//	columns:
//	  - {name: id, type: string}
//	  - {name: created_at, type: timestamp}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/filestore"
	"github.com/koustreak/fdw/internal/logger"
)

// Source variants.
const (
	SourceStatic   = "static"
	SourceHTTPJSON = "httpjson"
	SourceFile     = "file"
	SourceObject   = "object"
	SourceSQLTable = "sqltable"
)

// Output formats for scanned rows.
const (
	OutputJSON = "json"
	OutputCSV  = "csv"
)

type Config struct {
	Log       logger.Config     `yaml:"log"`
	Source    string            `yaml:"source"`
	Server    map[string]string `yaml:"server"`
	Table     map[string]string `yaml:"table"`
	Columns   []Column          `yaml:"columns"`
	HTTP      HTTPConfig        `yaml:"http"`
	Database  *database.Config  `yaml:"database"`
	Filestore *filestore.Config `yaml:"filestore"`
	Output    string            `yaml:"output"`
}

type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a config for the static source with info logging and
// JSON output.
func Default() *Config {
	return &Config{
		Log:    *logger.DefaultConfig(),
		Source: SourceStatic,
		HTTP:   HTTPConfig{Timeout: 30 * time.Second},
		Output: OutputJSON,
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("failed to read config %s", path), err)
	}
	return Parse(b)
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the source is known, its connection block is present
// and every column has a name and a known type. Columns may be empty only
// for sqltable, whose schema can be imported. The database driver name is
// normalised in place.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceStatic, SourceHTTPJSON, SourceFile:
	case SourceObject:
		if c.Filestore == nil {
			return errs.New(errs.ErrKindInvalidInput, "source object requires a filestore block")
		}
	case SourceSQLTable:
		if c.Database == nil {
			return errs.New(errs.ErrKindInvalidInput, "source sqltable requires a database block")
		}
		driver, err := database.ParseDriver(string(c.Database.Driver))
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "invalid database block", err)
		}
		c.Database.Driver = driver
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown source %q", c.Source))
	}

	switch c.Output {
	case OutputJSON, OutputCSV:
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown output format %q", c.Output))
	}

	if len(c.Columns) == 0 && c.Source != SourceSQLTable {
		return errs.New(errs.ErrKindInvalidInput, "at least one column is required")
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Name == "" {
			return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("column %d has no name", i))
		}
		if seen[col.Name] {
			return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("column %q is declared twice", col.Name))
		}
		seen[col.Name] = true
		if _, err := fdw.ParseColumnType(col.Type); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("column %q", col.Name), err)
		}
	}
	return nil
}

// FDWColumns converts the declared columns. Call after Validate.
func (c *Config) FDWColumns() []fdw.Column {
	cols := make([]fdw.Column, 0, len(c.Columns))
	for _, col := range c.Columns {
		typ, _ := fdw.ParseColumnType(col.Type)
		cols = append(cols, fdw.NewColumn(col.Name, typ))
	}
	return cols
}

// Context builds the scan context for cols with the configured options.
func (c *Config) Context(cols []fdw.Column) *fdw.Context {
	return fdw.NewContext(cols, fdw.NewOptions(c.Server), fdw.NewOptions(c.Table))
}
