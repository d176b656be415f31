/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the tq configuration file.
//
// The file is YAML. Before parsing, ${VAR} references are expanded from the
// environment, which may first be populated from .env files:
//
//	log_level: info
//	defaults:
//	  format: jsonl
//	  page_size: 500
//	tables:
//	  orders:
//	    backend: dynamodb
//	    table: orders-prod
//	    region: us-east-1
//	    access_key: ${AWS_ACCESS_KEY}
//	    secret_key: ${AWS_SECRET_KEY}
//	  audit:
//	    backend: aztable
//	    table: AuditLog
//	    account: myaccount
//	    account_key: ${AZURE_STORAGE_KEY}
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/tablequery/errors"
)

// DefaultEnvFile is loaded when present and no env files are named explicitly.
const DefaultEnvFile = ".env"

// Config is the top-level configuration.
type Config struct {
	LogLevel string                 `yaml:"log_level"`
	Defaults Defaults               `yaml:"defaults"`
	Tables   map[string]TableConfig `yaml:"tables"`
}

// Defaults apply to every query unless a flag overrides them.
type Defaults struct {
	Format   string `yaml:"format"`
	PageSize int32  `yaml:"page_size"`
	Flatten  bool   `yaml:"flatten"`
}

// AttributeNames maps the fixed entity fields onto attributes of a table
// whose schema does not use the standard names. Empty entries keep the
// backend default.
type AttributeNames struct {
	PartitionKey string `yaml:"partition_key"`
	RowKey       string `yaml:"row_key"`
	Timestamp    string `yaml:"timestamp"`
	Version      string `yaml:"version"`
}

// TableConfig describes how to reach one table. Which fields matter depends
// on Backend.
type TableConfig struct {
	// Name is the key under which the table appears in the config.
	Name    string `yaml:"-"`
	Backend string `yaml:"backend"`
	Table   string `yaml:"table"`

	// dynamodb
	Region         string         `yaml:"region,omitempty"`
	AccessKey      string         `yaml:"access_key,omitempty"`
	SecretKey      string         `yaml:"secret_key,omitempty"`
	Endpoint       string         `yaml:"endpoint,omitempty"`
	Index          string         `yaml:"index,omitempty"`
	ConsistentRead bool           `yaml:"consistent_read,omitempty"`
	Attributes     AttributeNames `yaml:"attributes,omitempty"`

	// aztable
	Account          string `yaml:"account,omitempty"`
	AccountKey       string `yaml:"account_key,omitempty"`
	ServiceURL       string `yaml:"service_url,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`

	// memory
	Fixture string `yaml:"fixture,omitempty"`
}

// Validate checks the fields every backend needs.
func (t TableConfig) Validate() error {
	if t.Backend == "" {
		return errors.NewValidationError("backend", fmt.Sprintf("table %q has no backend", t.Name))
	}
	if t.Table == "" && t.Backend != "memory" {
		return errors.NewValidationError("table", fmt.Sprintf("table %q has no table name", t.Name))
	}
	return nil
}

// Load reads the config file at path. envFiles are loaded into the process
// environment first; when none are given, DefaultEnvFile is loaded if it
// exists. Variables already set in the environment win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// LoadEnv loads .env files into the process environment.
func LoadEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		envFiles = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Parse expands ${VAR} references in data and decodes it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Tables == nil {
		cfg.Tables = make(map[string]TableConfig)
	}
	for name, t := range cfg.Tables {
		t.Name = name
		cfg.Tables[name] = t
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every table entry.
func (c *Config) Validate() error {
	if c.Defaults.PageSize < 0 {
		return errors.NewValidationError("defaults.page_size", "must not be negative")
	}
	for _, name := range c.TableNames() {
		if err := c.Tables[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the entry for name.
func (c *Config) Table(name string) (TableConfig, bool) {
	if c == nil {
		return TableConfig{}, false
	}
	t, ok := c.Tables[name]
	return t, ok
}

// TableNames returns the configured table names in sorted order.
func (c *Config) TableNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
