// Package config loads project settings from .scalpel.kdl, with a
// .scalpel.toml fallback for projects that prefer TOML. Everything has a
// default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/parser"
)

const (
	kdlFileName  = ".scalpel.kdl"
	tomlFileName = ".scalpel.toml"
)

// Config is the project configuration.
type Config struct {
	Cache Cache `toml:"cache"`
	// Languages maps filename globs to language names, routing
	// nonstandard extensions to a grammar.
	Languages map[string]string `toml:"languages"`
	// TempVars maps a language name to the template used for hoisted
	// argument bindings during inlining. Placeholders: {type}, {name},
	// {value}.
	TempVars map[string]string `toml:"tempvars"`
}

// Cache bounds the per-request parse tree cache.
type Cache struct {
	Trees int `toml:"trees"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Cache:     Cache{Trees: parser.DefaultCacheSize},
		Languages: map[string]string{},
		TempVars:  map[string]string{},
	}
}

// Resolver builds the language resolver configured by this file.
func (c *Config) Resolver() (*lang.Resolver, error) {
	return lang.NewResolver(c.Languages)
}

// ApplyTempVars installs the configured temp-var templates into the grammar
// registry. Call once at startup.
func (c *Config) ApplyTempVars() error {
	for name, format := range c.TempVars {
		l, err := lang.FromName(name)
		if err != nil {
			return scerrors.NewConfigError("tempvars", name, err)
		}
		if err := grammar.OverrideTempVarFormat(l, format); err != nil {
			return scerrors.NewConfigError("tempvars", name, err)
		}
	}
	return nil
}

// Load reads the configuration from dir, preferring .scalpel.kdl over
// .scalpel.toml. When neither exists the defaults are returned.
func Load(dir string) (*Config, error) {
	if cfg, err := loadKDL(filepath.Join(dir, kdlFileName)); cfg != nil || err != nil {
		return cfg, err
	}
	if cfg, err := loadTOML(filepath.Join(dir, tomlFileName)); cfg != nil || err != nil {
		return cfg, err
	}
	return Default(), nil
}

// LoadFile reads a specific configuration file, dispatching on extension.
func LoadFile(path string) (*Config, error) {
	if filepath.Ext(path) == ".toml" {
		cfg, err := loadTOML(path)
		if cfg == nil && err == nil {
			err = scerrors.NewConfigError("config", path, os.ErrNotExist)
		}
		return cfg, err
	}
	cfg, err := loadKDL(path)
	if cfg == nil && err == nil {
		err = scerrors.NewConfigError("config", path, os.ErrNotExist)
	}
	return cfg, err
}

func loadTOML(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, scerrors.NewConfigError("config", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, scerrors.NewConfigError("config", path, fmt.Errorf("invalid TOML: %w", err))
	}
	return validated(cfg, path)
}

func validated(cfg *Config, path string) (*Config, error) {
	if cfg.Cache.Trees < 0 {
		return nil, scerrors.NewConfigError("cache.trees", fmt.Sprint(cfg.Cache.Trees),
			fmt.Errorf("must not be negative"))
	}
	if cfg.Cache.Trees == 0 {
		cfg.Cache.Trees = parser.DefaultCacheSize
	}
	// Fail early on bad globs or unknown language names.
	if _, err := cfg.Resolver(); err != nil {
		return nil, err
	}
	for name, format := range cfg.TempVars {
		if _, err := lang.FromName(name); err != nil {
			return nil, scerrors.NewConfigError("tempvars", name, err)
		}
		if !strings.Contains(format, "{name}") || !strings.Contains(format, "{value}") {
			return nil, scerrors.NewConfigError("tempvars", name,
				fmt.Errorf("template must contain {name} and {value}"))
		}
	}
	return cfg, nil
}
