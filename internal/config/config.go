// Package config loads mdspan settings from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/highlight"
)

// DefaultFile is looked up in the working directory when no config file
// is given explicitly.
const DefaultFile = ".mdspan.yaml"

// Config holds the settings shared by all commands.
type Config struct {
	Delimiter   string            `yaml:"delimiter"`
	DefaultLang string            `yaml:"default_lang"`
	Detect      bool              `yaml:"detect"`
	Aliases     map[string]string `yaml:"aliases"`
	Style       string            `yaml:"style"`
	EmbedRoot   string            `yaml:"embed_root"`
}

// Default returns the settings used without a config file.
func Default() *Config {
	return &Config{
		Delimiter: codespan.DefaultDelimiter,
		Style:     highlight.DefaultStyle,
		EmbedRoot: ".",
	}
}

// Load reads the config file at path. With an empty path it reads
// [DefaultFile] if present and falls back to [Default] otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML settings on top of [Default] and validates them.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings can build a transformer.
func (c *Config) Validate() error {
	if c.Delimiter == "" {
		return fmt.Errorf("config: %w: empty", codespan.ErrInvalidDelimiter)
	}

	if _, err := codespan.New(c.Options()); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Options returns the transformer options described by the settings.
// Language detection is left to the caller.
func (c *Config) Options() codespan.Options {
	return codespan.Options{
		Delimiter:   c.Delimiter,
		DefaultLang: c.DefaultLang,
		Aliases:     c.Aliases,
	}
}
