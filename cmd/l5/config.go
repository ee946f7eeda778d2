package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile  = "l5.yml"
	defaultHistoryFile = ".l5_history"
)

// Config holds the settings read from l5.yml. Command-line flags take
// precedence over it.
type Config struct {
	Trace   bool     `yaml:"trace"`
	Dump    bool     `yaml:"dump"`
	Color   bool     `yaml:"color"`
	History string   `yaml:"history"`
	Paths   []string `yaml:"paths"`
}

func defaultConfig() *Config {
	return &Config{History: defaultHistoryFile}
}

type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig decodes name from fsys over the defaults. A missing file is
// not an error when optional is set.
func LoadConfig(fsys fs.FS, name string, optional bool) (*Config, error) {
	cfg := defaultConfig()
	file, err := fsys.Open(name)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %s: %w", name, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs ValidationError
	if strings.TrimSpace(c.History) == "" {
		errs.Issues = append(errs.Issues, "history must be a non-empty file name")
	}
	for i, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("paths[%d] must be a non-empty string", i))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
