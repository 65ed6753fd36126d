package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/magnetde/starlark-vmre/vm"
)

// configName is the name of the configuration file, that is read from the working directory.
const configName = "vmgrep.toml"

// Config represents a vmgrep.toml configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Output OutputConfig `toml:"output"`
}

// EngineConfig selects and configures the evaluator.
type EngineConfig struct {
	Strategy string `toml:"strategy"`
	MaxDepth int    `toml:"max-depth"`
	MaxStack int    `toml:"max-stack"`
	Memoize  bool   `toml:"memoize"`
}

// OutputConfig configures the output.
type OutputConfig struct {
	Dump     bool   `toml:"dump"`
	Filename string `toml:"filename"`
}

// Possible values of OutputConfig.Filename.
const (
	filenameAuto   = "auto"
	filenameAlways = "always"
	filenameNever  = "never"
)

// DefaultConfig returns the configuration used, if no file is present.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Strategy: vm.StrategyBacktrack.String(),
			MaxDepth: vm.DefaultMaxDepth,
			Memoize:  true,
		},
		Output: OutputConfig{
			Filename: filenameAuto,
		},
	}
}

// LoadConfig parses a configuration file. Missing values keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := DefaultConfig()

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return c, nil
}

// FindConfig loads the configuration file `path`. If `path` is empty, the file
// vmgrep.toml of the working directory is loaded, if it exists.
// The returned path is empty, if the default configuration is used.
func FindConfig(path string) (*Config, string, error) {
	if path == "" {
		if _, err := os.Stat(configName); errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), "", nil
		}

		path = configName
	}

	c, err := LoadConfig(path)
	if err != nil {
		return nil, "", err
	}

	return c, path, nil
}

// Validate checks the values of the configuration.
func (c *Config) Validate() error {
	if _, err := vm.ParseStrategy(c.Engine.Strategy); err != nil {
		return err
	}

	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("max-depth must not be negative, got %d", c.Engine.MaxDepth)
	}
	if c.Engine.MaxStack < 0 {
		return fmt.Errorf("max-stack must not be negative, got %d", c.Engine.MaxStack)
	}

	switch c.Output.Filename {
	case filenameAuto, filenameAlways, filenameNever:
	default:
		return fmt.Errorf("filename must be one of %q, %q or %q, got %q", filenameAuto, filenameAlways, filenameNever, c.Output.Filename)
	}

	return nil
}

// Machine creates the configured evaluator.
func (c *Config) Machine() (vm.Machine, error) {
	s, err := vm.ParseStrategy(c.Engine.Strategy)
	if err != nil {
		return nil, err
	}

	switch s {
	case vm.StrategyRecursive:
		return &vm.Recursive{MaxDepth: c.Engine.MaxDepth}, nil
	default:
		return &vm.Backtrack{MaxStack: c.Engine.MaxStack, Memoize: c.Engine.Memoize}, nil
	}
}

// showFilenames reports whether matching lines are prefixed with the file name.
func (c *Config) showFilenames(files int) bool {
	switch c.Output.Filename {
	case filenameAlways:
		return true
	case filenameNever:
		return false
	default:
		return files > 1
	}
}
