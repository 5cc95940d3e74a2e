// Package config loads the engine's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound indicates the config file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrMissingField indicates a required field is missing.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidValue indicates a field holds an out-of-range value.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config is the engine instance configuration.
type Config struct {
	// StorePath is the SQLite database file. ":memory:" or empty selects
	// the in-memory store.
	StorePath string `yaml:"store_path"`

	// Graph names the case instance (named graph) this engine drives.
	Graph string `yaml:"graph"`

	// Actor is recorded in every transaction context.
	Actor string `yaml:"actor"`

	// MaxTicks bounds the convergence runner.
	MaxTicks int `yaml:"max_ticks"`

	// CatalogPath overrides the embedded pattern catalog.
	CatalogPath string `yaml:"catalog_path,omitempty"`

	// Reasoner selects the inference oracle.
	Reasoner ReasonerConfig `yaml:"reasoner"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// Reasoner modes.
const (
	ReasonerLocal = "local"
	ReasonerExec  = "exec"
)

// ReasonerConfig selects and tunes the inference oracle.
type ReasonerConfig struct {
	// Mode is "local" (in-process rule evaluation) or "exec".
	Mode string `yaml:"mode"`

	// Command is the subprocess argv for exec mode.
	Command []string `yaml:"command,omitempty"`

	// Timeout bounds one exec invocation, e.g. "5s".
	Timeout Duration `yaml:"timeout,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "5s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given: in-memory
// store, local reasoner, embedded catalog.
func Default() *Config {
	return &Config{
		StorePath: ":memory:",
		Graph:     "case-1",
		Actor:     "weft",
		MaxTicks:  100,
		Reasoner:  ReasonerConfig{Mode: ReasonerLocal, Timeout: Duration(5 * time.Second)},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the structural constraints.
func Validate(cfg *Config) error {
	if cfg.Graph == "" {
		return fmt.Errorf("%w: graph", ErrMissingField)
	}
	if cfg.Actor == "" {
		return fmt.Errorf("%w: actor", ErrMissingField)
	}
	if cfg.MaxTicks < 1 {
		return fmt.Errorf("%w: max_ticks must be >= 1, got %d", ErrInvalidValue, cfg.MaxTicks)
	}
	switch cfg.Reasoner.Mode {
	case ReasonerLocal:
	case ReasonerExec:
		if len(cfg.Reasoner.Command) == 0 {
			return fmt.Errorf("%w: reasoner.command (required in exec mode)", ErrMissingField)
		}
	default:
		return fmt.Errorf("%w: reasoner.mode %q, want \"local\" or \"exec\"", ErrInvalidValue, cfg.Reasoner.Mode)
	}
	if cfg.Reasoner.Timeout < 0 {
		return fmt.Errorf("%w: reasoner.timeout must not be negative", ErrInvalidValue)
	}
	return nil
}

// InMemory reports whether the store path selects the in-memory store.
func (c *Config) InMemory() bool {
	return c.StorePath == "" || c.StorePath == ":memory:"
}
