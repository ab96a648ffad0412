// Package config loads the formengine CLI configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the file omits a value.
const (
	DefaultRenderer = "html"
	DefaultOutput   = "json"
	DefaultLogLevel = "info"
	DefaultDebounce = 200 * time.Millisecond
	DefaultPasses   = 3
)

// Config mirrors formengine.yaml:
//
//	layouts: ./layouts
//	renderer: html
//	output: json
//	logLevel: debug
//	presets: [presets/cardiology.yaml]
//	watch:
//	  debounce: 500ms
type Config struct {
	// Layouts is a directory of layout files. Empty uses the embedded set.
	Layouts  string   `yaml:"layouts"`
	Renderer string   `yaml:"renderer"`
	Output   string   `yaml:"output"`
	LogLevel string   `yaml:"logLevel"`
	Presets  []string `yaml:"presets"`
	// MaxPasses bounds the re-prompt rounds of the fill command.
	MaxPasses int   `yaml:"maxPasses"`
	Watch     Watch `yaml:"watch"`
}

// Watch configures the layout watcher.
type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Renderer:  DefaultRenderer,
		Output:    DefaultOutput,
		LogLevel:  DefaultLogLevel,
		MaxPasses: DefaultPasses,
		Watch:     Watch{Debounce: DefaultDebounce},
	}
}

// Load reads path and fills missing values with defaults. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports values the CLI cannot use.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Output {
	case "json", "form", "pretty":
	default:
		errs = append(errs, fmt.Errorf("output %q must be json, form or pretty", c.Output))
	}
	if c.MaxPasses < 0 {
		errs = append(errs, errors.New("maxPasses must not be negative"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logLevel: %w", err)
	}
	return level, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Renderer == "" {
		c.Renderer = defaults.Renderer
	}
	if c.Output == "" {
		c.Output = defaults.Output
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.MaxPasses == 0 {
		c.MaxPasses = defaults.MaxPasses
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
}
