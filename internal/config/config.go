// Package config loads the settings of the shuttle command from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alitto/shuttle"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Worker thread kinds.
const (
	ThreadSingle     = "single"
	ThreadMulti      = "multi"
	ThreadAnts       = "ants"
	ThreadWorkerPool = "workerpool"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the root of the configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log" toml:"log"`
	Worker  WorkerConfig  `yaml:"worker" toml:"worker"`
	Pump    PumpConfig    `yaml:"pump" toml:"pump"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error
	Level string `yaml:"level" toml:"level"`
	// Format is text or json
	Format string `yaml:"format" toml:"format"`
	// File receives the log output. Empty means stderr.
	File string `yaml:"file" toml:"file"`
}

type WorkerConfig struct {
	Thread   string `yaml:"thread" toml:"thread"`
	PoolSize int    `yaml:"pool_size" toml:"pool_size"`
}

type PumpConfig struct {
	// Exclude lists the event kinds a pumping post leaves queued
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `yaml:"addr" toml:"addr"`
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Worker: WorkerConfig{
			Thread:   ThreadSingle,
			PoolSize: 4,
		},
	}
}

// Load reads the file at path on top of the defaults. The format is chosen by extension:
// .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return Parse(filepath.Ext(path), path, data)
}

// LoadFromReader reads a configuration in the format named by ext (".yaml", ".yml" or ".toml").
func LoadFromReader(ext string, r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return Parse(ext, "<reader>", data)
}

// Parse decodes data on top of the defaults and validates the result. Source names the data in errors.
func Parse(ext, source string, data []byte) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err := yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	case ".toml":
		err := toml.Unmarshal(data, cfg)
		if err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	switch c.Worker.Thread {
	case ThreadSingle, ThreadMulti:
	case ThreadAnts, ThreadWorkerPool:
		if c.Worker.PoolSize <= 0 {
			errs = append(errs, fmt.Errorf("worker.pool_size: must be greater than 0, got %d", c.Worker.PoolSize))
		}
	default:
		errs = append(errs, fmt.Errorf("worker.thread: unknown thread kind %q", c.Worker.Thread))
	}

	for _, name := range c.Pump.Exclude {
		if _, ok := shuttle.ParseKind(name); !ok {
			errs = append(errs, fmt.Errorf("pump.exclude: unknown event kind %q", name))
		}
	}

	return errors.Join(errs...)
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Logger builds the logger described by the log section. The returned closer releases the log
// file, if any.
func (c LogConfig) Logger() (*slog.Logger, io.Closer, error) {
	level, err := c.level()
	if err != nil {
		return nil, nil, err
	}

	var out io.WriteCloser = nopCloser{os.Stderr}
	if c.File != "" {
		file, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = file
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOptions)
	} else {
		handler = slog.NewTextHandler(out, handlerOptions)
	}

	return slog.New(handler), out, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WorkerThread builds the worker thread described by the worker section.
func (c WorkerConfig) WorkerThread() (shuttle.WorkerThread, error) {
	switch c.Thread {
	case ThreadSingle:
		return shuttle.NewSingleWorkerThread(), nil
	case ThreadMulti:
		return shuttle.NewMultiWorkerThread(), nil
	case ThreadAnts:
		thread, err := shuttle.NewAntsWorkerThread(c.PoolSize)
		if err != nil {
			return nil, err
		}
		return thread, nil
	case ThreadWorkerPool:
		return shuttle.NewWorkerPoolThread(c.PoolSize), nil
	default:
		return nil, fmt.Errorf("worker.thread: unknown thread kind %q", c.Thread)
	}
}

// Filter returns the event filter of pumping posts, nil when no kind is excluded.
func (c PumpConfig) Filter() (shuttle.EventFilter, error) {
	if len(c.Exclude) == 0 {
		return nil, nil
	}

	kinds := make([]shuttle.Kind, 0, len(c.Exclude))
	for _, name := range c.Exclude {
		kind, ok := shuttle.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("pump.exclude: unknown event kind %q", name)
		}
		kinds = append(kinds, kind)
	}

	return shuttle.ExcludeKinds(kinds...), nil
}
