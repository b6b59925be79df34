package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable ejtrace settings.
type Config struct {
	JournalDir    string `json:"journal_dir"`
	OutputDir     string `json:"output_dir"`
	DefaultFormat string `json:"default_format"` // "text" | "markdown" | "json" | "yaml"
	// WindowSize is the number of successful withdrawals kept on each side
	// of the target. Zero in a file means "not set"; pass --window 0 to
	// ask for the target alone.
	WindowSize int `json:"window_size"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		JournalDir:    ".",
		OutputDir:     ".",
		DefaultFormat: "text",
		WindowSize:    3,
	}
}

// LoadGlobal reads ~/.config/ejtrace/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "ejtrace", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .ejtraceconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".ejtraceconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if cfg.WindowSize < 0 {
		return nil, &ParseError{Path: path, Err: errors.New("window_size must not be negative")}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.JournalDir != "" {
			result.JournalDir = c.JournalDir
		}
		if c.OutputDir != "" {
			result.OutputDir = c.OutputDir
		}
		if c.DefaultFormat != "" {
			result.DefaultFormat = c.DefaultFormat
		}
		if c.WindowSize > 0 {
			result.WindowSize = c.WindowSize
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
