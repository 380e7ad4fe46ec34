// Package config loads and saves the compiler's persistent settings (the
// default target, machine sizes, and the debugger/service front-ends built
// on top of it), the way the ARM emulator's config package did for the ARM
// emulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the compiler's persistent configuration.
type Config struct {
	// Compile settings
	Compile struct {
		Target    string `toml:"target"` // "c" or "asm"
		CC        string `toml:"cc"`
		StackSize int    `toml:"stack_size"`
		HeapSize  int    `toml:"heap_size"`
		MaxSteps  int    `toml:"max_steps"` // native vm run budget
	} `toml:"compile"`

	// Debugger settings (the TUI built on top of the native vm package)
	Debugger struct {
		HistorySize    int  `toml:"history_size"`
		AutoSaveBreaks bool `toml:"auto_save_breakpoints"`
		ShowSource     bool `toml:"show_source"`
		ShowStack      bool `toml:"show_stack"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		CellsPerLine  int    `toml:"cells_per_line"`
		SourceContext int    `toml:"source_context"`
		NumberFormat  string `toml:"number_format"` // raw, rounded
	} `toml:"display"`

	// Service settings (the HTTP+WebSocket compile service)
	Service struct {
		ListenAddr     string `toml:"listen_addr"`
		MaxSourceBytes int    `toml:"max_source_bytes"`
	} `toml:"service"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compile.Target = "c"
	cfg.Compile.CC = "cc"
	cfg.Compile.StackSize = 1024
	cfg.Compile.HeapSize = 4096
	cfg.Compile.MaxSteps = 10_000_000

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowStack = true

	cfg.Display.ColorOutput = true
	cfg.Display.CellsPerLine = 16
	cfg.Display.SourceContext = 5
	cfg.Display.NumberFormat = "rounded"

	cfg.Service.ListenAddr = ":8080"
	cfg.Service.MaxSourceBytes = 1 << 20

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "lolcodec")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "lolcodec")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
