package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Web    WebConfig    `toml:"web"`
	Hotkey HotkeyConfig `toml:"hotkey"`
	Safety SafetyConfig `toml:"safety"`
	// Profile selected on startup; empty means first available
	ActiveProfile string `toml:"active_profile"`
}

type PathsConfig struct {
	ProfilesDir string `toml:"profiles_dir"`
	TargetsDir  string `toml:"targets_dir"`
	Database    string `toml:"database"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type HotkeyConfig struct {
	// Global combo that stops the clicker from any window
	KillSwitch string `toml:"kill_switch"`
}

type SafetyConfig struct {
	// Lower bound applied to every profile's min delay, in seconds.
	// Guards against accidental machine-gun profiles.
	MinDelayFloor float64 `toml:"min_delay_floor"`
}

// Default configuration
func defaultConfig(configDir string) *Config {
	return &Config{
		Paths: PathsConfig{
			ProfilesDir: filepath.Join(configDir, "profiles"),
			TargetsDir:  filepath.Join(configDir, "targets"),
			Database:    filepath.Join(configDir, "clickmate.db"),
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8844,
		},
		Hotkey: HotkeyConfig{
			KillSwitch: "ctrl+shift+q",
		},
		Safety: SafetyConfig{
			MinDelayFloor: 0.05,
		},
	}
}

// Dir returns the application config directory, creating it if needed
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}

	configDir := filepath.Join(base, "clickmate")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the TOML file.
// If the file doesn't exist, it creates it with default values.
func Load() (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configDir)
}

// LoadFrom loads (or creates) the config rooted at configDir
func LoadFrom(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, "config.toml")

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig(configDir)
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config over the defaults
	cfg := defaultConfig(configDir)
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to its TOML file
func (c *Config) Save() error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return save(configPath, c)
}

func (c *Config) validate() error {
	if c.Web.Enabled && (c.Web.Port < 1 || c.Web.Port > 65535) {
		return fmt.Errorf("web port %d is out of range", c.Web.Port)
	}
	if c.Safety.MinDelayFloor < 0 {
		return fmt.Errorf("min_delay_floor must be >= 0")
	}
	return nil
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}
