// Package config provides configuration management for scriptsync.
// It supports a YAML configuration file, environment variables, and
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scriptsync/internal/model"
	"scriptsync/internal/util"
)

// Config represents the complete scriptsync configuration.
type Config struct {
	// Server configures the management server connection
	Server ServerConfig `yaml:"server"`

	// Scripts configures the local script store layout
	Scripts ScriptsConfig `yaml:"scripts"`

	// TLS configures certificate verification
	TLS TLSConfig `yaml:"tls"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// ServerConfig holds management server connection settings.
type ServerConfig struct {
	// URL is the base URL of the management server
	URL string `yaml:"url"`
	// Username for token authentication
	Username string `yaml:"username"`
	// Password for token authentication. Leave empty to be prompted.
	Password string `yaml:"password,omitempty"`
	// Timeout bounds each API call
	Timeout Duration `yaml:"timeout"`
}

// Duration is a time.Duration that reads and writes "30s" style values in
// the config file.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// ScriptsConfig holds local store layout settings.
type ScriptsConfig struct {
	// Path is the directory holding the script content files
	Path string `yaml:"path"`
	// MetadataInSubfolder places metadata files under <path>/metadata
	// instead of alongside the scripts
	MetadataInSubfolder bool `yaml:"metadata_in_subfolder"`
}

// TLSConfig holds certificate verification settings.
type TLSConfig struct {
	// Verify enables certificate verification
	Verify bool `yaml:"verify"`
	// Warn prints a warning when verification is disabled
	Warn bool `yaml:"warn"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "https://your-server.example.com:8443",
			Timeout: Duration(30 * time.Second),
		},
		Scripts: ScriptsConfig{
			Path:                ".",
			MetadataInSubfolder: true,
		},
		TLS: TLSConfig{
			Verify: true,
			Warn:   true,
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.ConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o600)
}

// Roots derives the script and metadata directories from the configured
// scripts path. The result is threaded explicitly through the store and
// orchestrator; nothing reads it ambiently.
func (c *Config) Roots(baseDir string) model.Roots {
	scriptsDir := util.ExpandPath(c.Scripts.Path, baseDir)
	metadataDir := scriptsDir
	if c.Scripts.MetadataInSubfolder {
		metadataDir = filepath.Join(scriptsDir, "metadata")
	}
	return model.Roots{
		ScriptsDir:  scriptsDir,
		MetadataDir: metadataDir,
	}
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern SCRIPTSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("SCRIPTSYNC_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("SCRIPTSYNC_SERVER_USERNAME"); v != "" {
		c.Server.Username = v
	}
	if v := os.Getenv("SCRIPTSYNC_SERVER_PASSWORD"); v != "" {
		c.Server.Password = v
	}
	if v := os.Getenv("SCRIPTSYNC_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.Timeout = Duration(d)
		}
	}

	if v := os.Getenv("SCRIPTSYNC_SCRIPTS_PATH"); v != "" {
		c.Scripts.Path = v
	}
	if v := os.Getenv("SCRIPTSYNC_SCRIPTS_METADATA_IN_SUBFOLDER"); v != "" {
		c.Scripts.MetadataInSubfolder = parseBool(v)
	}

	if v := os.Getenv("SCRIPTSYNC_TLS_VERIFY"); v != "" {
		c.TLS.Verify = parseBool(v)
	}
	if v := os.Getenv("SCRIPTSYNC_TLS_WARN"); v != "" {
		c.TLS.Warn = parseBool(v)
	}

	if v := os.Getenv("SCRIPTSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("SCRIPTSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
