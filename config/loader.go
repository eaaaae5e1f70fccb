// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/najoast/chatreg/registry"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// FormatFromPath derives the configuration format from a file extension
func FormatFromPath(path string) (ConfigFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Loader handles configuration loading from various sources
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	paths := []string{".", "./config", "./configs", "/etc/chatreg"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".chatreg"))
	}

	return &Loader{
		searchPaths: paths,
		envPrefix:   "CHATREG",
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// Load loads configuration from filename, or discovers one when filename is empty
func (l *Loader) Load(filename string) (*Config, error) {
	if filename == "" {
		return l.AutoLoad()
	}
	return l.LoadFromFile(filename)
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	format, err := FormatFromPath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return l.finish(data, format)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}

	return l.finish(data, format)
}

// AutoLoad discovers a configuration file in the search paths and loads it.
// Without a file the defaults are used, still subject to environment overrides.
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, _, err := l.findConfigFile()
	if errors.Is(err, ErrConfigFileNotFound) {
		return l.finish(nil, "")
	}
	if err != nil {
		return nil, err
	}

	return l.LoadFromFile(configFile)
}

// finish layers data over the defaults, applies the environment and validates
func (l *Loader) finish(data []byte, format ConfigFormat) (*Config, error) {
	config := DefaultConfig()

	if len(data) > 0 {
		if err := parseConfig(data, format, config); err != nil {
			return nil, err
		}
	}

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, ConfigFormat, error) {
	filenames := []string{
		"chatreg.yaml", "chatreg.yml", "chatreg.json",
		"config.yaml", "config.yml", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err != nil {
				continue
			}
			format, err := FormatFromPath(fullPath)
			if err != nil {
				continue
			}
			return fullPath, format, nil
		}
	}

	return "", "", ErrConfigFileNotFound
}

// parseConfig decodes data onto config, keeping values the data does not set
func parseConfig(data []byte, format ConfigFormat, config *Config) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%w: yaml: %v", ErrConfigParseError, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("%w: json: %v", ErrConfigParseError, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return nil
}

// loadFromEnv applies PREFIX_* environment overrides
func (l *Loader) loadFromEnv(config *Config) error {
	env := func(key string) string {
		return os.Getenv(l.envPrefix + "_" + key)
	}

	if val := env("APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := env("APP_ENVIRONMENT"); val != "" {
		config.App.Environment = Environment(val)
	}

	if val := env("LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(strings.ToLower(val))
	}
	if val := env("LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}
	if val := env("LOG_OUTPUT"); val != "" {
		config.Log.Output = val
	}
	if val := env("LOG_COLOR"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s_LOG_COLOR=%q", ErrEnvironmentVarError, l.envPrefix, val)
		}
		config.Log.Color = b
	}

	if val := env("ACTOR_MAILBOX_SIZE"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s_ACTOR_MAILBOX_SIZE=%q", ErrEnvironmentVarError, l.envPrefix, val)
		}
		config.Actor.DefaultMailboxSize = n
	}

	if val := env("CHATBOTS_MODE"); val != "" {
		config.Registry.Chatbots.Mode = registry.Mode(strings.ToLower(val))
	}
	if val := env("CHATBOTS_ROUTING"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s_CHATBOTS_ROUTING=%q", ErrEnvironmentVarError, l.envPrefix, val)
		}
		config.Registry.Chatbots.Routing = b
	}
	if val := env("CONVERSATIONS_MODE"); val != "" {
		config.Registry.Conversations.Mode = registry.Mode(strings.ToLower(val))
	}

	return nil
}
