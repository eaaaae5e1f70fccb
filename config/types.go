// Package config provides configuration management for chatreg
package config

import (
	"fmt"
	"time"

	"github.com/najoast/chatreg/registry"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// Config represents the complete chatreg configuration
type Config struct {
	App      AppConfig      `yaml:"app" json:"app"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Actor    ActorConfig    `yaml:"actor" json:"actor"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string      `yaml:"name" json:"name"`
	Version     string      `yaml:"version" json:"version"`
	Environment Environment `yaml:"environment" json:"environment"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level (debug, info, warn, error)
	Level LogLevel `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Output destination (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`

	// Colorize text output
	Color bool `yaml:"color" json:"color"`
}

// ActorConfig contains defaults shared by every registry actor
type ActorConfig struct {
	// Default mailbox size for registries that do not set their own
	DefaultMailboxSize int `yaml:"default_mailbox_size" json:"default_mailbox_size"`

	// Upper bound for applying a single command
	ProcessTimeout time.Duration `yaml:"process_timeout" json:"process_timeout"`

	// Upper bound for synchronous calls made by the driver
	CallTimeout time.Duration `yaml:"call_timeout" json:"call_timeout"`

	// Upper bound for graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// RegistryConfig configures the two registries
type RegistryConfig struct {
	Chatbots      TrackerConfig `yaml:"chatbots" json:"chatbots"`
	Conversations StoreConfig   `yaml:"conversations" json:"conversations"`
}

// TrackerConfig configures the chatbot tracker
type TrackerConfig struct {
	// lenient or strict, empty means lenient
	Mode registry.Mode `yaml:"mode" json:"mode"`

	// Zero falls back to actor.default_mailbox_size
	MailboxSize int `yaml:"mailbox_size" json:"mailbox_size"`

	// Route SendMessage to registered chatbots instead of dropping it
	Routing bool `yaml:"routing" json:"routing"`
}

// StoreConfig configures the conversation store
type StoreConfig struct {
	Mode        registry.Mode `yaml:"mode" json:"mode"`
	MailboxSize int           `yaml:"mailbox_size" json:"mailbox_size"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "chatreg",
			Version:     "1.0.0",
			Environment: EnvDevelopment,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "text",
			Output: "stdout",
			Color:  true,
		},
		Actor: ActorConfig{
			DefaultMailboxSize: 1000,
			ProcessTimeout:     30 * time.Second,
			CallTimeout:        5 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Registry: RegistryConfig{
			Chatbots: TrackerConfig{
				Mode: registry.ModeLenient,
			},
			Conversations: StoreConfig{
				Mode: registry.ModeLenient,
			},
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEnvironment, c.App.Environment)
	}

	if !c.Log.Level.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}

	if c.Actor.DefaultMailboxSize <= 0 {
		return ErrInvalidMailboxSize
	}
	if c.Actor.ProcessTimeout < 0 || c.Actor.CallTimeout <= 0 || c.Actor.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Registry.Chatbots.MailboxSize < 0 || c.Registry.Conversations.MailboxSize < 0 {
		return ErrInvalidMailboxSize
	}
	if _, err := registry.ParseMode(string(c.Registry.Chatbots.Mode)); err != nil {
		return fmt.Errorf("%w: chatbots %q", ErrInvalidMode, c.Registry.Chatbots.Mode)
	}
	if _, err := registry.ParseMode(string(c.Registry.Conversations.Mode)); err != nil {
		return fmt.Errorf("%w: conversations %q", ErrInvalidMode, c.Registry.Conversations.Mode)
	}

	return nil
}

// TrackerMailboxSize returns the effective mailbox size of the chatbot tracker
func (c *Config) TrackerMailboxSize() int {
	if c.Registry.Chatbots.MailboxSize > 0 {
		return c.Registry.Chatbots.MailboxSize
	}
	return c.Actor.DefaultMailboxSize
}

// StoreMailboxSize returns the effective mailbox size of the conversation store
func (c *Config) StoreMailboxSize() int {
	if c.Registry.Conversations.MailboxSize > 0 {
		return c.Registry.Conversations.MailboxSize
	}
	return c.Actor.DefaultMailboxSize
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}
