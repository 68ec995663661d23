// Package config manages the pr-review settings file, environment overrides and credential resolution
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultProvider is used when neither a flag nor the config file names a provider
	DefaultProvider = "gemini"
	// DefaultModel is used when neither a flag nor the config file names a model
	DefaultModel = "gemini-2.5-flash-preview-04-17"
	// DefaultTimeout bounds the git subprocess and the provider call
	DefaultTimeout = 2 * time.Minute
)

// Config keys accepted by Get, Set and Unset
const (
	KeyProvider = "provider"
	KeyModel    = "model"
	KeyAPIKeys  = "api_keys"
	KeyMaxChars = "max_chars"
	KeyTimeout  = "timeout"
)

var (
	// ErrUnknownKey is returned for keys outside the config schema
	ErrUnknownKey = errors.New("unknown config key")
	// ErrKeyNotSet is returned when a known map entry such as api_keys.foo is absent
	ErrKeyNotSet = errors.New("key not found in config")
	// ErrInvalidValue is returned when a value cannot be converted to the key's type
	ErrInvalidValue = errors.New("invalid config value")
)

// KnownProviders lists the provider names seeded into a fresh config
var KnownProviders = []string{"gemini", "openai", "anthropic"}

// Config represents the persisted pr-review settings
type Config struct {
	Provider string            `toml:"provider"`
	Model    string            `toml:"model"`
	MaxChars int               `toml:"max_chars"`
	Timeout  Duration          `toml:"timeout"`
	APIKeys  map[string]string `toml:"api_keys"`
}

// Duration is a time.Duration stored as a string such as "2m" in the config file
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Bare integers are read as seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if isDigits(s) {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	keys := make(map[string]string, len(KnownProviders))
	for _, p := range KnownProviders {
		keys[p] = ""
	}

	return &Config{
		Provider: DefaultProvider,
		Model:    DefaultModel,
		MaxChars: 0,
		Timeout:  Duration{DefaultTimeout},
		APIKeys:  keys,
	}
}

// Clone returns a deep copy of c
func (c *Config) Clone() *Config {
	out := *c
	out.APIKeys = maps.Clone(c.APIKeys)
	return &out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("provider cannot be empty")
	}

	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxChars < 0 {
		return fmt.Errorf("max_chars must not be negative")
	}

	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return nil
}

// Keys returns every addressable key in display order
func (c *Config) Keys() []string {
	keys := []string{KeyProvider, KeyModel, KeyMaxChars, KeyTimeout}
	for _, name := range slices.Sorted(maps.Keys(c.APIKeys)) {
		keys = append(keys, KeyAPIKeys+"."+name)
	}
	return keys
}

// Get returns the raw string form of a dotted key
func (c *Config) Get(key string) (string, error) {
	section, name, dotted := strings.Cut(key, ".")

	if dotted {
		if section != KeyAPIKeys || name == "" {
			return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		v, ok := c.APIKeys[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrKeyNotSet, key)
		}
		return v, nil
	}

	switch key {
	case KeyProvider:
		return c.Provider, nil
	case KeyModel:
		return c.Model, nil
	case KeyMaxChars:
		return strconv.Itoa(c.MaxChars), nil
	case KeyTimeout:
		return c.Timeout.String(), nil
	case KeyAPIKeys:
		return "", fmt.Errorf("%w: use %s.<provider>", ErrUnknownKey, KeyAPIKeys)
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set assigns value to a dotted key, converting it to the key's type
func (c *Config) Set(key, value string) error {
	section, name, dotted := strings.Cut(key, ".")

	if dotted {
		if section != KeyAPIKeys || name == "" {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[name] = value
		return nil
	}

	switch key {
	case KeyProvider:
		c.Provider = strings.ToLower(strings.TrimSpace(value))
	case KeyModel:
		c.Model = strings.TrimSpace(value)
	case KeyMaxChars:
		if !isDigits(value) {
			return fmt.Errorf("%w: %s expects a non-negative integer, got %q", ErrInvalidValue, key, value)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		c.MaxChars = n
	case KeyTimeout:
		d, err := parseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s expects a duration such as 90s or 2m, got %q", ErrInvalidValue, key, value)
		}
		c.Timeout = Duration{d}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return nil
}

// Unset restores a scalar key to its default or removes an api_keys entry
func (c *Config) Unset(key string) error {
	section, name, dotted := strings.Cut(key, ".")

	if dotted {
		if section != KeyAPIKeys || name == "" {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if _, ok := c.APIKeys[name]; !ok {
			return fmt.Errorf("%w: %s", ErrKeyNotSet, key)
		}
		delete(c.APIKeys, name)
		return nil
	}

	def := Default()
	switch key {
	case KeyProvider:
		c.Provider = def.Provider
	case KeyModel:
		c.Model = def.Model
	case KeyMaxChars:
		c.MaxChars = def.MaxChars
	case KeyTimeout:
		c.Timeout = def.Timeout
	case KeyAPIKeys:
		c.APIKeys = def.APIKeys
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return nil
}

// Entry is a displayable key/value pair
type Entry struct {
	Key   string
	Value string
}

// Entries returns every key with api keys masked
func (c *Config) Entries() []Entry {
	keys := c.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		value, _ := c.Get(key)
		if IsSecret(key) {
			value = Mask(value)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries
}

// IsSecret reports whether the value stored under key must never be printed
func IsSecret(key string) bool {
	return strings.Contains(key, "api_key")
}

// Mask hides a secret value
func Mask(value string) string {
	if value == "" {
		return "<not set>"
	}
	return "****"
}

// ParseLogLevel parses a log level string to a slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Set to a very high level that won't be triggered
		return slog.Level(9999)
	default:
		return slog.LevelWarn
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
