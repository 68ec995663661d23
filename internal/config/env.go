package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by pr-review
const (
	EnvFileEnv   = "PR_REVIEW_ENV_FILE"
	LogLevelEnv  = "PR_REVIEW_LOG_LEVEL"
	LogFormatEnv = "PR_REVIEW_LOG_FORMAT"
	LogOutputEnv = "PR_REVIEW_LOG_OUTPUT"
	LogSourceEnv = "PR_REVIEW_LOG_ADD_SOURCE"
	LogTimeEnv   = "PR_REVIEW_LOG_TIME_FORMAT"
	ProviderEnv  = "PR_REVIEW_PROVIDER"
	ModelEnv     = "PR_REVIEW_MODEL"
	MaxCharsEnv  = "PR_REVIEW_MAX_CHARS"
	TimeoutEnv   = "PR_REVIEW_TIMEOUT"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error, none
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// LoadDotEnv loads variables from PR_REVIEW_ENV_FILE when set, otherwise from ./.env if present.
// Variables already present in the environment are never overwritten.
func LoadDotEnv() error {
	if envFilePath := getEnvString(EnvFileEnv, ""); envFilePath != "" {
		return godotenv.Load(envFilePath)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoggingFromEnv reads the logging settings from the environment
func LoggingFromEnv() LoggingConfig {
	return LoggingConfig{
		Level:      getEnvString(LogLevelEnv, "warn"),
		Format:     getEnvString(LogFormatEnv, "text"),
		Output:     getEnvString(LogOutputEnv, "stderr"),
		AddSource:  getEnvBool(LogSourceEnv, false),
		TimeFormat: getTimeFormat(getEnvString(LogTimeEnv, "RFC3339")),
	}
}

// ApplyEnv overlays PR_REVIEW_* settings from the environment onto cfg
func ApplyEnv(cfg *Config) {
	cfg.Provider = strings.ToLower(getEnvString(ProviderEnv, cfg.Provider))
	cfg.Model = getEnvString(ModelEnv, cfg.Model)
	if n := getEnvInt(MaxCharsEnv, cfg.MaxChars); n >= 0 {
		cfg.MaxChars = n
	}
	if d := getEnvDuration(TimeoutEnv, cfg.Timeout.Duration); d >= 0 {
		cfg.Timeout = Duration{d}
	}
}

// APIKeyEnv returns the environment variable holding provider's API key, e.g. GEMINI_API_KEY
func APIKeyEnv(provider string) string {
	return strings.ToUpper(strings.TrimSpace(provider)) + "_API_KEY"
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getTimeFormat converts a named time format to its actual format string
func getTimeFormat(name string) string {
	switch name {
	case "RFC3339":
		return time.RFC3339
	case "RFC3339Nano":
		return time.RFC3339Nano
	case "Kitchen":
		return time.Kitchen
	case "Stamp":
		return time.Stamp
	case "DateTime":
		return time.DateTime
	case "DateTimeMS":
		return "2006-01-02 15:04:05.000"
	case "Time":
		return time.TimeOnly
	default:
		return name
	}
}
