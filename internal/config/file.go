package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tildaslashalef/prreview/internal/errs"
	"github.com/tildaslashalef/prreview/internal/loggy"
)

// FileName is the config file name inside the user's home directory
const FileName = ".pr-review.toml"

// PathEnv overrides the config file location
const PathEnv = "PR_REVIEW_CONFIG"

// Path returns the config file location
func Path() (string, error) {
	if p := getEnvString(PathEnv, ""); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Config(err, "failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, FileName), nil
}

// Load reads the config file at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		loggy.Debug("Config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, errs.Config(err, "Error loading config: %v", err)
	}

	// A file that sets api_keys replaces the seeded map rather than merging into it
	cfg.APIKeys = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errs.Config(err, "Error loading config: %v", err)
	}
	if cfg.APIKeys == nil {
		cfg.APIKeys = make(map[string]string)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		loggy.Warn("Ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ","))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errs.Config(err, "Error loading config: %v", err)
	}

	loggy.Debug("Loaded config", "path", path, "provider", cfg.Provider, "model", cfg.Model)
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errs.Config(err, "Error saving config: %v", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Config(err, "Error saving config: %v", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return errs.Config(err, "Error saving config: %v", err)
	}

	loggy.Debug("Saved config", "path", path)
	return nil
}
