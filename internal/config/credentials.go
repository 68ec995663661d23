package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tildaslashalef/prreview/internal/errs"
)

// ErrMissingAPIKey is returned when no API key can be found for the selected provider
var ErrMissingAPIKey = errors.New("api key not found")

// Credentials identify the provider, model and key used for one review
type Credentials struct {
	Provider string
	Model    string
	APIKey   string
}

// Overrides carry command-line values that take precedence over everything else
type Overrides struct {
	Provider string
	Model    string
	APIKey   string
}

// ResolveCredentials picks provider, model and key with the priority
// flag > <PROVIDER>_API_KEY environment variable > config file > default.
func (c *Config) ResolveCredentials(o Overrides) (Credentials, error) {
	creds := Credentials{
		Provider: firstNonEmpty(o.Provider, c.Provider, DefaultProvider),
		Model:    firstNonEmpty(o.Model, c.Model, DefaultModel),
	}
	creds.Provider = strings.ToLower(creds.Provider)

	creds.APIKey = firstNonEmpty(
		o.APIKey,
		getEnvString(APIKeyEnv(creds.Provider), ""),
		c.APIKeys[creds.Provider],
	)

	if creds.APIKey == "" {
		env := APIKeyEnv(creds.Provider)
		return creds, errs.Provider(ErrMissingAPIKey, "%s not found in environment or config. "+
			"Set it with 'pr-review config set api_keys.%s YOUR_KEY' or export %s=your_key",
			env, creds.Provider, env)
	}

	return creds, nil
}

// String never includes the key
func (c Credentials) String() string {
	return fmt.Sprintf("%s/%s (key %s)", c.Provider, c.Model, Mask(c.APIKey))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
