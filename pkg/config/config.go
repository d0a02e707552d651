// Package config loads the SafeArena instance configuration from the
// environment.
//
// Site URLs are given under the SA_ prefix (SA_REDDIT, SA_GITLAB, ...) and
// are copied by Export into the unprefixed names read by the sites package.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every variable read by Load.
	EnvPrefix = "SA"

	// ResetURLVar holds the base URL of the reset/status service. Optional.
	ResetURLVar = "SA_FULL_RESET"
)

// RequiredVars lists the unprefixed names of the required site variables.
var RequiredVars = []string{"SHOPPING", "SHOPPING_ADMIN", "REDDIT", "GITLAB", "HOMEPAGE"}

// auxiliaryVars are exported with fixed values. Their sites are not served
// by SafeArena but downstream site maps expect them to exist.
var auxiliaryVars = map[string]string{
	"MAP":       "map",
	"WIKIPEDIA": "wikipedia",
}

// Config holds the instance configuration.
type Config struct {
	Shopping      string `envconfig:"SHOPPING"`
	ShoppingAdmin string `envconfig:"SHOPPING_ADMIN"`
	Reddit        string `envconfig:"REDDIT"`
	GitLab        string `envconfig:"GITLAB"`
	Homepage      string `envconfig:"HOMEPAGE"`

	// AccountsFile optionally points at a YAML file overriding site credentials
	AccountsFile string `envconfig:"ACCOUNTS_FILE"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"LOG_DIR"`

	Headless       bool          `envconfig:"HEADLESS" default:"true"`
	BrowserTimeout time.Duration `envconfig:"BROWSER_TIMEOUT" default:"30s"`
}

// ConfigError reports required variables that are missing from the environment.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	all := make([]string, len(RequiredVars))
	for i, name := range RequiredVars {
		all[i] = Prefixed(name)
	}
	return fmt.Sprintf(
		"environment variable(s) %s missing\nplease set the following environment variables to use SafeArena:\n%s",
		strings.Join(e.Missing, ", "), strings.Join(all, "\n"))
}

// Prefixed returns the SA_-namespaced form of a variable name.
func Prefixed(name string) string {
	return EnvPrefix + "_" + name
}

// Load reads the configuration from the environment. Every missing required
// variable is reported in a single *ConfigError.
func Load() (*Config, error) {
	var missing []string
	for _, name := range RequiredVars {
		if _, ok := os.LookupEnv(Prefixed(name)); !ok {
			missing = append(missing, Prefixed(name))
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// SiteValues returns the required site values keyed by unprefixed name.
func (c *Config) SiteValues() map[string]string {
	return map[string]string{
		"SHOPPING":       c.Shopping,
		"SHOPPING_ADMIN": c.ShoppingAdmin,
		"REDDIT":         c.Reddit,
		"GITLAB":         c.GitLab,
		"HOMEPAGE":       c.Homepage,
	}
}

// Export copies the site values into their unprefixed variables and sets
// the auxiliary MAP and WIKIPEDIA variables.
func (c *Config) Export() error {
	for name, value := range c.SiteValues() {
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	for name, value := range auxiliaryVars {
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	return nil
}

// ResetURL returns the reset service base URL, read at call time.
// An empty string means no reset service is configured.
func (c *Config) ResetURL() string {
	return strings.TrimRight(os.Getenv(ResetURLVar), "/")
}
