// Package instance manages the lifecycle of a SafeArena instance: it
// validates the site configuration, resets the remote instance, checks
// that every site is reachable and logs into sites through the browser.
//
// A Manager is meant for single-session use; its methods block and must
// not be called concurrently.
package instance

import (
	"fmt"

	"github.com/entrhq/safearena/pkg/config"
	"github.com/entrhq/safearena/pkg/logging"
	"github.com/entrhq/safearena/pkg/poll"
	"github.com/entrhq/safearena/pkg/sites"
	"github.com/go-resty/resty/v2"
)

// Manager gives access to a SafeArena instance.
type Manager struct {
	cfg         *config.Config
	urls        sites.URLMap
	homeURL     string
	credentials sites.CredentialMap

	client *resty.Client
	clock  poll.Clock
	logger *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig uses cfg instead of loading the configuration from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithHTTPClient sets the client used for reset, status and reachability requests.
func WithHTTPClient(client *resty.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithClock sets the clock driving the reset status loop.
func WithClock(clock poll.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewHTTPClient returns the default client: no automatic retries, since
// every retry policy lives in the Manager itself.
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", "SafeArena-Instance/1.0")
}

// New validates the configuration and resolves the site URLs and accounts.
// It fails with *config.ConfigError if a required variable is missing.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	if m.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		m.cfg = cfg
	}
	if m.client == nil {
		m.client = NewHTTPClient()
	}
	if m.clock == nil {
		m.clock = poll.SystemClock{}
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}

	// the site provider reads the unprefixed variables
	if err := m.cfg.Export(); err != nil {
		return nil, err
	}

	provider, err := sites.Load(m.cfg.AccountsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load site configuration: %w", err)
	}

	m.urls = provider.URLs()
	m.homeURL = provider.HomeURL()
	m.credentials = provider.Accounts()
	return m, nil
}

// URLs returns a copy of the site URL map. It always holds all six sites.
func (m *Manager) URLs() sites.URLMap {
	out := make(sites.URLMap, len(m.urls))
	for k, v := range m.urls {
		out[k] = v
	}
	return out
}

// HomeURL returns the landing page of the environment.
func (m *Manager) HomeURL() string {
	return m.homeURL
}

// Credentials returns a copy of the credential map.
func (m *Manager) Credentials() sites.CredentialMap {
	out := make(sites.CredentialMap, len(m.credentials))
	for k, v := range m.credentials {
		out[k] = v
	}
	return out
}
