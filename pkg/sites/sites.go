// Package sites provides the URLs and accounts of the benchmark web
// applications. URLs are read from the unprefixed environment variables
// exported by config.Export.
package sites

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ID identifies a benchmark site.
type ID string

const (
	Reddit        ID = "reddit"
	GitLab        ID = "gitlab"
	Shopping      ID = "shopping"
	ShoppingAdmin ID = "shopping_admin"
	Wikipedia     ID = "wikipedia"
	Map           ID = "map"
)

// All returns every site identifier in a stable order.
func All() []ID {
	return []ID{Reddit, GitLab, Shopping, ShoppingAdmin, Wikipedia, Map}
}

// Auxiliary reports whether the site is kept in the URL map only for
// compatibility. SafeArena does not serve it.
func (id ID) Auxiliary() bool {
	return id == Wikipedia || id == Map
}

// ParseID validates a site identifier.
func ParseID(s string) (ID, error) {
	for _, id := range All() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown site %q", s)
}

// URLMap maps every site to its base URL.
type URLMap map[ID]string

// Ordered returns the site identifiers present in m in All order.
func (m URLMap) Ordered() []ID {
	ids := make([]ID, 0, len(m))
	for _, id := range All() {
		if _, ok := m[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Credential is a username/password pair for one site.
type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CredentialMap maps sites to their login credentials.
type CredentialMap map[ID]Credential

// DefaultAccounts are the accounts baked into the benchmark images.
func DefaultAccounts() CredentialMap {
	return CredentialMap{
		Reddit:        {Username: "MarvelsGrantMan136", Password: "test1234"},
		GitLab:        {Username: "byteblaze", Password: "hello1234"},
		Shopping:      {Username: "emma.lopez@gmail.com", Password: "Password.123"},
		ShoppingAdmin: {Username: "admin", Password: "admin1234"},
	}
}

// env mirrors the unprefixed variables.
type env struct {
	Reddit        string `envconfig:"REDDIT" required:"true"`
	GitLab        string `envconfig:"GITLAB" required:"true"`
	Shopping      string `envconfig:"SHOPPING" required:"true"`
	ShoppingAdmin string `envconfig:"SHOPPING_ADMIN" required:"true"`
	Wikipedia     string `envconfig:"WIKIPEDIA" required:"true"`
	Map           string `envconfig:"MAP" required:"true"`
	Homepage      string `envconfig:"HOMEPAGE" required:"true"`
}

// Provider holds the resolved site configuration.
type Provider struct {
	urls     URLMap
	homeURL  string
	accounts CredentialMap
}

// Load reads the site URLs from the environment. If accountsFile is not
// empty, its accounts override the defaults per site.
func Load(accountsFile string) (*Provider, error) {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("failed to read site configuration: %w", err)
	}

	accounts := DefaultAccounts()
	if accountsFile != "" {
		overrides, err := LoadAccounts(accountsFile)
		if err != nil {
			return nil, err
		}
		for id, cred := range overrides {
			accounts[id] = cred
		}
	}

	return &Provider{
		urls: URLMap{
			Reddit:        e.Reddit,
			GitLab:        e.GitLab,
			Shopping:      e.Shopping,
			ShoppingAdmin: e.ShoppingAdmin,
			Wikipedia:     e.Wikipedia,
			Map:           e.Map,
		},
		homeURL:  e.Homepage,
		accounts: accounts,
	}, nil
}

type accountsDoc struct {
	Accounts map[string]Credential `yaml:"accounts"`
}

// LoadAccounts parses a YAML accounts file of the form
//
//	accounts:
//	  reddit:
//	    username: someone
//	    password: secret
func LoadAccounts(path string) (CredentialMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var f accountsDoc
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	accounts := make(CredentialMap, len(f.Accounts))
	for name, cred := range f.Accounts {
		id, err := ParseID(name)
		if err != nil {
			return nil, fmt.Errorf("accounts file %s: %w", path, err)
		}
		accounts[id] = cred
	}
	return accounts, nil
}

// URLs returns a copy of the site URL map.
func (p *Provider) URLs() URLMap {
	out := make(URLMap, len(p.urls))
	for k, v := range p.urls {
		out[k] = v
	}
	return out
}

// HomeURL returns the landing page of the environment.
func (p *Provider) HomeURL() string {
	return p.homeURL
}

// Accounts returns a copy of the credential map.
func (p *Provider) Accounts() CredentialMap {
	out := make(CredentialMap, len(p.accounts))
	for k, v := range p.accounts {
		out[k] = v
	}
	return out
}
