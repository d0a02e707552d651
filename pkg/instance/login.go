package instance

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/safearena/pkg/sites"
)

// Tab is a browser tab able to run a login script.
type Tab interface {
	Goto(url string) error
	// ClickRole clicks the element with the given ARIA role and accessible name.
	ClickRole(role, name string) error
	// FillLabel fills the form field labelled label.
	FillLabel(label, value string, exact bool) error
	Close() error
}

// TabOpener opens tabs in a browsing context. Cookies set by one tab are
// visible to every other tab of the same context.
type TabOpener interface {
	NewTab(ctx context.Context) (Tab, error)
}

type stepKind int

const (
	stepClick stepKind = iota
	stepFill
)

// credentialField selects which half of a credential a fill step types.
type credentialField int

const (
	fieldUsername credentialField = iota
	fieldPassword
)

type loginStep struct {
	kind stepKind

	// click
	role string
	name string

	// fill
	label string
	field credentialField
	exact bool
}

func click(role, name string) loginStep {
	return loginStep{kind: stepClick, role: role, name: name}
}

func fill(label string, field credentialField, exact bool) loginStep {
	return loginStep{kind: stepFill, label: label, field: field, exact: exact}
}

// loginScript navigates to base URL + path and runs steps in order.
type loginScript struct {
	path  string
	steps []loginStep
}

// scriptFor returns the login script of site.
func scriptFor(site string) (loginScript, error) {
	switch sites.ID(site) {
	case sites.Reddit:
		return loginScript{
			steps: []loginStep{
				click("link", "Log in"),
				fill("Username", fieldUsername, false),
				fill("Password", fieldPassword, false),
				click("button", "Log in"),
			},
		}, nil
	case sites.GitLab:
		return loginScript{
			path: "/users/sign_in",
			steps: []loginStep{
				fill("Username or email", fieldUsername, false),
				fill("Password", fieldPassword, false),
				click("button", "Sign in"),
			},
		}, nil
	case sites.Shopping:
		return loginScript{
			path: "/customer/account/login/",
			steps: []loginStep{
				fill("Email", fieldUsername, true),
				fill("Password", fieldPassword, true),
				click("button", "Sign In"),
			},
		}, nil
	case sites.ShoppingAdmin:
		return loginScript{
			steps: []loginStep{
				fill("Username", fieldUsername, false),
				fill("Password", fieldPassword, false),
				click("button", "Sign in"),
			},
		}, nil
	default:
		return loginScript{}, &InvalidSiteError{Site: site}
	}
}

// UILogin logs into site through its web UI in a new tab of page's
// browsing context, leaving the session cookie in that context. The tab is
// always closed. It expects the user to be logged out, so call it once per
// site. Whether the site accepted the credentials is not checked.
func (m *Manager) UILogin(ctx context.Context, site string, page TabOpener) (err error) {
	script, err := scriptFor(site)
	if err != nil {
		return err
	}

	id := sites.ID(site)
	url, ok := m.urls[id]
	if !ok {
		return fmt.Errorf("no URL configured for site %q", site)
	}
	cred, ok := m.credentials[id]
	if !ok {
		return fmt.Errorf("no credentials configured for site %q", site)
	}

	tab, err := page.NewTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to open login tab: %w", err)
	}
	defer func() {
		if closeErr := tab.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close login tab: %w", closeErr))
		}
	}()

	m.logger.Infof("Logging into %s as %s", site, cred.Username)
	if err := script.run(ctx, tab, url, cred); err != nil {
		return fmt.Errorf("%s login failed: %w", site, err)
	}
	return nil
}

func (s loginScript) run(ctx context.Context, tab Tab, baseURL string, cred sites.Credential) error {
	if err := tab.Goto(baseURL + s.path); err != nil {
		return err
	}

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch step.kind {
		case stepClick:
			if err := tab.ClickRole(step.role, step.name); err != nil {
				return err
			}
		case stepFill:
			value := cred.Username
			if step.field == fieldPassword {
				value = cred.Password
			}
			if err := tab.FillLabel(step.label, value, step.exact); err != nil {
				return err
			}
		}
	}
	return nil
}
