package instance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/entrhq/safearena/pkg/config"
	"github.com/entrhq/safearena/pkg/poll"
)

const (
	// readyMessage is the exact status body of a finished reset
	readyMessage = "Ready for duty!"

	statusInterval = 20 * time.Second
	resetTimeout   = 10 * time.Minute

	// warming up after a reset can be slow
	warmupTimeout  = 60 * time.Second
	warmupAttempts = 3

	statusTimeout = 10 * time.Second
)

// FullReset wipes and rebuilds the instance through the reset service at
// SA_FULL_RESET, waits until it reports ready and then warms up every site.
//
// Without a reset service, FullReset returns nil if skipIfNotSet is true
// and ErrResetUnavailable otherwise. Neither case makes a request.
func (m *Manager) FullReset(ctx context.Context, skipIfNotSet bool) error {
	base := m.cfg.ResetURL()
	if base == "" {
		m.logger.Errorf("Environment variable %s is missing or empty, required for a full instance reset.", config.ResetURLVar)
		if skipIfNotSet {
			m.logger.Warnf("Skipping automated reset. Make sure the instance has been manually reset.")
			return nil
		}
		return ErrResetUnavailable
	}

	resetURL := base + "/reset"
	statusURL := base + "/status"

	m.logger.Infof("Initiating instance reset on URL %s. Should take between 200 - 500 seconds to restart.", resetURL)

	if err := m.triggerReset(ctx, resetURL); err != nil {
		return err
	}

	err := poll.Until(ctx, m.clock, poll.Options{
		Interval: statusInterval,
		Timeout:  resetTimeout,
		OnWait: func(elapsed time.Duration) {
			m.logger.Infof("Reset still running after %.0f seconds...", elapsed.Seconds())
		},
	}, func(ctx context.Context) (bool, error) {
		return m.resetFinished(ctx, statusURL)
	})
	if err != nil {
		var timeoutErr *poll.TimeoutError
		if errors.As(err, &timeoutErr) {
			return &ResetTimeoutError{TimeoutError: timeoutErr}
		}
		return err
	}

	return poll.Retry(ctx, warmupAttempts, func(ctx context.Context) error {
		return m.checkIsReachable(ctx, warmupTimeout)
	}, func(left int, err error) {
		m.logger.Infof("Instance unresponsive after reset, retrying (%d retries left)\n%v", left, err)
	})
}

func (m *Manager) triggerReset(ctx context.Context, resetURL string) error {
	resp, err := m.client.R().SetContext(ctx).Get(resetURL)
	if err != nil {
		return fmt.Errorf("reset request %s failed: %w", resetURL, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		m.logger.Infof("Reset started.")
	case http.StatusTeapot:
		m.logger.Warnf("Reset was already running.")
	default:
		return &ResetRequestError{URL: resetURL, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

func (m *Manager) resetFinished(ctx context.Context, statusURL string) (bool, error) {
	resp, err := m.client.R().SetContext(ctx).Get(statusURL)
	if err != nil {
		return false, fmt.Errorf("status request %s failed: %w", statusURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, &StatusRequestError{URL: statusURL, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return string(resp.Body()) == readyMessage, nil
}

// CheckStatus verifies that every site answers within 10 seconds. It does
// not retry.
func (m *Manager) CheckStatus(ctx context.Context) error {
	return m.checkIsReachable(ctx, statusTimeout)
}

// checkIsReachable requests every site URL in sites.All order and stops at
// the first one that cannot be reached within timeout. Any HTTP status
// counts as reachable. Auxiliary sites holding a placeholder instead of a
// URL are skipped.
func (m *Manager) checkIsReachable(ctx context.Context, timeout time.Duration) error {
	for _, site := range m.urls.Ordered() {
		url := m.urls[site]
		if site.Auxiliary() && !isHTTPURL(url) {
			m.logger.Debugf("Skipping reachability check for placeholder site %q (%s)", site, url)
			continue
		}
		if err := m.probe(ctx, url, timeout); err != nil {
			return &ReachabilityError{Site: site, URL: url, Err: err}
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := neturl.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (m *Manager) probe(ctx context.Context, url string, timeout time.Duration) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.R().SetContext(reqCtx).Get(url)
	return err
}
