package instance

import (
	"errors"
	"fmt"

	"github.com/entrhq/safearena/pkg/config"
	"github.com/entrhq/safearena/pkg/poll"
	"github.com/entrhq/safearena/pkg/sites"
)

// ErrResetUnavailable is returned by FullReset when no reset service is
// configured and skipping was not allowed.
var ErrResetUnavailable = errors.New("instance: could not reset instance, " + config.ResetURLVar + " is not set")

// ResetRequestError reports a rejected reset trigger.
type ResetRequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ResetRequestError) Error() string {
	return fmt.Sprintf("reset request %s failed (%d): %s", e.URL, e.StatusCode, e.Body)
}

// StatusRequestError reports a failed status poll.
type StatusRequestError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusRequestError) Error() string {
	return fmt.Sprintf("status request %s failed (%d): %s", e.URL, e.StatusCode, e.Body)
}

// ResetTimeoutError reports a reset that never reached the ready state.
type ResetTimeoutError struct {
	*poll.TimeoutError
}

func (e *ResetTimeoutError) Error() string {
	return fmt.Sprintf("reset still running after %.0f seconds (> %.0f), aborting",
		e.Elapsed.Seconds(), e.Timeout.Seconds())
}

// Unwrap returns the underlying poll timeout
func (e *ResetTimeoutError) Unwrap() error {
	return e.TimeoutError
}

// ReachabilityError reports a site that did not answer within the timeout.
type ReachabilityError struct {
	Site sites.ID
	URL  string
	Err  error
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("SafeArena site %q (%s) is not reachable, please check the URL: %v", e.Site, e.URL, e.Err)
}

// Unwrap returns the transport error
func (e *ReachabilityError) Unwrap() error {
	return e.Err
}

// InvalidSiteError reports a site without a login script.
type InvalidSiteError struct {
	Site string
}

func (e *InvalidSiteError) Error() string {
	return fmt.Sprintf("no UI login available for site %q", e.Site)
}
