package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Default values for new sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for page actions (in milliseconds)
	Timeout float64

	// SkipInstall assumes the Playwright driver and Chromium are already installed
	SkipInstall bool

	// Output receives the driver's install and runtime output. Discarded if nil.
	Output io.Writer
}

// Session is a running browser with one browsing context.
type Session struct {
	pw *playwright.Playwright

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browsing context shared by every tab of the session
	Context playwright.BrowserContext

	// Page is the first page of the context
	Page playwright.Page

	Headless  bool
	CreatedAt time.Time
}

func (opts *SessionOptions) setDefaults() {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
}

// NewSession starts Playwright and opens Chromium with a fresh context and page.
func NewSession(opts SessionOptions) (*Session, error) {
	opts.setDefaults()

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   opts.Output,
		Stderr:   opts.Output,
	}

	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	context.SetDefaultTimeout(opts.Timeout)

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Session{
		pw:        pw,
		Browser:   browser,
		Context:   context,
		Page:      page,
		Headless:  opts.Headless,
		CreatedAt: time.Now(),
	}, nil
}

// SaveStorageState writes the context's cookies and local storage to path.
func (s *Session) SaveStorageState(path string) error {
	if _, err := s.Context.StorageState(path); err != nil {
		return fmt.Errorf("failed to save storage state: %w", err)
	}
	return nil
}

// Close releases the page, context, browser and Playwright driver.
func (s *Session) Close() error {
	_ = s.Page.Close()    // Ignore errors, continue cleanup
	_ = s.Context.Close() // Ignore errors, continue cleanup
	_ = s.Browser.Close() // Ignore errors, continue cleanup

	if err := s.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
