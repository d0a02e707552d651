package browser

import (
	"context"
	"fmt"

	"github.com/entrhq/safearena/pkg/instance"
	"github.com/playwright-community/playwright-go"
)

// pageOpener opens tabs in the browsing context of a page.
type pageOpener struct {
	page playwright.Page
}

// Opener returns an instance.TabOpener that opens new tabs in page's
// browsing context.
func Opener(page playwright.Page) instance.TabOpener {
	return &pageOpener{page: page}
}

// NewTab opens a new page in the same context.
func (o *pageOpener) NewTab(ctx context.Context) (instance.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := o.page.Context().NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &pageTab{page: page}, nil
}

// pageTab runs login steps with Playwright's role and label locators.
type pageTab struct {
	page playwright.Page
}

func (t *pageTab) Goto(url string) error {
	if _, err := t.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (t *pageTab) ClickRole(role, name string) error {
	locator := t.page.GetByRole(playwright.AriaRole(role), playwright.PageGetByRoleOptions{
		Name: name,
	})
	if err := locator.Click(); err != nil {
		return fmt.Errorf("click %s %q failed: %w", role, name, err)
	}
	return nil
}

func (t *pageTab) FillLabel(label, value string, exact bool) error {
	locator := t.page.GetByLabel(label, playwright.PageGetByLabelOptions{
		Exact: playwright.Bool(exact),
	})
	if err := locator.Fill(value); err != nil {
		return fmt.Errorf("fill %q failed: %w", label, err)
	}
	return nil
}

func (t *pageTab) Close() error {
	return t.page.Close()
}
