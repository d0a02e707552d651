// Package browser drives Chromium through Playwright for SafeArena logins.
//
// A Session owns the Playwright runtime, one browser, one browsing context
// and its first page. Logins run in extra tabs of that context, so the
// session cookies they leave behind are shared by every page of the
// session:
//
//	session, err := browser.NewSession(browser.SessionOptions{Headless: true})
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	err = manager.UILogin(ctx, "gitlab", browser.Opener(session.Page))
//
// SaveStorageState writes the resulting cookies and local storage to a
// file that a benchmark harness can load into its own browser context.
package browser
