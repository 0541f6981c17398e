package utils

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserFlags returns the Chrome command line flags for a scrape session.
//
// Besides the automation-hiding flags, the session always runs with GPU
// rendering off, sandboxing off and /dev/shm usage off so it can start inside
// containers, and with a fixed window size.
func BrowserFlags(headless bool, width, height int) map[string]any {
	flags := map[string]any{
		"no-first-run":             true,
		"no-default-browser-check": true,
		"disable-blink-features":   "AutomationControlled",
		"excludeSwitches":          "enable-automation",
		"useAutomationExtension":   false,
		"disable-gpu":              true,
		"no-sandbox":               true,
		"disable-dev-shm-usage":    true,
		"window-size":              fmt.Sprintf("%d,%d", width, height),
		"user-agent":               userAgent,
	}

	if headless {
		flags["headless"] = "new"
	}

	return flags
}

// BrowserOpts turns BrowserFlags into allocator options.
func BrowserOpts(headless bool, width, height int) []chromedp.ExecAllocatorOption {
	flags := BrowserFlags(headless, width, height)
	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags))
	for name, value := range flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// HideWebDriver patches the navigator properties bot checks look at.
func HideWebDriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
			Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
			Object.defineProperty(navigator, 'languages', { get: () => ['he-IL', 'he', 'en-US', 'en'] });
		`, nil).Do(ctx)
	})
}
