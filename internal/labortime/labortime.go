// Package labortime looks up book labor times from a web-based labor guide
// via a headless browser. The guide has no API; absence of a result is
// non-fatal and callers fall back to stored estimates.
package labortime

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Client fetches labor-time estimates for a repair procedure.
type Client interface {
	Fetch(ctx context.Context, year int, vehicleMake, vehicleModel, procedure string) (models.LaborEstimate, error)
}

// BrowserClient implements Client by scraping a labor guide site with
// headless Chromium.
type BrowserClient struct {
	guideURL string
}

// NewBrowserClient creates a labor-time client for the given guide base URL.
func NewBrowserClient(guideURL string) *BrowserClient {
	return &BrowserClient{guideURL: guideURL}
}

// hoursPattern matches labor figures like "2.5 hrs", "1.2 hours" or "3 hr".
var hoursPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hrs?|hours?)`)

// Fetch opens the guide's search page for the vehicle and procedure and
// extracts the quoted labor hours from the result text.
func (c *BrowserClient) Fetch(ctx context.Context, year int, vehicleMake, vehicleModel, procedure string) (models.LaborEstimate, error) {
	var estimate models.LaborEstimate

	pw, err := playwright.Run()
	if err != nil {
		return estimate, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return estimate, fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return estimate, fmt.Errorf("could not create page: %w", err)
	}

	searchURL := fmt.Sprintf("%s/search?year=%d&make=%s&model=%s&procedure=%s",
		c.guideURL, year,
		strings.ReplaceAll(vehicleMake, " ", "+"),
		strings.ReplaceAll(vehicleModel, " ", "+"),
		strings.ReplaceAll(procedure, " ", "+"))

	if _, err = page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return estimate, fmt.Errorf("could not navigate: %w", err)
	}

	page.WaitForTimeout(1000)

	content, err := page.Locator("body").InnerText()
	if err != nil {
		return estimate, fmt.Errorf("could not get page content: %w", err)
	}

	return ParseEstimate(content)
}

// ParseEstimate extracts the first labor-hours figure from guide page text.
func ParseEstimate(content string) (models.LaborEstimate, error) {
	var estimate models.LaborEstimate

	match := hoursPattern.FindStringSubmatch(content)
	if match == nil {
		return estimate, fmt.Errorf("no labor hours found in guide result")
	}

	hours, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return estimate, fmt.Errorf("could not parse hours %q: %w", match[1], err)
	}

	estimate.Hours = hours
	if idx := strings.Index(content, "Note:"); idx >= 0 {
		note := content[idx+len("Note:"):]
		if end := strings.IndexByte(note, '\n'); end >= 0 {
			note = note[:end]
		}
		estimate.Notes = strings.TrimSpace(note)
	}
	return estimate, nil
}

// IsAvailable checks if playwright browsers are installed.
func IsAvailable() bool {
	pw, err := playwright.Run()
	if err != nil {
		return false
	}
	pw.Stop()
	return true
}

// Install installs playwright browsers.
func Install() error {
	return playwright.Install()
}
