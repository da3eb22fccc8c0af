package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Response carries the navigation outcome the crawl cares about.
type Response struct {
	OK     bool
	Status int
}

// Page wraps a playwright page behind the small capability surface the
// crawl consumes: navigate, read one element's text, snapshot the HTML,
// run a script, close.
type Page struct {
	page    playwright.Page
	timeout time.Duration
}

// Goto navigates and waits for DOMContentLoaded. A nil playwright
// response (e.g. about:blank) is reported as a failed navigation.
func (p *Page) Goto(url string) (*Response, error) {
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("goto %s: %w", url, err)
	}
	if resp == nil {
		return &Response{}, nil
	}
	return &Response{OK: resp.Ok(), Status: resp.Status()}, nil
}

// Text returns the trimmed text content of the first element matching
// the selector, or "" when no element matches. Absence is not an error.
func (p *Page) Text(selector string) (string, error) {
	locator := p.page.Locator(selector).First()

	count, err := locator.Count()
	if err != nil {
		return "", fmt.Errorf("query %q: %w", selector, err)
	}
	if count == 0 {
		return "", nil
	}

	text, err := locator.TextContent()
	if err != nil {
		return "", fmt.Errorf("text content of %q: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// Content snapshots the current DOM as HTML.
func (p *Page) Content() (string, error) {
	html, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	return html, nil
}

// Evaluate runs a script against the loaded DOM and returns its
// JSON-serializable result.
func (p *Page) Evaluate(script string) (any, error) {
	result, err := p.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return result, nil
}

func (p *Page) Close() error {
	return p.page.Close()
}
