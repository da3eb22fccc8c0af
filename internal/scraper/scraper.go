// Package scraper drives the bounded catalog crawl: walk the paginated
// listing, discover item links, extract each new book and hand it to
// the store. One browsing session, strictly sequential.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evolabz/wob-crawler/internal/browser"
	"github.com/evolabz/wob-crawler/internal/config"
	"github.com/evolabz/wob-crawler/internal/database"
	"github.com/evolabz/wob-crawler/internal/extract"
	"github.com/evolabz/wob-crawler/internal/models"
)

const linkDiscoveryScript = `() => {
	const bookElements = document.querySelectorAll('.grid-view-item__link');
	return Array.from(bookElements).map(link => link.href);
}`

// Page is the browsing capability the crawl consumes. Implemented by
// browser.Page; faked in tests.
type Page interface {
	Goto(url string) (*browser.Response, error)
	Text(selector string) (string, error)
	Content() (string, error)
	Evaluate(script string) (any, error)
	Close() error
}

// Pages opens page handles within one browsing session.
type Pages interface {
	NewPage() (Page, error)
}

// BrowserPages adapts *browser.Browser to the Pages interface.
type BrowserPages struct {
	Browser *browser.Browser
}

func (b BrowserPages) NewPage() (Page, error) {
	return b.Browser.NewPage()
}

// Store is the persistence collaborator: dedup lookups and inserts.
type Store interface {
	FindBySKU(ctx context.Context, sku string) (*database.BookRow, error)
	Insert(ctx context.Context, book *models.Book) (int64, error)
}

// EventPublisher announces accepted books. Optional.
type EventPublisher interface {
	PublishBookIngested(ctx context.Context, bookID int64, book *models.Book) error
}

// Throttle paces item and page requests.
type Throttle interface {
	WaitItem(ctx context.Context) error
	WaitPage(ctx context.Context) error
}

// Summary is the read-only result of one crawl run.
type Summary struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
	Pages    int `json:"pages"`
}

// Crawler owns the pagination loop and its counters. Nothing else
// mutates the run state.
type Crawler struct {
	pages    Pages
	store    Store
	events   EventPublisher
	throttle Throttle
	cfg      config.CrawlConfig
	logger   *slog.Logger
}

func New(pages Pages, store Store, events EventPublisher, throttle Throttle, cfg config.CrawlConfig, logger *slog.Logger) *Crawler {
	return &Crawler{
		pages:    pages,
		store:    store,
		events:   events,
		throttle: throttle,
		cfg:      cfg,
		logger:   logger.With("component", "crawler"),
	}
}

// Run walks the listing until maxBooks records are accepted, the
// catalog is exhausted, or a listing page fails to load. Item-level
// failures are logged and skipped; only a context cancellation or an
// unusable browsing session surfaces as an error. The partial summary
// is always returned.
func (c *Crawler) Run(ctx context.Context, maxBooks int) (*Summary, error) {
	if maxBooks <= 0 {
		maxBooks = c.cfg.MaxBooks
	}

	summary := &Summary{}

	c.logger.Info("starting crawl", "target", c.cfg.TargetURL, "max_books", maxBooks)

	listing, err := c.pages.NewPage()
	if err != nil {
		return summary, fmt.Errorf("failed to open listing page: %w", err)
	}
	defer listing.Close()

	for pageNum := 1; summary.Accepted < maxBooks; pageNum++ {
		pageURL := listingURL(c.cfg.TargetURL, pageNum)

		c.logger.Info("loading listing page", "page", pageNum, "url", pageURL)
		resp, err := listing.Goto(pageURL)
		if err != nil {
			c.logger.Error("listing navigation failed, stopping", "page", pageNum, "error", err)
			break
		}
		if !resp.OK {
			c.logger.Warn("listing page returned non-success status, stopping",
				"page", pageNum, "status", resp.Status)
			break
		}
		summary.Pages = pageNum

		links := c.discoverLinks(listing)
		if len(links) == 0 {
			c.logger.Info("no book links found, catalog exhausted", "page", pageNum)
			break
		}
		c.logger.Info("discovered book links", "page", pageNum, "count", len(links))

		if err := c.processLinks(ctx, links, maxBooks, summary); err != nil {
			return summary, err
		}

		if summary.Accepted >= maxBooks {
			break
		}

		if err := c.throttle.WaitPage(ctx); err != nil {
			return summary, err
		}
	}

	c.logger.Info("crawl finished",
		"accepted", summary.Accepted,
		"skipped", summary.Skipped,
		"pages", summary.Pages)

	return summary, nil
}

// processLinks runs the item loop for one listing page. The only error
// it returns is a context cancellation from the throttle.
func (c *Crawler) processLinks(ctx context.Context, links []string, maxBooks int, summary *Summary) error {
	for _, link := range links {
		if summary.Accepted >= maxBooks {
			return nil
		}

		// Dedup before navigating: a known identifier costs no request.
		if sku := extract.SKUFromURL(link); sku != "" {
			existing, err := c.store.FindBySKU(ctx, sku)
			if err != nil {
				c.logger.Error("dedup lookup failed", "sku", sku, "error", err)
			} else if existing != nil {
				c.logger.Debug("book already ingested, skipping", "sku", sku)
				summary.Skipped++
				continue
			}
		}

		if err := c.throttle.WaitItem(ctx); err != nil {
			return err
		}

		book, err := c.scrapeBook(ctx, link)
		if err != nil {
			c.logger.Warn("skipping book", "url", link, "error", err)
			continue
		}

		book.Category = c.cfg.Category
		book.Subcategory = c.cfg.Subcategory

		id, err := c.store.Insert(ctx, book)
		if err != nil {
			if errors.Is(err, database.ErrDuplicateSKU) {
				c.logger.Debug("duplicate sku on insert, skipping", "sku", book.SKU)
				summary.Skipped++
				continue
			}
			c.logger.Error("failed to store book", "sku", book.SKU, "error", err)
			continue
		}

		summary.Accepted++
		c.logger.Info("added book",
			"title", book.Title,
			"sku", book.SKU,
			"id", id,
			"accepted", summary.Accepted)

		if c.events != nil {
			if err := c.events.PublishBookIngested(ctx, id, book); err != nil {
				c.logger.Error("failed to publish ingest event", "sku", book.SKU, "error", err)
			}
		}
	}

	return nil
}

// discoverLinks pulls the item URLs off a loaded listing page in
// first-seen order. Extraction errors yield an empty list, never a
// failed run.
func (c *Crawler) discoverLinks(page Page) []string {
	result, err := page.Evaluate(linkDiscoveryScript)
	if err != nil {
		c.logger.Error("link discovery failed", "error", err)
		return nil
	}

	raw, ok := result.([]any)
	if !ok {
		return nil
	}

	links := make([]string, 0, len(raw))
	for _, item := range raw {
		if href, ok := item.(string); ok && href != "" {
			links = append(links, href)
		}
	}
	return links
}

// listingURL builds the URL for a listing page. Page 1 is the bare
// target; later pages append a page parameter, respecting any query
// string already present.
func listingURL(target string, pageNum int) string {
	if pageNum <= 1 {
		return target
	}
	if strings.Contains(target, "?") {
		return fmt.Sprintf("%s&page=%d", target, pageNum)
	}
	return fmt.Sprintf("%s?page=%d", target, pageNum)
}
