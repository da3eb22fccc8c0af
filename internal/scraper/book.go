package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/evolabz/wob-crawler/internal/extract"
	"github.com/evolabz/wob-crawler/internal/models"
)

// Item page selectors for the World of Books storefront.
const (
	titleSelector       = "h1.product__title"
	authorSelector      = ".product-author"
	priceSelector       = ".price-item--regular"
	conditionSelector   = ".product-condition-text"
	descriptionSelector = ".product__description"
)

// scrapeBook navigates to one item page and extracts a candidate
// record. Any returned error means the item is skipped; the run itself
// is never aborted from here. Missing optional fields are left empty.
func (c *Crawler) scrapeBook(ctx context.Context, bookURL string) (*models.Book, error) {
	page, err := c.pages.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open book page: %w", err)
	}
	defer page.Close()

	resp, err := page.Goto(bookURL)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%w: status %d", ErrPageLoad, resp.Status)
	}

	title, err := page.Text(titleSelector)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, ErrNoTitle
	}

	author := c.optionalText(page, authorSelector, bookURL)
	if author == "" {
		author = models.UnknownAuthor
	}
	priceText := c.optionalText(page, priceSelector, bookURL)
	condition := c.optionalText(page, conditionSelector, bookURL)
	description := c.optionalText(page, descriptionSelector, bookURL)

	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	snap, err := extract.NewSnapshot(html)
	if err != nil {
		return nil, err
	}

	sku := c.resolveSKU(snap, bookURL)
	publisher, year := extract.Publication(snap)

	return &models.Book{
		Title:           title,
		Author:          author,
		SKU:             sku,
		ISBN:            extract.ISBN(snap),
		Price:           extract.Price(priceText),
		URL:             bookURL,
		Condition:       condition,
		Binding:         extract.Binding(snap),
		Publisher:       publisher,
		PublicationYear: year,
		Description:     description,
		ImageURL:        snap.ImageURL,
		ScrapedAt:       time.Now(),
	}, nil
}

// resolveSKU applies the three-tier identifier fallback: URL segment,
// then the loaded page, then the deterministic hash of the URL.
func (c *Crawler) resolveSKU(snap *extract.Snapshot, bookURL string) string {
	if sku := extract.SKUFromURL(bookURL); sku != "" {
		return sku
	}
	if sku, ok := extract.SKUFromSnapshot(snap); ok {
		return sku
	}

	sku := extract.FallbackSKU(bookURL)
	c.logger.Warn("using fallback sku", "sku", sku, "url", bookURL)
	return sku
}

// optionalText reads one element's text; a query failure on an optional
// field never aborts the item.
func (c *Crawler) optionalText(page Page, selector, bookURL string) string {
	text, err := page.Text(selector)
	if err != nil {
		c.logger.Debug("optional field query failed",
			"selector", selector, "url", bookURL, "error", err)
		return ""
	}
	return text
}
