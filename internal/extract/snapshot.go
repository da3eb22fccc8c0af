package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the World of Books product page layout.
const (
	detailsSelector    = ".product-details-wrapper"
	structuredSelector = `script[type="application/ld+json"]`
	skuSelector        = "[data-sku], .product-single__sku"
	imageSelector      = ".product__media img"
)

// Snapshot is a plain-value capture of one loaded item page. The field
// extractors are pure functions over it, so they can be exercised
// against recorded fixtures without a browser.
type Snapshot struct {
	// Details is the text of the product details container, the primary
	// source for ISBN, binding and publication data.
	Details string
	// Body is the full page text, the last-resort source.
	Body string
	// SKUText is the text of an explicit identifier element, if any.
	SKUText string
	// ImageURL is the src of the first product media image, if any.
	ImageURL string

	structured []map[string]any
}

// NewSnapshot parses an item page's HTML into a Snapshot.
func NewSnapshot(html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	s := &Snapshot{
		Details:  strings.TrimSpace(doc.Find(detailsSelector).Text()),
		Body:     strings.TrimSpace(doc.Find("body").Text()),
		SKUText:  strings.TrimSpace(doc.Find(skuSelector).First().Text()),
		ImageURL: strings.TrimSpace(doc.Find(imageSelector).First().AttrOr("src", "")),
	}

	doc.Find(structuredSelector).Each(func(_ int, sel *goquery.Selection) {
		var payload map[string]any
		// Malformed JSON-LD blocks are common in the wild; skip them.
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err == nil {
			s.structured = append(s.structured, payload)
		}
	})

	return s, nil
}

// structuredValue walks the parsed JSON-LD payloads for a dotted key
// path ("offers.sku") and returns the first non-empty string value.
func (s *Snapshot) structuredValue(path string) (string, bool) {
	keys := strings.Split(path, ".")

	for _, payload := range s.structured {
		node := any(payload)
		found := true
		for _, key := range keys {
			m, ok := node.(map[string]any)
			if !ok {
				found = false
				break
			}
			node, ok = m[key]
			if !ok {
				found = false
				break
			}
		}
		if !found {
			continue
		}
		switch v := node.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed, true
			}
		case float64:
			return strings.TrimSpace(fmt.Sprintf("%v", v)), true
		}
	}

	return "", false
}
