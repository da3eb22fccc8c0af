package scraper

import "errors"

var (
	// ErrNoTitle marks an item page with no title element; the record is
	// discarded before it reaches the store.
	ErrNoTitle = errors.New("book page has no title")
	// ErrPageLoad marks a navigation that returned no usable response.
	ErrPageLoad = errors.New("failed to load page")
)
