package models

import (
	"time"
)

// Book is one extracted catalog record. Title and SKU are the only
// required fields; everything else degrades to its zero value when the
// page does not expose it.
type Book struct {
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	SKU             string    `json:"sku"`
	ISBN            string    `json:"isbn,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	URL             string    `json:"url"`
	Condition       string    `json:"condition,omitempty"`
	Binding         string    `json:"binding,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear string    `json:"publication_year,omitempty"`
	Description     string    `json:"description,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Category        string    `json:"category,omitempty"`
	Subcategory     string    `json:"subcategory,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// UnknownAuthor is stored when an item page carries no author element.
const UnknownAuthor = "Unknown"

// Fields returns the flat column/value mapping handed to the store and
// the event payload. Absent optionals are explicit nils, never omitted.
func (b *Book) Fields() map[string]any {
	return map[string]any{
		"title":            b.Title,
		"author":           nullable(b.Author),
		"sku":              b.SKU,
		"isbn":             nullable(b.ISBN),
		"wob_price":        b.Price,
		"wob_url":          b.URL,
		"condition":        nullable(b.Condition),
		"binding":          nullable(b.Binding),
		"publisher":        nullable(b.Publisher),
		"publication_year": nullable(b.PublicationYear),
		"description":      nullable(b.Description),
		"image_url":        nullable(b.ImageURL),
		"category":         nullable(b.Category),
		"subcategory":      nullable(b.Subcategory),
	}
}

// Valid reports whether the record may be persisted. A book without a
// title is discarded before it ever reaches the store.
func (b *Book) Valid() bool {
	return b != nil && b.Title != "" && b.SKU != ""
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
