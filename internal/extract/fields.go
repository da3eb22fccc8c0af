// Package extract holds the pure field extractors for item pages.
// Catalog markup is inconsistent from one listing to the next, so every
// field is an ordered chain of strategies tried in priority order: a
// strict single-selector approach would silently lose data.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// strategy is one attempt at pulling a field out of a snapshot.
type strategy func(*Snapshot) (string, bool)

// firstMatch runs the chain in order and stops at the first hit.
func firstMatch(s *Snapshot, chain ...strategy) (string, bool) {
	for _, try := range chain {
		if value, ok := try(s); ok {
			return value, true
		}
	}
	return "", false
}

var (
	currencyPricePattern = regexp.MustCompile(`[€£$]?\s*(\d+\.\d{2})`)
	loosePricePattern    = regexp.MustCompile(`(\d+)\.?(\d{2})?`)

	isbnPattern  = regexp.MustCompile(`(?i)ISBN[:\s]*(97[89]\d{10}|\d{9}[0-9Xx])`)
	nonISBNChars = regexp.MustCompile(`[^0-9X]`)

	publisherPattern = regexp.MustCompile(`(?i)Publisher[:\s]*([^,\n\r.]+)`)
	yearPatterns     = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Published[:\s]*in[:\s]*(\d{4})`),
		regexp.MustCompile(`(?i)Publication[:\s]*year[:\s]*(\d{4})`),
		regexp.MustCompile(`(?i)Year[:\s]*(\d{4})`),
	}
)

// bindingTerms is the closed binding vocabulary, in match priority order.
var bindingTerms = []string{
	"hardcover", "hardback", "hard cover", "hard back",
	"paperback", "softcover", "soft cover", "soft back",
	"leather bound", "leatherbound", "audio cd", "audiobook",
}

var bindingPatterns = compileBindingPatterns()

func compileBindingPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(bindingTerms))
	for i, term := range bindingTerms {
		patterns[i] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(term, " ", `\s`) + `\b`)
	}
	return patterns
}

// Price parses a displayed price into a plain decimal amount, currency
// symbol stripped. A bare integer like "15" yields 15.00; text with no
// usable number yields nil.
func Price(text string) *float64 {
	if text == "" {
		return nil
	}

	if m := currencyPricePattern.FindStringSubmatch(text); m != nil {
		if value, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &value
		}
	}

	if m := loosePricePattern.FindStringSubmatch(text); m != nil {
		cents := m[2]
		if cents == "" {
			cents = "00"
		}
		if value, err := strconv.ParseFloat(m[1]+"."+cents, 64); err == nil {
			return &value
		}
	}

	return nil
}

// ISBN extracts a 13-digit (978/979) or 10-digit (optional trailing X)
// ISBN: details text first, then JSON-LD, then the full page text.
// The result contains digits and X only.
func ISBN(s *Snapshot) string {
	value, ok := firstMatch(s,
		func(s *Snapshot) (string, bool) { return matchISBN(s.Details) },
		func(s *Snapshot) (string, bool) { return s.structuredValue("isbn") },
		func(s *Snapshot) (string, bool) { return matchISBN(s.Body) },
	)
	if !ok {
		return ""
	}
	return nonISBNChars.ReplaceAllString(strings.ToUpper(value), "")
}

func matchISBN(text string) (string, bool) {
	if m := isbnPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// Binding scans the details text against the closed binding vocabulary
// and returns the first term present, canonicalized ("Hardcover").
func Binding(s *Snapshot) string {
	for i, pattern := range bindingPatterns {
		if pattern.MatchString(s.Details) {
			return canonicalize(bindingTerms[i])
		}
	}
	return ""
}

func canonicalize(term string) string {
	lower := strings.ToLower(term)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Publication extracts the publisher name and the 4-digit publication
// year from the details text. The two are independent; either may be
// present without the other.
func Publication(s *Snapshot) (publisher, year string) {
	if m := publisherPattern.FindStringSubmatch(s.Details); m != nil {
		publisher = strings.TrimSpace(m[1])
	}
	for _, pattern := range yearPatterns {
		if m := pattern.FindStringSubmatch(s.Details); m != nil {
			year = m[1]
			break
		}
	}
	return publisher, year
}
