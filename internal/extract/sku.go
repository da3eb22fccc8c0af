package extract

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var skuTextPattern = regexp.MustCompile(`(?i)SKU:\s*([A-Z0-9-]+)`)

// SKUFromURL derives the identifier from the final path segment of an
// item URL. Segments of 5 characters or fewer are treated as noise.
func SKUFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segment := path.Base(strings.TrimRight(parsed.Path, "/"))
	if segment == "." || segment == "/" || len(segment) <= 5 {
		return ""
	}
	return segment
}

// SKUFromSnapshot pulls an identifier off the loaded page: an explicit
// identifier element, then a JSON-LD sku (top level or under offers),
// then a free-text "SKU: <token>" scan.
func SKUFromSnapshot(s *Snapshot) (string, bool) {
	return firstMatch(s,
		func(s *Snapshot) (string, bool) { return s.SKUText, s.SKUText != "" },
		func(s *Snapshot) (string, bool) { return s.structuredValue("sku") },
		func(s *Snapshot) (string, bool) { return s.structuredValue("offers.sku") },
		func(s *Snapshot) (string, bool) {
			if m := skuTextPattern.FindStringSubmatch(s.Body); m != nil {
				return strings.TrimSpace(m[1]), true
			}
			return "", false
		},
	)
}

// FallbackSKU synthesizes a deterministic identifier for pages that
// never expose a real one. FNV-32a keeps the value stable across runs
// and platforms, which is what makes dedup against prior runs work.
func FallbackSKU(rawURL string) string {
	h := fnv.New32a()
	h.Write([]byte(rawURL))
	return fmt.Sprintf("WOB-%07d", h.Sum32()%10_000_000)
}
