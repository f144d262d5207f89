// Package scraper fetches the source site's pages and extracts catalog
// entries, quality groups, episode links and unlock hops from them.
package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// Parse turns raw HTML into a queryable document
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

// textOf returns the whitespace-collapsed text of a selection
func textOf(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// attrOf returns the first non-empty attribute among names
func attrOf(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// resolveURL resolves ref against base; absolute refs are returned unchanged
func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// originOf returns scheme://host of an absolute URL, or "" when rawURL has no host
func originOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || u.Scheme == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// downloadsBlock returns the element that follows heading when it is a
// downloads block, or an empty selection
func downloadsBlock(heading *goquery.Selection) *goquery.Selection {
	next := heading.Next()
	if !next.HasClass(downloadsBlockClass) {
		return next.Slice(0, 0)
	}
	return next
}

const (
	downloadSectionSelector = ".download-links-div"
	downloadsBlockClass     = "downloads-btns-div"
)
