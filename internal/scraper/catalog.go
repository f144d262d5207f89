package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/token"
	"github.com/netvlyx/vlyx/internal/util"
)

var catalogBlockSelectors = []string{"article", ".post-item", ".ml-item"}

const catalogTitleLinkSelector = "h2 a, h3 a, .entry-title a, .post-title a, a[rel=bookmark]"

// CatalogURL builds the listing URL for a page number and optional search
// query. Page numbers below 2 address the front page.
func CatalogURL(base, query string, page int) string {
	u := strings.TrimRight(strings.TrimSpace(base), "/") + "/"
	if page > 1 {
		u += "page/" + strconv.Itoa(page) + "/"
	}
	if q := strings.TrimSpace(query); q != "" {
		u += "?s=" + url.QueryEscape(q)
	}
	return u
}

// ExtractCatalog returns one entry per well-formed card of a listing page.
// Cards without an image or a title link are skipped. Links that start with
// one of origins are split on that origin instead of on the host.
func ExtractCatalog(doc *goquery.Document, pageURL string, origins ...string) []models.CatalogEntry {
	var strategies []Strategy[*goquery.Selection]
	for _, sel := range catalogBlockSelectors {
		sel := sel
		strategies = append(strategies, Strategy[*goquery.Selection]{
			Name: sel,
			Run: func(d *goquery.Document) (*goquery.Selection, bool) {
				blocks := d.Find(sel)
				return blocks, blocks.Length() > 0
			},
		})
	}

	blocks, name, ok := FirstMatch(doc, strategies...)
	if !ok {
		util.Debug("catalog has no recognizable blocks", "url", pageURL)
		return nil
	}

	var entries []models.CatalogEntry
	skipped := 0
	blocks.Each(func(_ int, s *goquery.Selection) {
		if e := parseCatalogBlock(s, pageURL, origins); e != nil {
			entries = append(entries, *e)
		} else {
			skipped++
		}
	})

	util.Debug("catalog extracted", "strategy", name, "entries", len(entries), "skipped", skipped)
	return entries
}

func parseCatalogBlock(s *goquery.Selection, pageURL string, origins []string) *models.CatalogEntry {
	img := s.Find("img").First()
	if img.Length() == 0 {
		return nil
	}
	link := s.Find(catalogTitleLinkSelector).First()
	if link.Length() == 0 {
		return nil
	}

	href := attrOf(link, "href")
	if href == "" {
		return nil
	}

	title := textOf(link)
	if title == "" {
		title = attrOf(link, "title")
	}
	if title == "" {
		title = attrOf(img, "alt")
	}
	if title == "" {
		return nil
	}

	ref, ok := itemRefFor(resolveURL(pageURL, href), pageURL, origins)
	if !ok {
		return nil
	}
	tok, err := token.EncodeItemRef(ref)
	if err != nil {
		return nil
	}

	return &models.CatalogEntry{
		Title:     title,
		PosterURL: resolveURL(pageURL, attrOf(img, "data-src", "data-lazy-src", "src")),
		ItemRef:   tok,
	}
}

// itemRefFor splits an absolute item URL into origin and slug
func itemRefFor(itemURL, pageURL string, origins []string) (models.ItemRef, bool) {
	origin := ""
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && strings.HasPrefix(itemURL, o+"/") {
			origin = o
			break
		}
	}
	if origin == "" {
		origin = originOf(itemURL)
	}
	if origin == "" {
		origin = originOf(pageURL)
	}
	if origin == "" {
		return models.ItemRef{}, false
	}

	slug := strings.TrimPrefix(itemURL, origin)
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return models.ItemRef{}, false
	}
	return models.ItemRef{Slug: slug, Origin: origin}, true
}
