package scraper

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

// QualityTerms splits a free-text quality label into the words used to find
// the matching heading on a mirror page. Words of two characters or fewer
// are ignored; the length is counted before brackets and punctuation are
// trimmed, so "[1]" yields "1".
func QualityTerms(label string) []string {
	var terms []string
	for _, w := range strings.Fields(label) {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			terms = append(terms, strings.ToLower(w))
		}
	}
	return terms
}

// matchQualityHeading returns the downloads block under the last heading
// containing every term. Later headings override earlier ones.
func matchQualityHeading(doc *goquery.Document, terms []string) (*goquery.Selection, string) {
	if len(terms) == 0 {
		return nil, ""
	}

	var block *goquery.Selection
	var matched string
	doc.Find(downloadSectionSelector + " h4").Each(func(_ int, h *goquery.Selection) {
		text := strings.ToLower(textOf(h))
		for _, term := range terms {
			if !strings.Contains(text, term) {
				return
			}
		}
		if next := downloadsBlock(h); next.Length() > 0 {
			block = next
			matched = textOf(h)
		}
	})
	return block, matched
}

// ExtractServers finds the heading matching qualityLabel on a mirror page and
// returns its mirror links in document order.
func ExtractServers(doc *goquery.Document, qualityLabel string) ([]models.ProviderLink, error) {
	block, heading := matchQualityHeading(doc, QualityTerms(qualityLabel))
	if block == nil {
		return nil, extractErr(StageServers, ReasonQualityNotMatched)
	}

	var links []models.ProviderLink
	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		href := attrOf(a, "href")
		if label, ok := classify.Mirrors.Classify(textOf(a), href); ok {
			links = append(links, models.NewProviderLink(string(label), href, ""))
		}
	})
	if len(links) == 0 {
		return nil, noLinks(StageServers)
	}

	util.Debug("servers extracted", "quality", qualityLabel, "heading", heading, "links", len(links))
	return links, nil
}
