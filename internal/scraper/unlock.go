package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

// canonicalIDSelectors mark the single "next" link of an unlock page
const canonicalIDSelectors = "a#download, #download a, a#vd, #vd a, a[data-canonical]"

const buttonSelectors = "a.btn, a.button, a[class*=btn]"

// callsToAction are matched, lowercased, against button text
var callsToAction = []string{
	"generate direct download link",
	"direct download",
	"download now",
	"continue",
}

var canonicalStrategies = []Strategy[string]{
	{Name: "identifier", Run: canonicalByIdentifier},
	{Name: "call-to-action", Run: canonicalByButtonText},
}

func canonicalByIdentifier(doc *goquery.Document) (string, bool) {
	var href string
	doc.Find(canonicalIDSelectors).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href = attrOf(a, "data-canonical", "href")
		return classify.Discard(href)
	})
	return href, !classify.Discard(href)
}

func canonicalByButtonText(doc *goquery.Document) (string, bool) {
	var href string
	doc.Find(buttonSelectors).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(textOf(a))
		for _, cta := range callsToAction {
			if strings.Contains(text, cta) {
				if h := attrOf(a, "href"); !classify.Discard(h) {
					href = h
					return false
				}
			}
		}
		return true
	})
	return href, href != ""
}

// ExtractCanonicalLink returns the next-hop URL of the first unlock page,
// resolved against pageURL.
func ExtractCanonicalLink(doc *goquery.Document, pageURL string) (string, error) {
	href, strategy, ok := FirstMatch(doc, canonicalStrategies...)
	if !ok {
		return "", extractErr(StageHop1, ReasonCanonicalNotFound)
	}
	util.Debug("canonical link found", "strategy", strategy, "href", href)
	return resolveURL(pageURL, href), nil
}

// ExtractFinalLinks classifies every anchor of the final unlock page and
// returns the provider links in document order.
func ExtractFinalLinks(doc *goquery.Document, pageURL string) ([]models.ProviderLink, error) {
	anchors := doc.Find("a")
	if anchors.Length() == 0 {
		return nil, extractErr(StageHop2, ReasonNoAnchors)
	}

	var links []models.ProviderLink
	anchors.Each(func(_ int, a *goquery.Selection) {
		href := attrOf(a, "href")
		label, ok := classify.Default.Classify(textOf(a), href)
		if !ok {
			return
		}
		mediaType := models.DefaultMediaType
		if label == classify.ZipDisk {
			mediaType = "zip"
		}
		links = append(links, models.NewProviderLink(string(label), resolveURL(pageURL, href), mediaType))
	})
	if len(links) == 0 {
		return nil, noLinks(StageHop2)
	}

	util.Debug("final links extracted", "anchors", anchors.Length(), "links", len(links))
	return links, nil
}
