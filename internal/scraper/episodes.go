package scraper

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

var episodeNumberRe = regexp.MustCompile(`\d+`)

// UnknownEpisode stands in for an episode heading without a number
const UnknownEpisode = "?"

// ExtractEpisodes parses an episode listing page. Only links accepted by
// classify.Episodes are kept; episodes without links are dropped. Headings
// without a number are kept in page order with the "?" ordinal.
func ExtractEpisodes(doc *goquery.Document) (string, []models.EpisodeEntry, error) {
	title := pageTitle(doc)

	headings := doc.Find(downloadSectionSelector + " h5")
	if headings.Length() == 0 {
		return title, nil, extractErr(StageEpisodes, ReasonNoEpisodeHeadings)
	}

	var entries []models.EpisodeEntry
	headings.Each(func(_ int, h *goquery.Selection) {
		number := episodeNumberRe.FindString(textOf(h))
		if number == "" {
			number = UnknownEpisode
		}

		var links []models.ProviderLink
		downloadsBlock(h).Find("a").Each(func(_ int, a *goquery.Selection) {
			href := attrOf(a, "href")
			if label, ok := classify.Episodes.Classify(textOf(a), href); ok {
				links = append(links, models.NewProviderLink(string(label), href, ""))
			}
		})

		if len(links) > 0 {
			entries = append(entries, models.EpisodeEntry{Number: number, Links: links})
		}
	})

	if len(entries) == 0 {
		return title, nil, noLinks(StageEpisodes)
	}

	util.Debug("episodes extracted", "title", title, "headings", headings.Length(), "entries", len(entries))
	return title, entries, nil
}
