package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

// TitleBoilerplate is appended to page headings by the source site
const TitleBoilerplate = "Always Use Official Website"

var (
	resolutionRe = regexp.MustCompile(`(\d{3,4}p)`)
	sizeRe       = regexp.MustCompile(`\[(\d+(?:\.\d+)?[GM]B)(?:/E)?\]`)
)

const (
	sizeUnknown  = "N/A"
	zipSizeLabel = "Zip"
)

// ExtractDetail parses a movie or series page into its title block and
// quality groups. Groups without any link are dropped.
func ExtractDetail(doc *goquery.Document) (models.DetailInfo, error) {
	info := models.DetailInfo{
		Title:       pageTitle(doc),
		PosterURL:   attrOf(doc.Find(".post-thumbnail img").First(), "data-src", "src"),
		Description: textOf(doc.Find("h3 + p").First()),
	}
	if info.Description == "" {
		info.Description = models.NoDescription
	}

	section := doc.Find(downloadSectionSelector)
	if section.Length() == 0 {
		return info, extractErr(StageDetail, ReasonNoDownloadSection)
	}

	dropped := 0
	section.Find("h4").Each(func(_ int, h *goquery.Selection) {
		block := downloadsBlock(h)
		if block.Length() == 0 {
			return
		}
		if g, ok := parseQualityGroup(textOf(h), block); ok {
			info.QualityGroups = append(info.QualityGroups, g)
		} else {
			dropped++
		}
	})

	util.Debug("detail extracted", "title", info.Title, "groups", len(info.QualityGroups), "dropped", dropped, "series", info.IsSeries())
	return info, nil
}

// pageTitle returns the first h1 without the site's boilerplate
func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(strings.ReplaceAll(textOf(doc.Find("h1").First()), TitleBoilerplate, ""))
	if title == "" {
		return models.UnknownTitle
	}
	return title
}

func parseQualityGroup(label string, block *goquery.Selection) (models.QualityGroup, bool) {
	g := models.QualityGroup{
		RawLabel:      label,
		Resolution:    models.ResolutionHD,
		IsHEVC:        strings.Contains(strings.ToLower(label), "hevc"),
		SizeText:      sizeUnknown,
		BatchSizeText: zipSizeLabel,
	}
	if m := resolutionRe.FindString(label); m != "" {
		g.Resolution = models.ParseResolution(m)
	}
	if m := sizeRe.FindStringSubmatch(label); m != nil {
		g.SizeText = m[1]
	}

	if plain := block.Find("a.btn:not(.btn-zip)").First(); plain.Length() > 0 {
		g.EpisodeLink = attrOf(plain, "href")
	}
	if zip := block.Find("a.btn-zip").First(); zip.Length() > 0 {
		g.BatchLink = attrOf(zip, "href")
		if m := sizeRe.FindStringSubmatch(textOf(zip)); m != nil {
			g.BatchSizeText = m[1]
		}
	}

	return g, g.HasEpisode() || g.HasBatch()
}
