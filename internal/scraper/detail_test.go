package scraper

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvlyx/vlyx/internal/models"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := Parse(html)
	require.NoError(t, err)
	return doc
}

const seriesDetailHTML = `
<html><body>
<h1>Example Show Season 1 Always Use Official Website</h1>
<div class="post-thumbnail"><img src="https://img.example/p.jpg"></div>
<h3>Storyline</h3>
<p>Two friends chase a rumor.</p>
<div class="download-links-div">
  <h4>Example Show Season 1 720p HEVC [900MB/E]</h4>
  <div class="downloads-btns-div">
    <a class="btn btn-zip" href="https://links.example/zip720">Download [4.2GB]</a>
    <a class="btn" href="https://links.example/ep720">Episode Links</a>
  </div>
  <h4>Example Show Season 1 1080p x264 [1.4GB/E]</h4>
  <div class="downloads-btns-div"></div>
  <h4>Example Show Season 1 480p</h4>
  <div class="downloads-btns-div">
    <a class="btn" href="https://links.example/ep480">Episode Links</a>
  </div>
  <h4>Orphan 2160p</h4>
  <p>not a downloads block</p>
</div>
</body></html>`

func TestExtractDetailSeries(t *testing.T) {
	t.Parallel()

	info, err := ExtractDetail(mustParse(t, seriesDetailHTML))
	require.NoError(t, err)

	assert.Equal(t, "Example Show Season 1", info.Title)
	assert.Equal(t, "https://img.example/p.jpg", info.PosterURL)
	assert.Equal(t, "Two friends chase a rumor.", info.Description)
	assert.True(t, info.IsSeries())

	require.Len(t, info.QualityGroups, 2, "empty and orphan headings are dropped")

	hd := info.QualityGroups[0]
	assert.Equal(t, models.Resolution720p, hd.Resolution)
	assert.True(t, hd.IsHEVC)
	assert.Equal(t, "900MB", hd.SizeText)
	assert.Equal(t, "https://links.example/ep720", hd.EpisodeLink, "plain link is found by class, not position")
	assert.Equal(t, "https://links.example/zip720", hd.BatchLink)
	assert.Equal(t, "4.2GB", hd.BatchSizeText)

	sd := info.QualityGroups[1]
	assert.Equal(t, models.Resolution480p, sd.Resolution)
	assert.False(t, sd.IsHEVC)
	assert.Equal(t, "N/A", sd.SizeText)
	assert.False(t, sd.HasBatch())
	assert.Equal(t, "Zip", sd.BatchSizeText)
}

func TestExtractDetailSingleHEVCGroup(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Some Movie (2024)</h1>
	<div class="download-links-div">
		<h4>720p HEVC [900MB]</h4>
		<div class="downloads-btns-div"><a class="btn" href="https://links.example/m720">Download Links</a></div>
	</div></body></html>`

	info, err := ExtractDetail(mustParse(t, html))
	require.NoError(t, err)
	require.Len(t, info.QualityGroups, 1)

	g := info.QualityGroups[0]
	assert.Equal(t, "720p HEVC [900MB]", g.RawLabel)
	assert.Equal(t, models.Resolution720p, g.Resolution)
	assert.True(t, g.IsHEVC)
	assert.Equal(t, "900MB", g.SizeText)
	assert.Equal(t, "https://links.example/m720", g.EpisodeLink)
	assert.False(t, g.HasBatch())
	assert.False(t, info.IsSeries())
}

func TestExtractDetailIsSeriesFlipsWithBatchLink(t *testing.T) {
	t.Parallel()

	movie := `<html><body><h1>Plain Title</h1><div class="download-links-div">
		<h4>1080p [2GB]</h4>
		<div class="downloads-btns-div"><a class="btn" href="https://links.example/a">Go</a></div>
	</div></body></html>`
	withBatch := `<html><body><h1>Plain Title</h1><div class="download-links-div">
		<h4>1080p [2GB]</h4>
		<div class="downloads-btns-div">
			<a class="btn" href="https://links.example/a">Go</a>
			<a class="btn btn-zip" href="https://links.example/z">Zip</a>
		</div>
	</div></body></html>`

	info, err := ExtractDetail(mustParse(t, movie))
	require.NoError(t, err)
	assert.False(t, info.IsSeries())

	info, err = ExtractDetail(mustParse(t, withBatch))
	require.NoError(t, err)
	assert.True(t, info.IsSeries())
}

func TestExtractDetailDefaults(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Always Use Official Website</h1><div class="download-links-div">
		<h4>Special Edition</h4>
		<div class="downloads-btns-div"><a class="btn" href="https://links.example/x">Go</a></div>
	</div></body></html>`

	info, err := ExtractDetail(mustParse(t, html))
	require.NoError(t, err)
	assert.Equal(t, models.UnknownTitle, info.Title)
	assert.Equal(t, models.NoDescription, info.Description)
	require.Len(t, info.QualityGroups, 1)
	assert.Equal(t, models.ResolutionHD, info.QualityGroups[0].Resolution)
}

func TestExtractDetailMissingSection(t *testing.T) {
	t.Parallel()

	info, err := ExtractDetail(mustParse(t, `<html><body><h1>Lonely Page</h1></body></html>`))
	require.Error(t, err)

	var extractErr *ExtractError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, StageDetail, extractErr.Stage)
	assert.Equal(t, ReasonNoDownloadSection, extractErr.Reason)
	assert.Equal(t, "Lonely Page", info.Title)
}
