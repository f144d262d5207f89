package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSeriesDerivation(t *testing.T) {
	t.Parallel()

	d := DetailInfo{
		Title: "Some Movie (2024)",
		QualityGroups: []QualityGroup{
			{RawLabel: "720p", Resolution: Resolution720p, EpisodeLink: "https://a/1"},
		},
	}
	assert.False(t, d.IsSeries())

	d.QualityGroups = append(d.QualityGroups, QualityGroup{RawLabel: "1080p", BatchLink: "https://a/zip"})
	assert.True(t, d.IsSeries(), "one batch link flips the flag")

	d = DetailInfo{Title: "Show Season 2"}
	assert.True(t, d.IsSeries(), "series marker in the title")
}

func TestParseResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Resolution
	}{
		{"480p", Resolution480p},
		{"720P", Resolution720p},
		{"1080p", Resolution1080p},
		{"2160p", Resolution2160p},
		{"1440p", ResolutionHD},
		{"", ResolutionHD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseResolution(tt.in), tt.in)
	}
}

func TestQualityGroupJSONKeepsAbsentLinks(t *testing.T) {
	t.Parallel()

	g := QualityGroup{RawLabel: "720p", Resolution: Resolution720p, SizeText: "N/A", EpisodeLink: "https://x/ep"}
	b, err := json.Marshal(g)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "https://x/ep", m["episodeLink"])
	v, ok := m["batchLink"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestDetailJSONCarriesIsSeries(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(DetailInfo{Title: "Show Season 1"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"isSeries":true`)
}

func TestGroupsForAndBatchLabel(t *testing.T) {
	t.Parallel()

	d := DetailInfo{QualityGroups: []QualityGroup{
		{RawLabel: "480p Episode [200MB/E]", EpisodeLink: "e1"},
		{RawLabel: "720p Episode [400MB/E]", EpisodeLink: "e2", BatchLink: "b2"},
	}}
	assert.Len(t, d.GroupsFor(ModeEpisode), 2)
	batch := d.GroupsFor(ModeBatch)
	require.Len(t, batch, 1)
	assert.Equal(t, "720p Complete Season [400MB/E]", batch[0].BatchLabel())
	assert.Equal(t, "b2", batch[0].LinkFor(ModeBatch))
}

func TestItemRefURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://site.example/my-movie-2024/", ItemRef{Slug: "/my-movie-2024/", Origin: "https://site.example/"}.URL())
}
