// Package models contains data structures for catalog, detail and episode pages
package models

import (
	"encoding/json"
	"strings"
)

// SeriesMarker is the title token that marks a detail page as a series
const SeriesMarker = "Season"

// UnknownTitle is used when a detail page has no usable heading
const UnknownTitle = "Unknown Title"

// NoDescription is used when a detail page has no synopsis paragraph
const NoDescription = "No description available."

// Resolution is the video resolution advertised by a quality heading
type Resolution string

const (
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution2160p Resolution = "2160p"
	ResolutionHD    Resolution = "HD"
)

// ParseResolution maps a matched "NNNp" token to a Resolution, falling back to HD
func ParseResolution(token string) Resolution {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(token))); r {
	case Resolution480p, Resolution720p, Resolution1080p, Resolution2160p:
		return r
	default:
		return ResolutionHD
	}
}

// DownloadMode selects between per-episode links and a season archive
type DownloadMode string

const (
	ModeEpisode DownloadMode = "episode"
	ModeBatch   DownloadMode = "batch"
)

// ItemRef identifies a detail page independently of the origin that listed it
type ItemRef struct {
	Slug   string `json:"slug"`
	Origin string `json:"origin"`
}

// URL reconstructs the absolute detail page URL
func (r ItemRef) URL() string {
	return strings.TrimRight(r.Origin, "/") + "/" + strings.Trim(r.Slug, "/") + "/"
}

// CatalogEntry is one card of a listing page
type CatalogEntry struct {
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl"`
	ItemRef   string `json:"itemRef"` // opaque token for ItemRef
}

// DetailInfo is the parsed content of a movie or series page
type DetailInfo struct {
	Title         string         `json:"title"`
	PosterURL     string         `json:"posterUrl"`
	Description   string         `json:"description"`
	QualityGroups []QualityGroup `json:"qualityGroups"`
}

// IsSeries reports whether the page describes a series. It is recomputed on
// every call from the groups and the title.
func (d DetailInfo) IsSeries() bool {
	for _, g := range d.QualityGroups {
		if g.HasBatch() {
			return true
		}
	}
	return strings.Contains(d.Title, SeriesMarker)
}

// GroupsFor returns the groups that carry a link usable in the given mode
func (d DetailInfo) GroupsFor(mode DownloadMode) []QualityGroup {
	var out []QualityGroup
	for _, g := range d.QualityGroups {
		if g.LinkFor(mode) != "" {
			out = append(out, g)
		}
	}
	return out
}

// MarshalJSON adds the derived isSeries flag
func (d DetailInfo) MarshalJSON() ([]byte, error) {
	type alias DetailInfo
	return json.Marshal(struct {
		alias
		IsSeries bool `json:"isSeries"`
	}{alias(d), d.IsSeries()})
}

// QualityGroup is one resolution/size/codec variant with its links
type QualityGroup struct {
	RawLabel      string
	Resolution    Resolution
	IsHEVC        bool
	SizeText      string
	EpisodeLink   string // empty when absent
	BatchLink     string // empty when absent
	BatchSizeText string
}

// HasEpisode reports whether the group carries a per-episode (plain) link
func (g QualityGroup) HasEpisode() bool { return g.EpisodeLink != "" }

// HasBatch reports whether the group carries a season archive link
func (g QualityGroup) HasBatch() bool { return g.BatchLink != "" }

// LinkFor returns the link matching the download mode
func (g QualityGroup) LinkFor(mode DownloadMode) string {
	if mode == ModeBatch {
		return g.BatchLink
	}
	return g.EpisodeLink
}

// BatchLabel is the label shown for the archive variant of the group
func (g QualityGroup) BatchLabel() string {
	return strings.Replace(g.RawLabel, "Episode", "Complete Season", 1)
}

// MarshalJSON renders absent links as null rather than dropping the keys
func (g QualityGroup) MarshalJSON() ([]byte, error) {
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return json.Marshal(struct {
		RawLabel      string     `json:"rawLabel"`
		Resolution    Resolution `json:"resolution"`
		IsHEVC        bool       `json:"isHEVC"`
		SizeText      string     `json:"sizeText"`
		EpisodeLink   *string    `json:"episodeLink"`
		BatchLink     *string    `json:"batchLink"`
		BatchSizeText string     `json:"batchSizeText"`
	}{g.RawLabel, g.Resolution, g.IsHEVC, g.SizeText, optional(g.EpisodeLink), optional(g.BatchLink), g.BatchSizeText})
}

// EpisodeEntry is one episode heading of an episode listing page
type EpisodeEntry struct {
	Number string         `json:"episodeNumber"` // digits or "?"
	Links  []ProviderLink `json:"links"`
}

// Title renders the display title of the episode
func (e EpisodeEntry) Title() string {
	return "Episode " + e.Number
}
