// Package types provides public type definitions for the vlyx library
package types

import (
	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/resolver"
)

// Target is where a choice leads: the step to call next and its opaque key
type Target struct {
	// Stage names the next step ("episodes", "servers" or "unlock")
	Stage string
	// Key is an opaque, URL-safe token for that step
	Key string
	// Quality is the label threaded through to the mirror page
	Quality string
}

// Title is one catalog result
type Title struct {
	Name      string
	PosterURL string
	// ItemRef is passed to Client.Details
	ItemRef string
}

// Details describes a movie or series page
type Details struct {
	Title       string
	PosterURL   string
	Description string
	IsSeries    bool
	Qualities   []*Quality
}

// Quality is one downloadable variant of a title
type Quality struct {
	Label      string
	Resolution string
	HEVC       bool
	Size       string
	// Episode leads to per-episode links (series) or to the mirrors (movies)
	Episode *Target
	// Batch leads to the season archive mirrors; nil for movies
	Batch *Target
}

// Episode is one entry of an episode listing
type Episode struct {
	Number string
	Title  string
	Links  []*Link
}

// Link is a provider link. Target is set when the link must be unlocked
// before it yields downloadable servers.
type Link struct {
	Provider  string
	URL       string
	MediaType string
	Target    *Target
}

// FromTarget converts a resolver target
func FromTarget(t resolver.Target) *Target {
	return &Target{Stage: string(t.Stage), Key: t.Key, Quality: t.Quality}
}

// FromCatalog converts catalog entries
func FromCatalog(entries []models.CatalogEntry) []*Title {
	out := make([]*Title, 0, len(entries))
	for _, e := range entries {
		out = append(out, &Title{Name: e.Title, PosterURL: e.PosterURL, ItemRef: e.ItemRef})
	}
	return out
}

// FromDetail converts a detail page, computing the targets of each mode
func FromDetail(info models.DetailInfo) *Details {
	d := &Details{
		Title:       info.Title,
		PosterURL:   info.PosterURL,
		Description: info.Description,
		IsSeries:    info.IsSeries(),
	}
	for _, g := range info.QualityGroups {
		q := &Quality{
			Label:      g.RawLabel,
			Resolution: string(g.Resolution),
			HEVC:       g.IsHEVC,
			Size:       g.SizeText,
		}
		if t, err := resolver.TargetFor(info, g, models.ModeEpisode); err == nil {
			q.Episode = FromTarget(t)
		}
		if d.IsSeries {
			if t, err := resolver.TargetFor(info, g, models.ModeBatch); err == nil {
				q.Batch = FromTarget(t)
			}
		}
		d.Qualities = append(d.Qualities, q)
	}
	return d
}

// FromLinks converts provider links. Links that need unlocking get a target
// carrying context and quality.
func FromLinks(links []models.ProviderLink, context, quality string) ([]*Link, error) {
	out := make([]*Link, 0, len(links))
	for _, l := range links {
		link := &Link{Provider: l.Provider, URL: l.URL, MediaType: l.MediaType}
		if classify.NeedsUnlock(classify.Label(l.Provider)) {
			t, err := resolver.UnlockTarget(l, context, quality)
			if err != nil {
				return nil, err
			}
			link.Target = FromTarget(t)
		}
		out = append(out, link)
	}
	return out, nil
}

// FromEpisodes converts an episode listing
func FromEpisodes(entries []models.EpisodeEntry, quality string) ([]*Episode, error) {
	out := make([]*Episode, 0, len(entries))
	for _, e := range entries {
		links, err := FromLinks(e.Links, e.Title(), quality)
		if err != nil {
			return nil, err
		}
		out = append(out, &Episode{Number: e.Number, Title: e.Title(), Links: links})
	}
	return out, nil
}
