// Package resolver drives a resolution session from the catalog down to the
// final provider links, one hop at a time.
package resolver

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/token"
)

// Mode selects how provider links are unlocked
type Mode string

const (
	ModeTwoHop Mode = "two-hop"
	ModeDirect Mode = "direct"
)

// ParseMode parses a configured unlock mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTwoHop, "":
		return ModeTwoHop, nil
	case ModeDirect:
		return ModeDirect, nil
	default:
		return "", errors.Errorf("unknown resolver mode %q", s)
	}
}

// StageUnlock is the navigation target of a link that still has to go
// through hop1/hop2 or the direct resolver.
const StageUnlock scraper.Stage = "unlock"

// Target is a navigation target handed back to the caller: the stage to
// call next, its opaque key and the quality label to thread through.
type Target struct {
	Stage   scraper.Stage `json:"stage"`
	Key     string        `json:"key"`
	Quality string        `json:"quality"`
}

// Resolver holds the collaborators shared by all sessions. It keeps no
// per-session state and is safe for concurrent use.
type Resolver struct {
	fetcher  scraper.Fetcher
	mode     Mode
	direct   *scraper.DirectResolver
	origins  []string
	observer Observer
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMode sets the unlock mode
func WithMode(m Mode) Option {
	return func(r *Resolver) { r.mode = m }
}

// WithDirectResolver sets the API client used in direct mode
func WithDirectResolver(d *scraper.DirectResolver) Option {
	return func(r *Resolver) { r.direct = d }
}

// WithOrigins lists the site origins stripped from catalog links
func WithOrigins(origins ...string) Option {
	return func(r *Resolver) { r.origins = append(r.origins, origins...) }
}

// WithObserver registers a callback for every session state change
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// New creates a resolver around fetcher
func New(fetcher scraper.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{fetcher: fetcher, mode: ModeTwoHop}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the configured unlock mode
func (r *Resolver) Mode() Mode {
	return r.mode
}

// NewSession starts an idle session owned by the caller
func (r *Resolver) NewSession() *Session {
	return &Session{
		r:     r,
		id:    uuid.NewString(),
		state: StateIdle,
		mode:  models.ModeEpisode,
	}
}

// TargetFor computes where a quality choice leads. Series in episode mode go
// to the episode listing; batches and movies go to the mirror page.
func TargetFor(info models.DetailInfo, group models.QualityGroup, mode models.DownloadMode) (Target, error) {
	var t Target
	link := group.LinkFor(mode)
	switch {
	case !info.IsSeries():
		link = group.EpisodeLink
		t = Target{Stage: scraper.StageServers, Quality: group.RawLabel}
	case mode == models.ModeBatch:
		t = Target{Stage: scraper.StageServers, Quality: group.BatchLabel()}
	default:
		t = Target{Stage: scraper.StageEpisodes, Quality: group.RawLabel}
	}
	if link == "" {
		return Target{}, &scraper.NoLinksError{Stage: scraper.StageDetail, Reason: "no " + string(mode) + " link for " + group.RawLabel}
	}

	key, err := token.EncodeKey(token.Key{URL: link, Context: t.Quality})
	if err != nil {
		return Target{}, err
	}
	t.Key = key
	return t, nil
}

// UnlockTarget builds the target of a provider link that needs unlocking
func UnlockTarget(link models.ProviderLink, context, quality string) (Target, error) {
	key, err := token.EncodeKey(token.Key{URL: link.URL, Context: context})
	if err != nil {
		return Target{}, err
	}
	return Target{Stage: StageUnlock, Key: key, Quality: quality}, nil
}
