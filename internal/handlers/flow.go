// Package handlers drives a resolution from the terminal, asking the user
// for every choice the session waits on.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/util"
)

// ErrNoResults is returned when a catalog page lists nothing
var ErrNoResults = errors.New("no titles found")

// Flow is the interactive terminal resolution
type Flow struct {
	resolver *resolver.Resolver
	prompter Prompter
	out      io.Writer
	spin     func(title string, action func())
}

// FlowOption configures a Flow
type FlowOption func(*Flow)

// WithPrompter replaces the terminal prompts
func WithPrompter(p Prompter) FlowOption {
	return func(f *Flow) { f.prompter = p }
}

// WithOutput sets where links are printed
func WithOutput(w io.Writer) FlowOption {
	return func(f *Flow) { f.out = w }
}

// WithSpinner sets how blocking fetches are displayed
func WithSpinner(spin func(title string, action func())) FlowOption {
	return func(f *Flow) { f.spin = spin }
}

// NewFlow creates a terminal flow around r
func NewFlow(r *resolver.Resolver, opts ...FlowOption) *Flow {
	f := &Flow{resolver: r, prompter: TerminalPrompter{}, out: os.Stdout, spin: Spin}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run resolves titles from the catalog page until the user quits or asks
// for a new search, which is reported as ActionSearch.
func (f *Flow) Run(ctx context.Context, pageURL string) (Action, error) {
	for {
		if _, err := f.Resolve(ctx, pageURL); err != nil {
			return ActionQuit, err
		}
		action, err := f.prompter.Next()
		if err != nil || action != ActionAnother {
			return action, err
		}
	}
}

// Resolve walks one title from the catalog page to its final links and
// prints them.
func (f *Flow) Resolve(ctx context.Context, pageURL string) ([]models.ProviderLink, error) {
	s := f.resolver.NewSession()

	var entries []models.CatalogEntry
	err := f.fetch("Searching...", func() (err error) {
		entries, err = s.Catalog(ctx, pageURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoResults
	}

	idx, err := f.prompter.PickItem(entries)
	if err != nil {
		return nil, err
	}
	return f.ResolveItem(ctx, s, entries[idx].ItemRef)
}

// ResolveItem continues a session from an item reference token
func (f *Flow) ResolveItem(ctx context.Context, s *resolver.Session, itemRef string) ([]models.ProviderLink, error) {
	var info models.DetailInfo
	err := f.fetch("Loading details...", func() (err error) {
		info, err = s.Detail(ctx, itemRef)
		return err
	})
	if err != nil {
		return nil, err
	}

	mode := models.ModeEpisode
	if info.IsSeries() {
		if mode, err = f.prompter.PickMode(); err != nil {
			return nil, err
		}
		if err := s.ChooseMode(mode); err != nil {
			return nil, err
		}
	}

	groups := info.GroupsFor(mode)
	if len(groups) == 0 {
		return nil, &scraper.NoLinksError{Stage: scraper.StageDetail, Reason: "no " + string(mode) + " downloads"}
	}
	gi, err := f.prompter.PickQuality(groups)
	if err != nil {
		return nil, err
	}
	target, err := s.ChooseQuality(groups[gi])
	if err != nil {
		return nil, err
	}

	var links []models.ProviderLink
	switch target.Stage {
	case scraper.StageEpisodes:
		links, err = f.viaEpisodes(ctx, s, target)
	default:
		links, err = f.viaServers(ctx, s, target)
	}
	if err != nil {
		return nil, err
	}

	snap := s.Snapshot()
	title := snap.Title
	if snap.Episode != "" {
		title = fmt.Sprintf("%s · Episode %s", title, snap.Episode)
	}
	fmt.Fprint(f.out, RenderLinks(title, links))
	fmt.Fprintln(f.out, util.Success(fmt.Sprintf("%d link(s) resolved", len(links))))
	return links, nil
}

func (f *Flow) viaEpisodes(ctx context.Context, s *resolver.Session, target resolver.Target) ([]models.ProviderLink, error) {
	var entries []models.EpisodeEntry
	err := f.fetch("Loading episodes...", func() (err error) {
		entries, err = s.Episodes(ctx, target.Key, target.Quality)
		return err
	})
	if err != nil {
		return nil, err
	}

	ei, err := f.prompter.PickEpisode(entries)
	if err != nil {
		return nil, err
	}
	entry := entries[ei]
	li, err := f.prompter.PickServer(entry.Links)
	if err != nil {
		return nil, err
	}
	next, err := s.ChooseEpisode(entry, li)
	if err != nil {
		return nil, err
	}
	return f.unlock(ctx, s, next)
}

func (f *Flow) viaServers(ctx context.Context, s *resolver.Session, target resolver.Target) ([]models.ProviderLink, error) {
	var mirrors []models.ProviderLink
	err := f.fetch("Loading servers...", func() (err error) {
		mirrors, err = s.Servers(ctx, target.Key, target.Quality)
		return err
	})
	if err != nil {
		return nil, err
	}

	mi, err := f.prompter.PickServer(mirrors)
	if err != nil {
		return nil, err
	}
	next, done, err := s.ChooseServer(mirrors[mi])
	if err != nil {
		return nil, err
	}
	if done {
		return s.Snapshot().Links, nil
	}
	return f.unlock(ctx, s, next)
}

func (f *Flow) unlock(ctx context.Context, s *resolver.Session, target resolver.Target) ([]models.ProviderLink, error) {
	var links []models.ProviderLink
	err := f.fetch("Unlocking download links...", func() (err error) {
		links, err = s.Unlock(ctx, target.Key)
		return err
	})
	return links, err
}

func (f *Flow) fetch(title string, action func() error) error {
	var err error
	f.spin(title, func() { err = action() })
	if err != nil {
		util.Debug("step failed", "step", title, "error", err)
	}
	return err
}
