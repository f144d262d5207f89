// Package vlyx provides a public API for resolving catalog titles down to
// their final download links. This package can be used as a library in
// other Go projects.
//
// Every call runs on its own session; the state of a resolution travels in
// the opaque keys of the returned targets.
package vlyx

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/pkg/vlyx/types"
)

// Options configures a Client. Only BaseURL is needed to search.
type Options struct {
	// BaseURL is the catalog site root
	BaseURL string
	// Origins are extra site origins item links may point at
	Origins []string
	// Mode is "two-hop" (default) or "direct"
	Mode string
	// APIBase and APIKey configure the resolve API used in direct mode
	APIBase string
	APIKey  string

	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration
}

// Client is the main client for resolving titles
type Client struct {
	baseURL  string
	resolver *resolver.Resolver
}

// NewClient creates a client from opts
func NewClient(opts Options) (*Client, error) {
	mode, err := resolver.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	if mode == resolver.ModeDirect && opts.APIBase == "" {
		return nil, errors.New("direct mode needs an api base")
	}

	fetcher := scraper.NewHTTPFetcher(scraper.FetcherOptions{
		Client:    opts.HTTPClient,
		UserAgent: opts.UserAgent,
		Timeout:   opts.Timeout,
	})
	resolverOpts := []resolver.Option{resolver.WithMode(mode), resolver.WithOrigins(opts.Origins...)}
	if opts.BaseURL != "" {
		resolverOpts = append(resolverOpts, resolver.WithOrigins(opts.BaseURL))
	}
	if opts.APIBase != "" {
		resolverOpts = append(resolverOpts, resolver.WithDirectResolver(scraper.NewDirectResolver(fetcher, opts.APIBase, opts.APIKey)))
	}

	return &Client{baseURL: opts.BaseURL, resolver: resolver.New(fetcher, resolverOpts...)}, nil
}

// Search lists a catalog page. An empty query lists the latest titles.
func (c *Client) Search(ctx context.Context, query string, page int) ([]*types.Title, error) {
	if c.baseURL == "" {
		return nil, errors.New("search needs a base url")
	}
	return c.Catalog(ctx, scraper.CatalogURL(c.baseURL, query, page))
}

// Catalog lists an arbitrary catalog page
func (c *Client) Catalog(ctx context.Context, pageURL string) ([]*types.Title, error) {
	entries, err := c.resolver.NewSession().Catalog(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return types.FromCatalog(entries), nil
}

// Details fetches the page of a catalog result
func (c *Client) Details(ctx context.Context, itemRef string) (*types.Details, error) {
	info, err := c.resolver.NewSession().Detail(ctx, itemRef)
	if err != nil {
		return nil, err
	}
	return types.FromDetail(info), nil
}

// Episodes lists the episodes behind an episode target
func (c *Client) Episodes(ctx context.Context, target *types.Target) ([]*types.Episode, error) {
	if err := expect(target, scraper.StageEpisodes); err != nil {
		return nil, err
	}
	s := c.resolver.NewSession()
	entries, err := s.Episodes(ctx, target.Key, target.Quality)
	if err != nil {
		return nil, err
	}
	return types.FromEpisodes(entries, s.Snapshot().Quality)
}

// Servers lists the mirrors behind a servers target
func (c *Client) Servers(ctx context.Context, target *types.Target) ([]*types.Link, error) {
	if err := expect(target, scraper.StageServers); err != nil {
		return nil, err
	}
	s := c.resolver.NewSession()
	links, err := s.Servers(ctx, target.Key, target.Quality)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	return types.FromLinks(links, snap.Title, snap.Quality)
}

// Unlock resolves a link target into its final servers
func (c *Client) Unlock(ctx context.Context, target *types.Target) ([]*types.Link, error) {
	if err := expect(target, resolver.StageUnlock); err != nil {
		return nil, err
	}
	links, err := c.resolver.NewSession().Unlock(ctx, target.Key)
	if err != nil {
		return nil, err
	}
	return types.FromLinks(links, "", target.Quality)
}

func expect(target *types.Target, stage scraper.Stage) error {
	if target == nil {
		return errors.Errorf("no %s target", stage)
	}
	if target.Stage != string(stage) {
		return errors.Errorf("target leads to %s, not %s", target.Stage, stage)
	}
	return nil
}
