package scraper

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/util"
)

// DirectResolver turns a provider link into its final server list with a
// single call to a resolve API, replacing both unlock hops.
type DirectResolver struct {
	fetcher Fetcher
	apiBase string
	apiKey  string
}

// NewDirectResolver creates a resolver for the API at apiBase
func NewDirectResolver(fetcher Fetcher, apiBase, apiKey string) *DirectResolver {
	return &DirectResolver{fetcher: fetcher, apiBase: strings.TrimSpace(apiBase), apiKey: apiKey}
}

type directResponse struct {
	Title   string `json:"title"`
	Streams []struct {
		Server string `json:"server"`
		Link   string `json:"link"`
		Type   string `json:"type"`
	} `json:"streams"`
}

// RequestURL builds the API request for link
func (r *DirectResolver) RequestURL(link string) (string, error) {
	if r.apiBase == "" {
		return "", errors.New("direct resolve api base is not configured")
	}
	u, err := url.Parse(r.apiBase)
	if err != nil {
		return "", errors.Wrap(err, "invalid direct resolve api base")
	}
	q := u.Query()
	q.Set("url", link)
	if r.apiKey != "" {
		q.Set("key", r.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Resolve calls the API and returns the reported title and streams
func (r *DirectResolver) Resolve(ctx context.Context, link string) (string, []models.ProviderLink, error) {
	reqURL, err := r.RequestURL(link)
	if err != nil {
		return "", nil, err
	}

	body, err := r.fetcher.FetchRawHTML(ctx, reqURL)
	if err != nil {
		return "", nil, err
	}
	return ParseDirectResponse(body)
}

// ParseDirectResponse maps the API's JSON body to provider links. Dots in
// the title are release-name separators and become spaces.
func ParseDirectResponse(body string) (string, []models.ProviderLink, error) {
	var resp directResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		util.Debug("direct resolve returned invalid JSON", "error", err)
		return "", nil, extractErr(StageDirect, ReasonMalformedResponse)
	}

	title := strings.TrimSpace(strings.ReplaceAll(resp.Title, ".", " "))

	var links []models.ProviderLink
	for _, s := range resp.Streams {
		if strings.TrimSpace(s.Link) == "" {
			continue
		}
		links = append(links, models.NewProviderLink(s.Server, s.Link, s.Type))
	}
	if len(links) == 0 {
		return title, nil, noLinks(StageDirect)
	}
	return title, links, nil
}
