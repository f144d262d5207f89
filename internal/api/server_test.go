package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/token"
	"github.com/netvlyx/vlyx/internal/version"
)

const (
	origin      = "https://site.example"
	episodesURL = "https://links.example/episodes720"
	mirrorURL   = "https://links.example/m720"
	hubURL      = "https://hubcloud.one/drive/e1"
	hop2URL     = "https://gamerxyt.example/hubcloud.php?id=e1"
	emptyHubURL = "https://hubcloud.one/drive/empty"
	emptyHop2   = "https://gamerxyt.example/hubcloud.php?id=empty"
	brokenEpURL = "https://links.example/broken"
	resolveAPI  = "https://resolve.example/api"
)

var sitePages = map[string]string{
	origin + "/": `<html><body>
		<article><img src="/p/1.jpg"><h2><a href="/example-show-season-1/">Example Show Season 1</a></h2></article>
		<article><img src="/p/2.jpg"><h2><a href="/some-movie-2024/">Some Movie (2024)</a></h2></article>
	</body></html>`,
	origin + "/example-show-season-1/": `<html><body><h1>Example Show Season 1</h1>
		<div class="download-links-div">
			<h4>Example Show Season 1 720p [300MB/E]</h4>
			<div class="downloads-btns-div">
				<a class="btn" href="` + episodesURL + `">Episode Links</a>
				<a class="btn btn-zip" href="https://links.example/zip720">Zip [4GB]</a>
			</div>
		</div></body></html>`,
	episodesURL: `<html><body><h1>Example Show S01 720p</h1>
		<div class="download-links-div">
			<h5>Episode 1</h5>
			<div class="downloads-btns-div"><a href="` + hubURL + `">HubCloud</a></div>
		</div></body></html>`,
	hubURL: `<html><body>
		<a class="btn btn-primary" href="` + hop2URL + `">Generate Direct Download Link</a>
	</body></html>`,
	hop2URL: `<html><body>
		<a href="https://cdn1.example/f1">Download [FSL Server]</a>
		<a href="https://pixeldrain.dev/u/x">Download [PixelServer : 2]</a>
	</body></html>`,
	emptyHubURL: `<html><body><a id="download" href="` + emptyHop2 + `">Download</a></body></html>`,
	emptyHop2:   `<html><body><a href="https://site.example/faq">FAQ</a></body></html>`,
	brokenEpURL: `<html><body><h1>Nothing here</h1><p>No episodes.</p></body></html>`,
	origin + "/some-movie-2024/": `<html><body><h1>Some Movie (2024)</h1>
		<div class="download-links-div">
			<h4>720p HEVC [900MB]</h4>
			<div class="downloads-btns-div"><a class="btn" href="` + mirrorURL + `">Download Links</a></div>
		</div></body></html>`,
	mirrorURL: `<html><body><div class="download-links-div">
		<h4>Some Movie 720p HEVC [900MB]</h4>
		<div class="downloads-btns-div">
			<a href="https://hubcloud.one/drive/m1">HubCloud</a>
			<a href="https://drive.google.com/file/m1">GDrive</a>
		</div>
	</div></body></html>`,
}

func fakeFetcher() scraper.Fetcher {
	return scraper.FetcherFunc(func(_ context.Context, u string) (string, error) {
		if strings.HasPrefix(u, resolveAPI) {
			return `{"title":"Example.Show.S01E01","streams":[{"server":"FSL Server","link":"https://cdn1.example/d1","type":"mkv"}]}`, nil
		}
		if html, ok := sitePages[u]; ok {
			return html, nil
		}
		return "", &scraper.FetchError{URL: u, Status: http.StatusNotFound, Err: errors.New("not found")}
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	f := fakeFetcher()
	twoHop := resolver.New(f, resolver.WithOrigins(origin))
	direct := resolver.New(f,
		resolver.WithMode(resolver.ModeDirect),
		resolver.WithDirectResolver(scraper.NewDirectResolver(f, resolveAPI, "secret")),
	)
	srv := httptest.NewServer(NewServer(origin, twoHop, direct))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, params url.Values, out any) int {
	t.Helper()
	u := srv.URL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func keyFor(t *testing.T, link, context string) string {
	t.Helper()
	k, err := token.EncodeKey(token.Key{URL: link, Context: context})
	require.NoError(t, err)
	return k
}

func TestSeriesFlowOverHTTP(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	var catalog catalogResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/catalog", nil, &catalog))
	assert.Equal(t, origin+"/", catalog.Page)
	require.Len(t, catalog.Entries, 2)
	assert.Equal(t, "Example Show Season 1", catalog.Entries[0].Title)

	var detail struct {
		Detail struct {
			Title    string `json:"title"`
			IsSeries bool   `json:"isSeries"`
		} `json:"detail"`
		Targets []GroupTargets `json:"targets"`
	}
	code := getJSON(t, srv, "/api/detail", url.Values{"key": {catalog.Entries[0].ItemRef}}, &detail)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, detail.Detail.IsSeries)
	require.Len(t, detail.Targets, 1)
	require.NotNil(t, detail.Targets[0].Episode)
	require.NotNil(t, detail.Targets[0].Batch)
	assert.Equal(t, scraper.StageEpisodes, detail.Targets[0].Episode.Stage)
	assert.Equal(t, scraper.StageServers, detail.Targets[0].Batch.Stage)

	ep := detail.Targets[0].Episode
	var episodes episodesResponse
	code = getJSON(t, srv, "/api/episodes", url.Values{"key": {ep.Key}, "quality": {ep.Quality}}, &episodes)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, ep.Quality, episodes.Quality)
	require.Len(t, episodes.Episodes, 1)
	assert.Equal(t, "1", episodes.Episodes[0].Number)
	require.Len(t, episodes.Episodes[0].Links, 1)
	unlock := episodes.Episodes[0].Links[0].Target
	require.NotNil(t, unlock)
	assert.Equal(t, resolver.StageUnlock, unlock.Stage)

	var final unlockResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/unlock", url.Values{"key": {unlock.Key}}, &final))
	require.Len(t, final.Links, 2)
	assert.Equal(t, string(classify.FSL), final.Links[0].Provider)
	assert.Equal(t, string(classify.PixelServer), final.Links[1].Provider)
	assert.Equal(t, []string{hop2URL}, final.Hops)
}

func TestServersMarkLinksThatNeedUnlocking(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	var servers serversResponse
	params := url.Values{"key": {keyFor(t, mirrorURL, "720p HEVC [900MB]")}}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/servers", params, &servers))
	assert.Equal(t, "720p HEVC [900MB]", servers.Quality)
	require.Len(t, servers.Links, 2)

	assert.Equal(t, string(classify.HubCloud), servers.Links[0].Provider)
	require.NotNil(t, servers.Links[0].Target)
	assert.Equal(t, resolver.StageUnlock, servers.Links[0].Target.Stage)

	assert.Equal(t, string(classify.GDrive), servers.Links[1].Provider)
	assert.Nil(t, servers.Links[1].Target)
}

func TestUnlockDirectMode(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	var final unlockResponse
	params := url.Values{"key": {keyFor(t, hubURL, "")}, "mode": {"direct"}}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/unlock", params, &final))
	assert.Equal(t, "Example Show S01E01", final.Title)
	require.Len(t, final.Links, 1)
	assert.Equal(t, "https://cdn1.example/d1", final.Links[0].URL)
	assert.Empty(t, final.Hops)
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		params url.Values
		status int
		stage  string
	}{
		{"missing key", "/api/detail", nil, http.StatusBadRequest, ""},
		{"bad key", "/api/detail", url.Values{"key": {"!!!"}}, http.StatusBadRequest, "detail"},
		{"fetch failure", "/api/episodes", url.Values{"key": {keyFor(t, "https://links.example/gone", "")}}, http.StatusBadGateway, "episodes"},
		{"extraction failure", "/api/episodes", url.Values{"key": {keyFor(t, brokenEpURL, "")}}, http.StatusUnprocessableEntity, "episodes"},
		{"no final links", "/api/unlock", url.Values{"key": {keyFor(t, emptyHubURL, "")}}, http.StatusNotFound, "hop2"},
		{"unknown mode", "/api/unlock", url.Values{"key": {keyFor(t, hubURL, "")}, "mode": {"teleport"}}, http.StatusBadRequest, ""},
		{"bad page number", "/api/catalog", url.Values{"p": {"zero"}}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			assert.Equal(t, tt.status, getJSON(t, srv, tt.path, tt.params, &body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.stage, body.Stage)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	var info version.Info
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/version", nil, &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"decode", &token.DecodeError{Err: errors.New("bad")}, http.StatusBadRequest},
		{"no links", &scraper.NoLinksError{Stage: scraper.StageHop2, Reason: "none"}, http.StatusNotFound},
		{"extract", &scraper.ExtractError{Stage: scraper.StageDetail, Reason: "x"}, http.StatusUnprocessableEntity},
		{"fetch", &resolver.StageError{Stage: scraper.StageHop1, Err: &scraper.FetchError{URL: "u", Status: 503}}, http.StatusBadGateway},
		{"failed session", resolver.ErrSessionFailed, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
