package handlers

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
)

const (
	origin      = "https://site.example"
	episodesURL = "https://links.example/episodes720"
	mirrorURL   = "https://links.example/m720"
	hubURL      = "https://hubcloud.one/drive/e1"
	hop2URL     = "https://gamerxyt.example/hubcloud.php?id=e1"
)

var sitePages = map[string]string{
	origin + "/": `<html><body>
		<article><img src="/p/1.jpg"><h2><a href="/example-show-season-1/">Example Show Season 1</a></h2></article>
		<article><img src="/p/2.jpg"><h2><a href="/some-movie-2024/">Some Movie (2024)</a></h2></article>
	</body></html>`,
	origin + "/empty/": `<html><body><p>Nothing matched your search.</p></body></html>`,
	origin + "/example-show-season-1/": `<html><body><h1>Example Show Season 1</h1>
		<div class="download-links-div">
			<h4>Example Show Season 1 720p [300MB/E]</h4>
			<div class="downloads-btns-div">
				<a class="btn" href="` + episodesURL + `">Episode Links</a>
			</div>
		</div></body></html>`,
	episodesURL: `<html><body><h1>Example Show S01 720p</h1>
		<div class="download-links-div">
			<h5>Episode 1</h5>
			<div class="downloads-btns-div"><a href="` + hubURL + `">HubCloud</a></div>
			<h5>Episode 2</h5>
			<div class="downloads-btns-div"><a href="https://hubcloud.one/drive/e2">HubCloud</a></div>
		</div></body></html>`,
	hubURL: `<html><body>
		<a class="btn btn-primary" href="` + hop2URL + `">Generate Direct Download Link</a>
	</body></html>`,
	hop2URL: `<html><body>
		<a href="https://cdn1.example/f1">Download [FSL Server]</a>
		<a href="https://pixeldrain.dev/u/x">Download [PixelServer : 2]</a>
	</body></html>`,
	origin + "/some-movie-2024/": `<html><body><h1>Some Movie (2024)</h1>
		<div class="download-links-div">
			<h4>720p HEVC [900MB]</h4>
			<div class="downloads-btns-div"><a class="btn" href="` + mirrorURL + `">Download Links</a></div>
		</div></body></html>`,
	mirrorURL: `<html><body><div class="download-links-div">
		<h4>Some Movie 720p HEVC [900MB]</h4>
		<div class="downloads-btns-div">
			<a href="` + hubURL + `">HubCloud</a>
			<a href="https://drive.google.com/file/m1">GDrive</a>
		</div>
	</div></body></html>`,
}

func newTestResolver() *resolver.Resolver {
	f := scraper.FetcherFunc(func(_ context.Context, u string) (string, error) {
		if html, ok := sitePages[u]; ok {
			return html, nil
		}
		return "", &scraper.FetchError{URL: u, Status: http.StatusNotFound, Err: errors.New("not found")}
	})
	return resolver.New(f, resolver.WithOrigins(origin))
}

// scripted answers every prompt with a fixed choice
type scripted struct {
	item, quality, episode, server int
	mode                           models.DownloadMode
	pickErr                        error
	actions                        []Action
	asked                          []string
}

func (p *scripted) PickItem([]models.CatalogEntry) (int, error) {
	p.asked = append(p.asked, "item")
	return p.item, p.pickErr
}

func (p *scripted) PickMode() (models.DownloadMode, error) {
	p.asked = append(p.asked, "mode")
	return p.mode, nil
}

func (p *scripted) PickQuality([]models.QualityGroup) (int, error) {
	p.asked = append(p.asked, "quality")
	return p.quality, nil
}

func (p *scripted) PickEpisode([]models.EpisodeEntry) (int, error) {
	p.asked = append(p.asked, "episode")
	return p.episode, nil
}

func (p *scripted) PickServer([]models.ProviderLink) (int, error) {
	p.asked = append(p.asked, "server")
	return p.server, nil
}

func (p *scripted) Next() (Action, error) {
	if len(p.actions) == 0 {
		return ActionQuit, nil
	}
	a := p.actions[0]
	p.actions = p.actions[1:]
	return a, nil
}

func noSpin(_ string, action func()) { action() }

func newTestFlow(p Prompter, out *bytes.Buffer) *Flow {
	return NewFlow(newTestResolver(), WithPrompter(p), WithOutput(out), WithSpinner(noSpin))
}

func TestResolveSeriesEpisode(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := &scripted{item: 0, mode: models.ModeEpisode}
	links, err := newTestFlow(p, &out).Resolve(context.Background(), origin+"/")
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, string(classify.FSL), links[0].Provider)
	assert.Equal(t, []string{"item", "mode", "quality", "episode", "server"}, p.asked)
	assert.Contains(t, out.String(), "Episode 1")
	assert.Contains(t, out.String(), "https://cdn1.example/f1")
}

func TestResolveMovieThroughMirrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		server int
		want   []string
	}{
		{"hub cloud is unlocked", 0, []string{"https://cdn1.example/f1", "https://pixeldrain.dev/u/x"}},
		{"other mirrors are final", 1, []string{"https://drive.google.com/file/m1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			p := &scripted{item: 1, server: tt.server}
			links, err := newTestFlow(p, &out).Resolve(context.Background(), origin+"/")
			require.NoError(t, err)

			var got []string
			for _, l := range links {
				got = append(got, l.URL)
			}
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, p.asked, "mode")
			assert.Contains(t, out.String(), "Some Movie")
		})
	}
}

func TestResolveReportsCancelAndEmptyCatalog(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := newTestFlow(&scripted{pickErr: ErrCancelled}, &out).Resolve(context.Background(), origin+"/")
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = newTestFlow(&scripted{}, &out).Resolve(context.Background(), origin+"/empty/")
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = newTestFlow(&scripted{}, &out).Resolve(context.Background(), origin+"/missing/")
	var fetchErr *scraper.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, scraper.StageCatalog, resolver.StageOf(err))
	assert.Empty(t, out.String())
}

func TestRunLoopsUntilQuit(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := &scripted{item: 1, server: 1, actions: []Action{ActionAnother, ActionSearch}}
	action, err := newTestFlow(p, &out).Run(context.Background(), origin+"/")
	require.NoError(t, err)
	assert.Equal(t, ActionSearch, action)

	var items int
	for _, q := range p.asked {
		if q == "item" {
			items++
		}
	}
	assert.Equal(t, 2, items)
}
