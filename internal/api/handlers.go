package api

import (
	"net/http"
	"strconv"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/version"
)

type catalogResponse struct {
	Page    string                `json:"page"`
	Entries []models.CatalogEntry `json:"entries"`
}

// GroupTargets lists where each download mode of a quality group leads
type GroupTargets struct {
	Label   string           `json:"label"`
	Episode *resolver.Target `json:"episode,omitempty"`
	Batch   *resolver.Target `json:"batch,omitempty"`
}

type detailResponse struct {
	Detail  models.DetailInfo `json:"detail"`
	Targets []GroupTargets    `json:"targets"`
}

// LinkTarget is a provider link plus the unlock target when it needs one
type LinkTarget struct {
	models.ProviderLink
	Target *resolver.Target `json:"target,omitempty"`
}

type episodeResponse struct {
	Number string       `json:"number"`
	Title  string       `json:"title"`
	Links  []LinkTarget `json:"links"`
}

type episodesResponse struct {
	Title    string            `json:"title"`
	Quality  string            `json:"quality"`
	Episodes []episodeResponse `json:"episodes"`
}

type serversResponse struct {
	Quality string       `json:"quality"`
	Links   []LinkTarget `json:"links"`
}

type unlockResponse struct {
	Title string                `json:"title,omitempty"`
	Links []models.ProviderLink `json:"links"`
	Hops  []string              `json:"hops"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageURL := q.Get("page")
	if pageURL == "" {
		if s.baseURL == "" {
			RespondWithError(w, http.StatusBadRequest, "page is required when no base url is configured")
			return
		}
		page := 1
		if p := q.Get("p"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				RespondWithError(w, http.StatusBadRequest, "p must be a positive page number")
				return
			}
			page = n
		}
		pageURL = scraper.CatalogURL(s.baseURL, q.Get("q"), page)
	}

	session := s.resolvers[s.defaultMode].NewSession()
	entries, err := session.Catalog(r.Context(), pageURL)
	if err != nil {
		RespondWithFailure(w, err)
		return
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	RespondWithJSON(w, http.StatusOK, catalogResponse{Page: pageURL, Entries: entries})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}

	session := s.resolvers[s.defaultMode].NewSession()
	info, err := session.Detail(r.Context(), key)
	if err != nil {
		RespondWithFailure(w, err)
		return
	}

	targets := make([]GroupTargets, 0, len(info.QualityGroups))
	for _, g := range info.QualityGroups {
		gt := GroupTargets{Label: g.RawLabel}
		if t, err := resolver.TargetFor(info, g, models.ModeEpisode); err == nil {
			gt.Episode = &t
		}
		if info.IsSeries() {
			if t, err := resolver.TargetFor(info, g, models.ModeBatch); err == nil {
				gt.Batch = &t
			}
		}
		targets = append(targets, gt)
	}
	RespondWithJSON(w, http.StatusOK, detailResponse{Detail: info, Targets: targets})
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}

	session := s.resolvers[s.defaultMode].NewSession()
	entries, err := session.Episodes(r.Context(), key, r.URL.Query().Get("quality"))
	if err != nil {
		RespondWithFailure(w, err)
		return
	}
	snap := session.Snapshot()

	resp := episodesResponse{Title: snap.Title, Quality: snap.Quality, Episodes: make([]episodeResponse, 0, len(entries))}
	for _, e := range entries {
		ep := episodeResponse{Number: e.Number, Title: e.Title()}
		for _, l := range e.Links {
			lt, err := linkTarget(l, e.Title(), snap.Quality)
			if err != nil {
				RespondWithFailure(w, err)
				return
			}
			ep.Links = append(ep.Links, lt)
		}
		resp.Episodes = append(resp.Episodes, ep)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}

	session := s.resolvers[s.defaultMode].NewSession()
	links, err := session.Servers(r.Context(), key, r.URL.Query().Get("quality"))
	if err != nil {
		RespondWithFailure(w, err)
		return
	}
	snap := session.Snapshot()

	resp := serversResponse{Quality: snap.Quality, Links: make([]LinkTarget, 0, len(links))}
	for _, l := range links {
		lt, err := linkTarget(l, snap.Title, snap.Quality)
		if err != nil {
			RespondWithFailure(w, err)
			return
		}
		resp.Links = append(resp.Links, lt)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	key, ok := requireKey(w, r)
	if !ok {
		return
	}
	res, err := s.resolverFor(r.URL.Query().Get("mode"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := res.NewSession()
	links, err := session.Unlock(r.Context(), key)
	if err != nil {
		RespondWithFailure(w, err)
		return
	}
	snap := session.Snapshot()
	RespondWithJSON(w, http.StatusOK, unlockResponse{Title: snap.Title, Links: links, Hops: snap.Hops})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, version.Get())
}

func requireKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	if key == "" {
		RespondWithError(w, http.StatusBadRequest, "key is required")
		return "", false
	}
	return key, true
}

func linkTarget(l models.ProviderLink, context, quality string) (LinkTarget, error) {
	lt := LinkTarget{ProviderLink: l}
	if !classify.NeedsUnlock(classify.Label(l.Provider)) {
		return lt, nil
	}
	t, err := resolver.UnlockTarget(l, context, quality)
	if err != nil {
		return LinkTarget{}, err
	}
	lt.Target = &t
	return lt, nil
}
