package resolver

import (
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/classify"
	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/scraper"
	"github.com/netvlyx/vlyx/internal/token"
	"github.com/netvlyx/vlyx/internal/util"
)

// State is the position of a session in the resolution state machine
type State string

const (
	StateIdle               State = "idle"
	StateFetching           State = "fetching"
	StateExtracted          State = "extracted"
	StateNextHop            State = "next-hop"
	StateAwaitingUserChoice State = "awaiting-user-choice"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Choice names what a session in StateAwaitingUserChoice waits for
type Choice string

const (
	ChoiceNone    Choice = ""
	ChoiceItem    Choice = "item"
	ChoiceMode    Choice = "mode"
	ChoiceQuality Choice = "quality"
	ChoiceEpisode Choice = "episode"
	ChoiceServer  Choice = "server"
)

var (
	// ErrSessionFailed is returned by every entry point of a failed session
	// until Retry is called.
	ErrSessionFailed = errors.New("session failed; retry to continue")
	// ErrNoDetail is returned when a choice needs a detail page that was not fetched
	ErrNoDetail = errors.New("no detail page loaded")
	// ErrNotSeries is returned by ChooseMode for movies
	ErrNotSeries = errors.New("download mode only applies to series")
	// ErrInvalidChoice is returned for out of range selections and for choices
	// the session is not waiting for
	ErrInvalidChoice = errors.New("invalid choice")
)

// Session is one resolution, from a catalog or detail page down to the final
// links. A session is driven by a single caller; the mutex only lets
// observers read snapshots concurrently.
type Session struct {
	r  *Resolver
	id string

	mu       sync.Mutex
	state    State
	stage    scraper.Stage
	awaiting Choice
	err      error
	mode     models.DownloadMode
	detail   *models.DetailInfo
	title    string
	quality  string
	episode  string
	hops     []string
	links    []models.ProviderLink
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Err returns the failure of a failed session
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Retry puts a failed session back to idle so the failed stage can be
// entered again. It has no effect on other states.
func (s *Session) Retry() {
	s.mu.Lock()
	if s.state != StateFailed {
		s.mu.Unlock()
		return
	}
	s.err = nil
	s.mu.Unlock()
	s.transition(StateIdle, s.currentStage(), ChoiceNone)
}

// Catalog fetches a listing page and waits for an item to be chosen
func (s *Session) Catalog(ctx context.Context, pageURL string) ([]models.CatalogEntry, error) {
	doc, err := s.fetchDocument(ctx, scraper.StageCatalog, pageURL)
	if err != nil {
		return nil, err
	}
	entries := scraper.ExtractCatalog(doc, pageURL, s.r.origins...)
	s.transition(StateExtracted, scraper.StageCatalog, ChoiceNone)
	s.transition(StateAwaitingUserChoice, scraper.StageCatalog, ChoiceItem)
	return entries, nil
}

// Detail fetches the page an item reference points at. Series wait for a
// download mode, movies go straight to the quality choice.
func (s *Session) Detail(ctx context.Context, itemToken string) (models.DetailInfo, error) {
	if err := s.begin(scraper.StageDetail); err != nil {
		return models.DetailInfo{}, err
	}
	ref, err := token.DecodeItemRef(itemToken)
	if err != nil {
		return models.DetailInfo{}, s.fail(scraper.StageDetail, err)
	}

	doc, err := s.fetchDocument(ctx, scraper.StageDetail, ref.URL())
	if err != nil {
		return models.DetailInfo{}, err
	}
	info, err := scraper.ExtractDetail(doc)
	if err != nil {
		return info, s.fail(scraper.StageDetail, err)
	}

	s.mu.Lock()
	s.detail = &info
	s.title = info.Title
	s.mode = models.ModeEpisode
	s.mu.Unlock()

	s.transition(StateExtracted, scraper.StageDetail, ChoiceNone)
	if info.IsSeries() {
		s.transition(StateAwaitingUserChoice, scraper.StageDetail, ChoiceMode)
	} else {
		s.transition(StateAwaitingUserChoice, scraper.StageDetail, ChoiceQuality)
	}
	return info, nil
}

// ChooseMode selects episode or batch downloads for a series
func (s *Session) ChooseMode(mode models.DownloadMode) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.detail == nil {
		s.mu.Unlock()
		return ErrNoDetail
	}
	if !s.detail.IsSeries() {
		s.mu.Unlock()
		return ErrNotSeries
	}
	s.mode = mode
	s.mu.Unlock()

	s.transition(StateAwaitingUserChoice, scraper.StageDetail, ChoiceQuality)
	return nil
}

// ChooseQuality returns the navigation target of a quality group in the
// current download mode.
func (s *Session) ChooseQuality(group models.QualityGroup) (Target, error) {
	if err := s.checkUsable(); err != nil {
		return Target{}, err
	}
	s.mu.Lock()
	detail, mode := s.detail, s.mode
	s.mu.Unlock()
	if detail == nil {
		return Target{}, ErrNoDetail
	}

	t, err := TargetFor(*detail, group, mode)
	if err != nil {
		return Target{}, s.fail(scraper.StageDetail, err)
	}

	s.mu.Lock()
	s.quality = t.Quality
	s.hops = append(s.hops, group.LinkFor(modeForTarget(*detail, mode)))
	s.mu.Unlock()

	s.transition(StateNextHop, t.Stage, ChoiceNone)
	return t, nil
}

func modeForTarget(info models.DetailInfo, mode models.DownloadMode) models.DownloadMode {
	if !info.IsSeries() {
		return models.ModeEpisode
	}
	return mode
}

// Episodes fetches an episode listing. An empty quality falls back to the
// label carried by the key.
func (s *Session) Episodes(ctx context.Context, keyToken, quality string) ([]models.EpisodeEntry, error) {
	key, err := s.decodeKey(scraper.StageEpisodes, keyToken)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, scraper.StageEpisodes, key.URL)
	if err != nil {
		return nil, err
	}
	title, entries, err := scraper.ExtractEpisodes(doc)
	if err != nil {
		return nil, s.fail(scraper.StageEpisodes, err)
	}

	s.mu.Lock()
	s.title = title
	s.quality = firstNonEmpty(quality, key.Context, s.quality)
	s.mu.Unlock()

	s.transition(StateExtracted, scraper.StageEpisodes, ChoiceNone)
	s.transition(StateAwaitingUserChoice, scraper.StageEpisodes, ChoiceEpisode)
	return entries, nil
}

// ChooseEpisode returns the unlock target of one link of an episode
func (s *Session) ChooseEpisode(entry models.EpisodeEntry, linkIdx int) (Target, error) {
	if err := s.awaitChoice(ChoiceEpisode); err != nil {
		return Target{}, err
	}
	if linkIdx < 0 || linkIdx >= len(entry.Links) {
		return Target{}, errors.Wrapf(ErrInvalidChoice, "episode %s has no link %d", entry.Number, linkIdx)
	}
	link := entry.Links[linkIdx]

	s.mu.Lock()
	s.episode = entry.Number
	quality := s.quality
	s.hops = append(s.hops, link.URL)
	s.mu.Unlock()

	t, err := UnlockTarget(link, entry.Title(), quality)
	if err != nil {
		return Target{}, s.fail(scraper.StageEpisodes, err)
	}
	s.transition(StateNextHop, StageUnlock, ChoiceNone)
	return t, nil
}

// Servers fetches the mirror page and returns the links listed under the
// heading matching quality.
func (s *Session) Servers(ctx context.Context, keyToken, quality string) ([]models.ProviderLink, error) {
	key, err := s.decodeKey(scraper.StageServers, keyToken)
	if err != nil {
		return nil, err
	}
	quality = firstNonEmpty(quality, key.Context)

	doc, err := s.fetchDocument(ctx, scraper.StageServers, key.URL)
	if err != nil {
		return nil, err
	}
	links, err := scraper.ExtractServers(doc, quality)
	if err != nil {
		return nil, s.fail(scraper.StageServers, err)
	}

	s.mu.Lock()
	s.quality = quality
	s.mu.Unlock()

	s.transition(StateExtracted, scraper.StageServers, ChoiceNone)
	s.transition(StateAwaitingUserChoice, scraper.StageServers, ChoiceServer)
	return links, nil
}

// ChooseServer picks one mirror. Links that need unlocking yield an unlock
// target; any other mirror is final and completes the session (done is true).
func (s *Session) ChooseServer(link models.ProviderLink) (t Target, done bool, err error) {
	if err := s.awaitChoice(ChoiceServer); err != nil {
		return Target{}, false, err
	}
	if classify.Discard(link.URL) {
		return Target{}, false, errors.Wrap(ErrInvalidChoice, "server has no link")
	}

	if !classify.NeedsUnlock(classify.Label(link.Provider)) {
		s.mu.Lock()
		s.links = []models.ProviderLink{link}
		s.mu.Unlock()
		s.transition(StateDone, scraper.StageServers, ChoiceNone)
		return Target{}, true, nil
	}

	s.mu.Lock()
	quality, title := s.quality, s.title
	s.hops = append(s.hops, link.URL)
	s.mu.Unlock()

	t, err = UnlockTarget(link, title, quality)
	if err != nil {
		return Target{}, false, s.fail(scraper.StageServers, err)
	}
	s.transition(StateNextHop, StageUnlock, ChoiceNone)
	return t, false, nil
}

// Unlock turns a provider link into the final server list, through hop1 and
// hop2 or through the direct resolver depending on the resolver mode.
func (s *Session) Unlock(ctx context.Context, keyToken string) ([]models.ProviderLink, error) {
	if s.r.mode == ModeDirect {
		return s.unlockDirect(ctx, keyToken)
	}

	key, err := s.decodeKey(scraper.StageHop1, keyToken)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, scraper.StageHop1, key.URL)
	if err != nil {
		return nil, err
	}
	next, err := scraper.ExtractCanonicalLink(doc, key.URL)
	if err != nil {
		return nil, s.fail(scraper.StageHop1, err)
	}
	s.mu.Lock()
	s.hops = append(s.hops, next)
	s.mu.Unlock()
	s.transition(StateExtracted, scraper.StageHop1, ChoiceNone)
	s.transition(StateNextHop, scraper.StageHop2, ChoiceNone)

	doc, err = s.fetchDocument(ctx, scraper.StageHop2, next)
	if err != nil {
		return nil, err
	}
	links, err := scraper.ExtractFinalLinks(doc, next)
	if err != nil {
		return nil, s.fail(scraper.StageHop2, err)
	}
	return s.finish(scraper.StageHop2, "", links), nil
}

func (s *Session) unlockDirect(ctx context.Context, keyToken string) ([]models.ProviderLink, error) {
	key, err := s.decodeKey(scraper.StageDirect, keyToken)
	if err != nil {
		return nil, err
	}
	if s.r.direct == nil {
		return nil, s.fail(scraper.StageDirect, errors.New("direct mode needs a resolve api"))
	}

	title, links, err := s.r.direct.Resolve(ctx, key.URL)
	if err != nil {
		return nil, s.fail(scraper.StageDirect, err)
	}
	return s.finish(scraper.StageDirect, title, links), nil
}

func (s *Session) finish(stage scraper.Stage, title string, links []models.ProviderLink) []models.ProviderLink {
	s.mu.Lock()
	if title != "" {
		s.title = title
	}
	s.links = append([]models.ProviderLink(nil), links...)
	s.mu.Unlock()

	s.transition(StateExtracted, stage, ChoiceNone)
	s.transition(StateDone, stage, ChoiceNone)
	return links
}

// begin enters Fetching(stage) unless the session has failed
func (s *Session) begin(stage scraper.Stage) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	s.transition(StateFetching, stage, ChoiceNone)
	return nil
}

func (s *Session) checkUsable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFailed {
		return ErrSessionFailed
	}
	return nil
}

// awaitChoice rejects a choice the session is not waiting for
func (s *Session) awaitChoice(c Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFailed {
		return ErrSessionFailed
	}
	if s.state != StateAwaitingUserChoice || s.awaiting != c {
		return errors.Wrapf(ErrInvalidChoice, "session is %s, not awaiting a %s choice", s.state, c)
	}
	return nil
}

func (s *Session) decodeKey(stage scraper.Stage, keyToken string) (token.Key, error) {
	if err := s.begin(stage); err != nil {
		return token.Key{}, err
	}
	key, err := token.DecodeKey(keyToken)
	if err != nil {
		return token.Key{}, s.fail(stage, err)
	}
	return key, nil
}

// fetchDocument fetches and parses one page for stage. It enters
// Fetching(stage) itself when the session is not already there.
func (s *Session) fetchDocument(ctx context.Context, stage scraper.Stage, pageURL string) (*goquery.Document, error) {
	s.mu.Lock()
	fetching := s.state == StateFetching && s.stage == stage
	s.mu.Unlock()
	if !fetching {
		if err := s.begin(stage); err != nil {
			return nil, err
		}
	}

	timer := util.StartTimer("fetch:" + string(stage))
	html, err := s.r.fetcher.FetchRawHTML(ctx, pageURL)
	timer.Stop()
	if err != nil {
		return nil, s.fail(stage, err)
	}
	doc, err := scraper.Parse(html)
	if err != nil {
		return nil, s.fail(stage, err)
	}
	return doc, nil
}

func (s *Session) fail(stage scraper.Stage, err error) error {
	failure := &StageError{Stage: stage, Err: err}
	s.mu.Lock()
	s.err = failure
	s.mu.Unlock()
	util.Debug("session failed", "session", s.id, "stage", stage, "error", err)
	s.transition(StateFailed, stage, ChoiceNone)
	return failure
}

func (s *Session) currentStage() scraper.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// transition moves the session and notifies the observer outside the lock
func (s *Session) transition(to State, stage scraper.Stage, awaiting Choice) {
	s.mu.Lock()
	from := s.state
	s.state, s.stage, s.awaiting = to, stage, awaiting
	err := s.err
	s.mu.Unlock()

	util.Debug("session transition", "session", s.id, "from", from, "to", to, "stage", stage)
	if s.r.observer != nil {
		s.r.observer(Transition{SessionID: s.id, From: from, To: to, Stage: stage, Awaiting: awaiting, Err: err})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
