package resolver

import (
	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
	"github.com/netvlyx/vlyx/internal/scraper"
)

// Transition describes one state change of a session
type Transition struct {
	SessionID string
	From      State
	To        State
	Stage     scraper.Stage
	Awaiting  Choice
	Err       error
}

// Observer receives every transition of every session of a resolver. It is
// called synchronously from the goroutine driving the session.
type Observer func(Transition)

// Snapshot is a copy of a session's state for renderers
type Snapshot struct {
	ID       string                `json:"id"`
	State    State                 `json:"state"`
	Stage    scraper.Stage         `json:"stage,omitempty"`
	Awaiting Choice                `json:"awaiting,omitempty"`
	Mode     models.DownloadMode   `json:"mode"`
	Title    string                `json:"title,omitempty"`
	Quality  string                `json:"quality,omitempty"`
	Episode  string                `json:"episode,omitempty"`
	IsSeries bool                  `json:"isSeries"`
	Hops     []string              `json:"hops"`
	Links    []models.ProviderLink `json:"links"`
	Error    string                `json:"error,omitempty"`
	Reason   string                `json:"reason,omitempty"`
}

// Snapshot returns an immutable view of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:       s.id,
		State:    s.state,
		Stage:    s.stage,
		Awaiting: s.awaiting,
		Mode:     s.mode,
		Title:    s.title,
		Quality:  s.quality,
		Episode:  s.episode,
		Hops:     append([]string{}, s.hops...),
		Links:    append([]models.ProviderLink{}, s.links...),
	}
	if s.detail != nil {
		snap.IsSeries = s.detail.IsSeries()
	}
	if s.err != nil {
		snap.Error = s.err.Error()
		snap.Reason = ReasonOf(s.err)
	}
	return snap
}

// StageError records the stage at which a session failed
type StageError struct {
	Stage scraper.Stage
	Err   error
}

func (e *StageError) Error() string {
	var extractErr *scraper.ExtractError
	if errors.As(e.Err, &extractErr) {
		return e.Err.Error()
	}
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf reports the stage an error belongs to, or "" when unknown
func StageOf(err error) scraper.Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	var noLinksErr *scraper.NoLinksError
	if errors.As(err, &noLinksErr) {
		return noLinksErr.Stage
	}
	var extractErr *scraper.ExtractError
	if errors.As(err, &extractErr) {
		return extractErr.Stage
	}
	return ""
}

// ReasonOf returns the human readable reason of a failure
func ReasonOf(err error) string {
	var noLinksErr *scraper.NoLinksError
	if errors.As(err, &noLinksErr) {
		return noLinksErr.Reason
	}
	var extractErr *scraper.ExtractError
	if errors.As(err, &extractErr) {
		return extractErr.Reason
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Err.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
