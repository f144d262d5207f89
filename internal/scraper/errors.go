package scraper

import "fmt"

// Stage names one fetch+extract step of the resolution chain
type Stage string

const (
	StageCatalog  Stage = "catalog"
	StageDetail   Stage = "detail"
	StageEpisodes Stage = "episodes"
	StageServers  Stage = "servers"
	StageHop1     Stage = "hop1"
	StageHop2     Stage = "hop2"
	StageDirect   Stage = "direct"
)

// Reasons reported by the extractors
const (
	ReasonCanonicalNotFound = "canonical link not found"
	ReasonNoProviderLinks   = "no provider links matched"
	ReasonNoAnchors         = "no anchors found"
	ReasonNoDownloadSection = "download section not found"
	ReasonNoEpisodeHeadings = "episode headings not found"
	ReasonQualityNotMatched = "quality not matched"
	ReasonMalformedResponse = "malformed response"
)

// FetchError reports a transport failure, a timeout, a non-2xx answer, an
// empty body or a challenge page. Callers treat all of them alike.
type FetchError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError reports that an expected structural element is missing
type ExtractError struct {
	Stage  Stage
	Reason string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

// NoLinksError reports a structurally valid page on which no link survived
// classification. It unwraps to the equivalent ExtractError.
type NoLinksError struct {
	Stage  Stage
	Reason string
}

func (e *NoLinksError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

func (e *NoLinksError) Unwrap() error {
	return &ExtractError{Stage: e.Stage, Reason: e.Reason}
}

func extractErr(stage Stage, reason string) error {
	return &ExtractError{Stage: stage, Reason: reason}
}

func noLinks(stage Stage) error {
	return &NoLinksError{Stage: stage, Reason: ReasonNoProviderLinks}
}
