package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"

	"github.com/netvlyx/vlyx/internal/util"
)

const (
	// UserAgent is sent when the configuration does not provide one
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0"

	defaultFetchTimeout = 20 * time.Second
	defaultMaxBody      = 8 << 20
)

// Fetcher returns the raw HTML (or JSON) body of a URL. Any failure,
// including an empty body, is reported as an error.
type Fetcher interface {
	FetchRawHTML(ctx context.Context, rawURL string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, rawURL string) (string, error)

// FetchRawHTML calls f
func (f FetcherFunc) FetchRawHTML(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

// HTTPFetcher fetches pages over HTTP. Every call is bounded by Timeout and
// is attempted exactly once.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
}

// FetcherOptions tunes an HTTPFetcher; zero values select defaults
type FetcherOptions struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	MaxBody   int64
}

// NewHTTPFetcher creates a fetcher backed by the shared HTTP client
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		maxBody:   opts.MaxBody,
	}
	if f.client == nil {
		f.client = util.GetSharedClient()
	}
	if f.userAgent == "" {
		f.userAgent = UserAgent
	}
	if f.timeout <= 0 {
		f.timeout = defaultFetchTimeout
	}
	if f.maxBody <= 0 {
		f.maxBody = defaultMaxBody
	}
	return f
}

// FetchRawHTML implements Fetcher
func (f *HTTPFetcher) FetchRawHTML(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: errors.Wrap(err, "failed to create request")}
	}
	f.decorateRequest(req)

	util.Debug("fetch", "url", rawURL)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: errors.Wrap(err, "failed to make request")}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.Errorf("server returned: %s", resp.Status)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.Wrap(err, "failed to read body")}
	}
	// A partial page would extract a partial link set
	if int64(len(raw)) > f.maxBody {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.Errorf("response exceeds max_body (%d bytes)", f.maxBody)}
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.Wrap(err, "failed to detect charset")}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.Wrap(err, "failed to decode body")}
	}

	html := string(body)
	if strings.TrimSpace(html) == "" {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.New("empty response body")}
	}
	if isChallengePage(html) {
		return "", &FetchError{URL: rawURL, Status: resp.StatusCode, Err: errors.New("site returned a challenge page (try VPN or wait)")}
	}

	util.Debug("fetched", "url", rawURL, "bytes", len(body), "took", time.Since(start))
	return html, nil
}

func (f *HTTPFetcher) decorateRequest(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if u, err := url.Parse(req.URL.String()); err == nil && u.Host != "" {
		req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")
	}
}

// isChallengePage detects anti-bot interstitials served with a 200 status
func isChallengePage(html string) bool {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "<title>just a moment") {
		return true
	}
	return strings.Contains(lower, `id="cf-wrapper"`) || strings.Contains(lower, `id="challenge-form"`)
}
