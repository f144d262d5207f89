// Package classify assigns provider labels to anchors found on unlock pages.
package classify

import "strings"

// Label is the provider class of a link
type Label string

const (
	HubCloud    Label = "Hub-Cloud"
	FSLv2       Label = "FSLv2 Server"
	FSL         Label = "FSL Server"
	TenGbps     Label = "10Gbps Server"
	PixelServer Label = "Pixel Server"
	ZipDisk     Label = "ZipDisk Server"
	VCloud      Label = "V-Cloud"
	GDrive      Label = "G-Drive"
)

// Rule maps an anchor to a label when Match returns true. Match receives the
// lowercased anchor text and href.
type Rule struct {
	Label Label
	Match func(text, href string) bool
}

// Classifier evaluates its rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// New creates a classifier from an ordered rule list
func New(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the label of the first matching rule. Discarded hrefs
// never match.
func (c *Classifier) Classify(text, href string) (Label, bool) {
	if Discard(href) {
		return "", false
	}
	text = strings.ToLower(strings.TrimSpace(text))
	href = strings.ToLower(strings.TrimSpace(href))
	for _, r := range c.rules {
		if r.Match(text, href) {
			return r.Label, true
		}
	}
	return "", false
}

// Discard reports whether an href can never be a download link
func Discard(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return h == "" || strings.HasPrefix(h, "#") || strings.HasPrefix(h, "javascript:")
}

// TextContains matches when the anchor text contains any of the needles
func TextContains(needles ...string) func(text, href string) bool {
	return func(text, _ string) bool {
		return containsAny(text, needles)
	}
}

// HrefContains matches when the href contains any of the needles
func HrefContains(needles ...string) func(text, href string) bool {
	return func(_, href string) bool {
		return containsAny(href, needles)
	}
}

// EitherContains matches when the text or the href contains any needle
func EitherContains(needles ...string) func(text, href string) bool {
	return func(text, href string) bool {
		return containsAny(text, needles) || containsAny(href, needles)
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var (
	ruleHubCloud = Rule{HubCloud, HrefContains("hubcloud")}
	ruleVCloud   = Rule{VCloud, HrefContains("gdflix", "skymovies")}
	ruleGDrive   = Rule{GDrive, HrefContains("drive.google")}
)

// Default is the rule set for final unlock pages. "fslv2" precedes "fsl" so
// the shorter needle cannot shadow it.
var Default = New(
	ruleHubCloud,
	Rule{FSLv2, TextContains("fslv2")},
	Rule{FSL, TextContains("fsl")},
	Rule{TenGbps, TextContains("10gbps")},
	Rule{PixelServer, EitherContains("pixeldrain", "pixel")},
	Rule{ZipDisk, TextContains("zipdisk")},
	ruleVCloud,
	ruleGDrive,
)

// Mirrors accepts the mirror hosts listed under a quality heading
var Mirrors = New(ruleHubCloud, ruleVCloud, ruleGDrive)

// Episodes accepts only the provider that reliably serves per-episode files
var Episodes = New(ruleHubCloud)

// NeedsUnlock reports whether a label still has to go through the unlock chain
func NeedsUnlock(l Label) bool {
	return l == HubCloud
}
