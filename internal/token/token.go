// Package token encodes the small JSON payloads that are handed from one
// resolution stage to the next as URL-safe opaque keys.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/models"
)

// legacySep separates slug and origin in item references minted by the web app
const legacySep = "|||"

// DecodeError reports a token that is not valid base64 or not valid JSON
type DecodeError struct {
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid key: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Key is the payload passed between hops: a target URL plus free context
// (usually the quality label or a title).
type Key struct {
	URL     string `json:"url"`
	Context string `json:"context,omitempty"`
}

// Encode serializes v as JSON and returns it as unpadded URL-safe base64
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode key payload")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode reverses Encode into v. Standard and URL-safe alphabets are both
// accepted, with or without padding.
func Decode(tok string, v any) error {
	raw, err := decodeBase64(tok)
	if err != nil {
		return &DecodeError{Token: tok, Err: err}
	}
	if !json.Valid(raw) {
		return &DecodeError{Token: tok, Err: errors.New("payload is not JSON")}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Token: tok, Err: err}
	}
	return nil
}

func decodeBase64(tok string) ([]byte, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, errors.New("empty key")
	}
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(tok)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, errors.Wrap(lastErr, "key is not base64")
}

// EncodeKey encodes a hop key
func EncodeKey(k Key) (string, error) {
	return Encode(k)
}

// DecodeKey decodes a hop key and requires a target URL.
// Keys written by the web app used "link" instead of "url"; both are read.
func DecodeKey(tok string) (Key, error) {
	var payload struct {
		URL     string `json:"url"`
		Link    string `json:"link"`
		Context string `json:"context"`
		Title   string `json:"title"`
	}
	if err := Decode(tok, &payload); err != nil {
		return Key{}, err
	}
	k := Key{URL: payload.URL, Context: payload.Context}
	if k.URL == "" {
		k.URL = payload.Link
	}
	if k.Context == "" {
		k.Context = payload.Title
	}
	if strings.TrimSpace(k.URL) == "" {
		return Key{}, &DecodeError{Token: tok, Err: errors.New("key has no target url")}
	}
	return k, nil
}

// EncodeItemRef encodes a catalog item reference
func EncodeItemRef(ref models.ItemRef) (string, error) {
	return Encode(ref)
}

// DecodeItemRef decodes an item reference. The legacy "slug|||origin"
// payload is accepted as well as the JSON form.
func DecodeItemRef(tok string) (models.ItemRef, error) {
	raw, err := decodeBase64(tok)
	if err != nil {
		return models.ItemRef{}, &DecodeError{Token: tok, Err: err}
	}

	var ref models.ItemRef
	if json.Valid(raw) {
		if err := json.Unmarshal(raw, &ref); err != nil {
			return models.ItemRef{}, &DecodeError{Token: tok, Err: err}
		}
	} else if slug, origin, ok := strings.Cut(string(raw), legacySep); ok {
		ref = models.ItemRef{Slug: slug, Origin: origin}
	} else {
		return models.ItemRef{}, &DecodeError{Token: tok, Err: errors.New("payload is neither JSON nor a legacy item ref")}
	}

	if ref.Slug == "" || ref.Origin == "" {
		return models.ItemRef{}, &DecodeError{Token: tok, Err: errors.New("item ref needs slug and origin")}
	}
	return ref, nil
}

// QueryEscape prepares a token for a query string
func QueryEscape(tok string) string {
	return url.QueryEscape(tok)
}

// QueryUnescape reverses QueryEscape; it must run before Decode when the
// token was read from a raw query string.
func QueryUnescape(s string) (string, error) {
	tok, err := url.QueryUnescape(s)
	if err != nil {
		return "", &DecodeError{Token: s, Err: err}
	}
	return tok, nil
}
