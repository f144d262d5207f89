package models

// DefaultMediaType is assumed when a provider does not report one
const DefaultMediaType = "mkv"

// ProviderLink is a classified link to a file hosting endpoint
type ProviderLink struct {
	Provider  string `json:"providerLabel"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
}

// NewProviderLink builds a link, applying the default media type
func NewProviderLink(provider, url, mediaType string) ProviderLink {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	return ProviderLink{Provider: provider, URL: url, MediaType: mediaType}
}
