package classify

import "strings"

// Kind groups server names for display
type Kind string

const (
	KindFSL      Kind = "fsl"
	KindFast     Kind = "fast"
	KindPixel    Kind = "pixel"
	KindCloud    Kind = "cloud"
	KindTelegram Kind = "telegram"
	KindOther    Kind = "other"
)

// KindOf maps a server name, as reported by a provider page or the resolve
// API, to its display kind.
func KindOf(serverName string) Kind {
	name := strings.ToLower(serverName)
	switch {
	case strings.Contains(name, "fsl"):
		return KindFSL
	case strings.Contains(name, "10gbps"), strings.Contains(name, "fast"):
		return KindFast
	case strings.Contains(name, "pixel"):
		return KindPixel
	case strings.Contains(name, "cloud"), strings.Contains(name, "temp"):
		return KindCloud
	case strings.Contains(name, "telegram"):
		return KindTelegram
	default:
		return KindOther
	}
}
