package validate

import (
	"net/url"
	"strings"
)

// Config holds the source URL acceptance rules. Immutable after
// construction so tests can substitute their own.
type Config struct {
	// Hosts a source URL must exactly match one of.
	Hosts []string
	// PathMarkers of which at least one must appear in the URL path,
	// distinguishing attachment images from proxied external ones.
	PathMarkers []string
}

// Default returns the acceptance rules for the Discord CDN pair.
func Default() Config {
	return Config{
		Hosts:       []string{"cdn.discordapp.com", "media.discordapp.net"},
		PathMarkers: []string{"/attachments/", "/external/"},
	}
}

// IsAcceptable reports whether raw names an image this service will mirror.
// Malformed URLs are unacceptable, never an error. Query parameters are
// ignored here, they are signing tokens rather than identity.
func (c Config) IsAcceptable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	hostOK := false
	for _, host := range c.Hosts {
		if u.Host == host {
			hostOK = true
			break
		}
	}
	if !hostOK {
		return false
	}

	for _, marker := range c.PathMarkers {
		if strings.Contains(u.Path, marker) {
			return true
		}
	}
	return false
}
