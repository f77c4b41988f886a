// Package offline models the background script that caches the dashboard and
// relays push messages into notifications, and renders that script.
package offline

import "strings"

const (
	// DefaultCacheName is the version tag of the current cache.
	DefaultCacheName = "price-alerts-v1"
	// ManifestPath is the installed-app manifest.
	ManifestPath = "/manifest.json"
	// StaticSegment marks versioned static bundles.
	StaticSegment = "/static/"
)

// Config is shared by the Go model and the rendered script.
type Config struct {
	CacheName     string
	Precache      []string
	ManifestPath  string
	StaticSegment string
}

// DefaultConfig returns the policy for cacheName; an empty name selects DefaultCacheName.
func DefaultConfig(cacheName string) Config {
	if cacheName == "" {
		cacheName = DefaultCacheName
	}
	return Config{
		CacheName:     cacheName,
		Precache:      []string{"/", ManifestPath},
		ManifestPath:  ManifestPath,
		StaticSegment: StaticSegment,
	}
}

// IsStatic reports whether url is served cache-first: it ends with a
// pre-cached path, or contains the manifest path or the static segment.
func (c Config) IsStatic(url string) bool {
	for _, p := range c.Precache {
		if strings.HasSuffix(url, p) {
			return true
		}
	}
	return strings.Contains(url, c.ManifestPath) || strings.Contains(url, c.StaticSegment)
}
