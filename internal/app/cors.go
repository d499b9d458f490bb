package app

import (
	"net/url"
	"strings"
)

// originAllowed reports whether origin's host matches any of the patterns.
// Patterns are exact hosts, "*.example.com" suffixes or "host:*" for any port.
func originAllowed(patterns []string, origin string) bool {
	host := originHost(origin)
	for _, pattern := range patterns {
		if matchOriginPattern(pattern, host) {
			return true
		}
	}
	return false
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
