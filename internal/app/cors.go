package app

import (
	"net/url"
	"strings"
)

// originAllowed reports whether an Origin header value matches any of the
// configured patterns. Patterns match against the host[:port] part of the
// origin: an exact value, a "*.domain" subdomain wildcard, or a "host:*"
// any-port wildcard.
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, pattern := range patterns {
		if originPatternMatches(pattern, host) {
			return true
		}
	}
	return false
}

func originPatternMatches(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		// "*.example.com" also covers the bare apex.
		suffix := pattern[1:]
		return strings.HasSuffix(host, suffix) || host == pattern[2:]
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
