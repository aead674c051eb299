package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether a post-login redirect target is safe to
// follow. Only same-origin targets are accepted: relative paths that do
// not smuggle a host ("//evil" or backslash tricks), or absolute http(s)
// URLs whose host matches the issuer.
func IsRedirectSafe(redirectURL, issuer string) bool {
	// Empty redirect falls back to the default landing page
	if redirectURL == "" {
		return true
	}

	// Header injection guard
	if strings.ContainsAny(redirectURL, "\r\n") {
		return false
	}

	if strings.HasPrefix(redirectURL, "/") {
		if strings.HasPrefix(redirectURL, "//") {
			return false
		}
		if strings.Contains(redirectURL, "\\") {
			return false
		}
		return true
	}

	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return false
	}

	if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	if parsed.Host != "" {
		base, err := url.Parse(issuer)
		if err != nil {
			return false
		}
		if parsed.Host != base.Host {
			return false
		}
	}

	return true
}
