package domain

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a link URL cannot be made absolute.
var ErrInvalidURL = errors.New("invalid url")

// NormalizeURL trims raw and prefixes https:// when no scheme was given.
// Only http and https URLs with a host are accepted.
//
//	"example.com"          -> "https://example.com"
//	"http://example.com/a" -> "http://example.com/a"
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

// IsFetchableURL reports whether raw is an absolute http(s) URL.
func IsFetchableURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Hostname returns the host part of raw without port, or raw itself when it
// does not parse.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
