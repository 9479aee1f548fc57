// Package youtube recognizes YouTube video URLs and fetches video metadata
// from the YouTube Data API.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

const videoIDLength = 11

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID returns the 11-character video ID in raw, if raw is a
// watch, short-link, embed or shorts URL on a YouTube host. The ID is the
// first 11 characters of the v parameter or path segment and must use the
// URL-safe base64 alphabet.
func ExtractVideoID(raw string) (string, bool) {
	u, ok := parseVideoURL(raw)
	if !ok {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	var candidate string
	switch {
	case host == "youtu.be":
		candidate = firstSegment(u.Path)
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		candidate = youtubePathID(u)
	default:
		return "", false
	}

	if len(candidate) < videoIDLength {
		return "", false
	}
	candidate = candidate[:videoIDLength]
	if !videoIDPattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// parseVideoURL accepts http(s) URLs and bare host/path strings.
func parseVideoURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	default:
		return nil, false
	}
}

func youtubePathID(u *url.URL) string {
	path := strings.TrimPrefix(u.Path, "/")
	if path == "watch" || path == "watch/" {
		return u.Query().Get("v")
	}
	for _, prefix := range []string{"embed/", "shorts/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			return firstSegment(rest)
		}
	}
	return ""
}

func firstSegment(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return seg
}
