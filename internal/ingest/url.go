package ingest

import (
	"net/url"
	"strings"
)

// ParseOrgURL reports whether urlStr addresses an organization root and,
// if so, the organization login. A URL is an organization root iff its
// path has exactly one non-empty segment; anything else (instance root,
// repository URL) is left for other processors.
func ParseOrgURL(urlStr string) (org string, ok bool) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 1 || segments[0] == "" {
		return "", false
	}
	return segments[0], true
}
