package formula

import (
	"regexp"
	"strings"
)

// Hosts of the three supported forges, in detection priority order.
const (
	GitHub    = "github.com"
	GitLab    = "gitlab.com"
	Bitbucket = "bitbucket.org"
)

var forgeHosts = []string{GitHub, GitLab, Bitbucket}

// repoPatterns requires scheme://<host>/<owner>/<rest> for each forge host.
var repoPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(forgeHosts))
	for _, host := range forgeHosts {
		patterns[host] = regexp.MustCompile(`^\w+://` + regexp.QuoteMeta(host) + `/([^/]+)/(.+)$`)
	}
	return patterns
}()

// tagPatterns are the recognized release-archive URL shapes, tried in order.
// The first match wins; the tag is the literal captured path segment.
var tagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/archive/refs/tags/([^/]+)\.tar\.gz$`),
	regexp.MustCompile(`/archive/refs/tags/([^/]+)\.zip$`),
	regexp.MustCompile(`/archive/([^/]+)\.tar\.gz$`),
	regexp.MustCompile(`/archive/([^/]+)\.zip$`),
	regexp.MustCompile(`/releases/download/([^/]+)/`),
	regexp.MustCompile(`/tarball/([^/]+)$`),
}

// RepositoryURL derives the canonical https://<forge>/<owner>/<repo> form
// from an arbitrary download URL. ok is false when the URL is empty, is not
// hosted on a supported forge, or does not have the expected shape.
func RepositoryURL(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	var host string
	for _, h := range forgeHosts {
		if strings.Contains(url, h) {
			host = h
			break
		}
	}
	if host == "" {
		return "", false
	}
	m := repoPatterns[host].FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	ownerRepo := normalizeProjectPath(m[1] + "/" + m[2])
	if ownerRepo == "" {
		return "", false
	}
	return "https://" + host + "/" + ownerRepo, true
}

// ReleaseTag extracts a release tag from a stable download URL by matching
// the recognized archive shapes. ok is false when no shape matches.
func ReleaseTag(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	for _, re := range tagPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// normalizeProjectPath reduces the path after the forge host to
// "<owner>/<repo>". GitLab-style "/-/" sub-resource suffixes are cut before
// the segment split, and a trailing ".git" is stripped from the repo name.
func normalizeProjectPath(path string) string {
	if i := strings.Index(path, "/-/"); i >= 0 {
		path = path[:i]
	}
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return ""
	}
	repo := strings.TrimSuffix(parts[1], ".git")
	if parts[0] == "" || repo == "" {
		return ""
	}
	return parts[0] + "/" + repo
}
