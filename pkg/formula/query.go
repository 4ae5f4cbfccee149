package formula

// Query identifies one release to look up in a vulnerability database.
// Version carries the release tag, not the formula's version string, since
// upstream advisories are keyed by tag.
type Query struct {
	RepositoryURL string `json:"repository_url"`
	Version       string `json:"version"`
	Name          string `json:"name"`
}

// Query returns the vulnerability-database query for f. ok is false when
// either the repository URL or the release tag cannot be resolved; such a
// formula cannot be checked.
func (f *Formula) Query() (Query, bool) {
	repo, ok := f.RepositoryURL()
	if !ok {
		return Query{}, false
	}
	tag, ok := f.ReleaseTag()
	if !ok {
		return Query{}, false
	}
	return Query{RepositoryURL: repo, Version: tag, Name: f.Name}, true
}
